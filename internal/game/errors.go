package game

import (
	"errors"

	"github.com/sirupsen/logrus"

	engine "github.com/jason-s-yu/hanabot/engine"
)

// Fault classes surfaced by the dispatcher. Each is scoped to one event of
// one table; none stops the stream.
var (
	ErrDecode          = errors.New("decode")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnknownAction   = errors.New("unknown action type")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFinished = errors.New("session finished")
)

// LogFault reports err at a level matching its fault class.
func LogFault(log logrus.FieldLogger, err error) {
	if err == nil {
		return
	}
	entry := log.WithError(err)
	switch {
	case engine.IsIntegrityFault(err):
		entry.Error("integrity fault, mutation skipped")
	case errors.Is(err, ErrDecode):
		entry.Warn("dropping undecodable event")
	case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrUnknownCommand):
		entry.Warn("ignoring unrecognised event")
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionFinished):
		entry.Warn("event for inactive session rejected")
	default:
		entry.Error("event failed")
	}
}
