package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	engine "github.com/jason-s-yu/hanabot/engine"
)

// ActionRecord describes one action applied to a session.
type ActionRecord struct {
	SessionID   uuid.UUID       `json:"sessionId"`
	TableID     int             `json:"tableId"`
	ActionIndex int             `json:"actionIndex"`
	ActionType  string          `json:"actionType"`
	Payload     json.RawMessage `json:"payload"`
	Fault       string          `json:"fault,omitempty"`
	Timestamp   int64           `json:"timestamp"` // unix millis
}

// FinalRecord is the state of a session when the server ends the game.
type FinalRecord struct {
	SessionID  uuid.UUID       `json:"sessionId"`
	TableID    int             `json:"tableId"`
	DatabaseID int             `json:"databaseId"`
	Score      int             `json:"score"`
	MaxScore   int             `json:"maxScore"`
	Session    *engine.Session `json:"session"`
	FinishedAt time.Time       `json:"finishedAt"`
}

// Recorder observes sessions for history and persistence. Calls happen off
// the event path. Records of one session arrive in order from one goroutine,
// but different sessions call concurrently.
type Recorder interface {
	RecordAction(ctx context.Context, rec ActionRecord) error
	RecordFinal(ctx context.Context, rec FinalRecord) error
}

// MultiRecorder fans out to every non-nil recorder.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordAction(ctx context.Context, rec ActionRecord) error {
	var errs []error
	for _, r := range m {
		if r != nil {
			errs = append(errs, r.RecordAction(ctx, rec))
		}
	}
	return errors.Join(errs...)
}

func (m MultiRecorder) RecordFinal(ctx context.Context, rec FinalRecord) error {
	var errs []error
	for _, r := range m {
		if r != nil {
			errs = append(errs, r.RecordFinal(ctx, rec))
		}
	}
	return errors.Join(errs...)
}
