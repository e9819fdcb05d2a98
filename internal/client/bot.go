package client

import (
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabot/internal/game"
)

// Bot routes inbound commands to the game dispatcher or the lobby. Commands
// neither understands are ignored.
type Bot struct {
	Lobby *Lobby
	Games *game.Dispatcher
	log   logrus.FieldLogger
}

// NewBot joins a lobby and a dispatcher into one Handler.
func NewBot(lobby *Lobby, games *game.Dispatcher, log logrus.FieldLogger) *Bot {
	return &Bot{Lobby: lobby, Games: games, log: log}
}

// Handle implements Handler.
func (b *Bot) Handle(cmd string, data []byte) error {
	switch {
	case b.Games.Handles(cmd):
		return b.Games.Handle(cmd, data)
	case b.Lobby.Handles(cmd):
		return b.Lobby.Handle(cmd, data)
	default:
		b.log.WithField("command", cmd).Debug("ignoring command")
		return nil
	}
}
