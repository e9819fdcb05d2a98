package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabot/internal/game"
)

// Lobby commands.
const (
	CmdWelcome    = "welcome"
	CmdWarning    = "warning"
	CmdError      = "error"
	CmdChat       = "chat"
	CmdTable      = "table"
	CmdTableList  = "tableList"
	CmdTableGone  = "tableGone"
	CmdTableStart = "tableStart"

	CmdChatPM       = "chatPM"
	CmdTableJoin    = "tableJoin"
	CmdGetGameInfo1 = "getGameInfo1"
)

// maxTablePlayers is the seat limit of a hanabi-live table.
const maxTablePlayers = 6

// Chat replies.
const (
	msgInvalidCommand = "That is not a valid command."
	msgTableFull      = "Your game is full. Please make room for me before requesting that I join your game."
	msgNoTable        = "Please create a table first before requesting that I join your game."
)

// TableInfo is the lobby's view of one table.
type TableInfo struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Players           []string `json:"players"`
	Running           bool     `json:"running"`
	PasswordProtected bool     `json:"passwordProtected"`
}

type chatMessage struct {
	Msg       string `json:"msg"`
	Who       string `json:"who"`
	Recipient string `json:"recipient"`
	Room      string `json:"room"`
}

// ChatPM is the outbound private chat payload.
type ChatPM struct {
	Msg       string `json:"msg"`
	Recipient string `json:"recipient"`
	Room      string `json:"room"`
}

// TableJoin asks the server to seat the bot.
type TableJoin struct {
	TableID  int    `json:"tableID"`
	Password string `json:"password"`
}

// Lobby tracks our username and the open tables, and answers join requests
// sent by private message.
type Lobby struct {
	mu       sync.RWMutex
	username string
	tables   map[int]TableInfo

	sender game.Sender
	log    logrus.FieldLogger
}

// NewLobby returns a lobby that replies through sender.
func NewLobby(sender game.Sender, log logrus.FieldLogger) *Lobby {
	return &Lobby{tables: make(map[int]TableInfo), sender: sender, log: log}
}

// Username is the name the server welcomed us with.
func (l *Lobby) Username() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.username
}

// Tables lists known tables by id.
func (l *Lobby) Tables() []TableInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]TableInfo, 0, len(l.tables))
	for _, t := range l.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Handles reports whether cmd is a lobby command.
func (l *Lobby) Handles(cmd string) bool {
	switch cmd {
	case CmdWelcome, CmdWarning, CmdError, CmdChat, CmdTable, CmdTableList, CmdTableGone, CmdTableStart:
		return true
	}
	return false
}

// Handle processes one lobby command.
func (l *Lobby) Handle(cmd string, data []byte) error {
	switch cmd {
	case CmdWelcome:
		var p struct {
			Username string `json:"username"`
		}
		if err := decode(cmd, data, &p); err != nil {
			return err
		}
		l.mu.Lock()
		l.username = p.Username
		l.mu.Unlock()
		l.log.WithField("username", p.Username).Info("connected to lobby")
		return nil

	case CmdWarning, CmdError:
		var p map[string]any
		if err := decode(cmd, data, &p); err != nil {
			return err
		}
		entry := l.log.WithField("payload", p)
		if cmd == CmdError {
			entry.Error("server error")
		} else {
			entry.Warn("server warning")
		}
		return nil

	case CmdTable:
		var t TableInfo
		if err := decode(cmd, data, &t); err != nil {
			return err
		}
		l.upsert(t)
		return nil

	case CmdTableList:
		var ts []TableInfo
		if err := decode(cmd, data, &ts); err != nil {
			return err
		}
		for _, t := range ts {
			l.upsert(t)
		}
		return nil

	case CmdTableGone:
		var p struct {
			ID int `json:"id"`
		}
		if err := decode(cmd, data, &p); err != nil {
			return err
		}
		l.mu.Lock()
		delete(l.tables, p.ID)
		l.mu.Unlock()
		return nil

	case CmdTableStart:
		var p struct {
			TableID *int `json:"tableID"`
		}
		if err := decode(cmd, data, &p); err != nil {
			return err
		}
		if p.TableID == nil {
			return fmt.Errorf("%w: tableStart: tableID is required", game.ErrDecode)
		}
		return l.sender.Send(CmdGetGameInfo1, game.TableRequest{TableID: *p.TableID})

	case CmdChat:
		var m chatMessage
		if err := decode(cmd, data, &m); err != nil {
			return err
		}
		return l.chat(m)

	default:
		return fmt.Errorf("%w %q", game.ErrUnknownCommand, cmd)
	}
}

func (l *Lobby) upsert(t TableInfo) {
	l.mu.Lock()
	l.tables[t.ID] = t
	l.mu.Unlock()
}

// chat answers private slash commands addressed to us.
func (l *Lobby) chat(m chatMessage) error {
	self := l.Username()
	if self == "" || m.Recipient != self || !strings.HasPrefix(m.Msg, "/") {
		return nil
	}
	command, arg, _ := strings.Cut(m.Msg[1:], " ")
	if command != "join" {
		return l.reply(m.Who, msgInvalidCommand)
	}

	table, ok := l.openTableOf(m.Who)
	switch {
	case !ok:
		return l.reply(m.Who, msgNoTable)
	case len(table.Players) >= maxTablePlayers:
		return l.reply(m.Who, msgTableFull)
	}
	l.log.WithFields(logrus.Fields{"table": table.ID, "requestedBy": m.Who}).Info("joining table")
	return l.sender.Send(CmdTableJoin, TableJoin{TableID: table.ID, Password: arg})
}

// openTableOf finds the lowest-id table that has not started and seats who.
func (l *Lobby) openTableOf(who string) (TableInfo, bool) {
	for _, t := range l.Tables() {
		if t.Running {
			continue
		}
		for _, p := range t.Players {
			if p == who {
				return t, true
			}
		}
	}
	return TableInfo{}, false
}

func (l *Lobby) reply(to, msg string) error {
	return l.sender.Send(CmdChatPM, ChatPM{Msg: msg, Recipient: to, Room: "lobby"})
}

func decode(cmd string, data []byte, v any) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", game.ErrDecode, cmd, err)
	}
	return nil
}
