package client

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/hanabot/internal/game"
)

type sentMsg struct {
	cmd     string
	payload any
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []sentMsg
}

func (f *fakeSender) Send(cmd string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sentMsg{cmd, payload})
	return nil
}

func (f *fakeSender) all() []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMsg(nil), f.msgs...)
}

func setupLobby(t *testing.T) (*Lobby, *fakeSender) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	sender := &fakeSender{}
	l := NewLobby(sender, logger)
	require.NoError(t, l.Handle(CmdWelcome, []byte(`{"userID":12,"username":"bot"}`)))
	return l, sender
}

func TestLobby_Welcome(t *testing.T) {
	l, _ := setupLobby(t)
	assert.Equal(t, "bot", l.Username())
}

func TestLobby_TableRegistry(t *testing.T) {
	l, _ := setupLobby(t)
	require.NoError(t, l.Handle(CmdTableList, []byte(`[
		{"id":3,"name":"b","players":["carol"],"running":true},
		{"id":1,"name":"a","players":["alice"],"running":false}
	]`)))
	require.NoError(t, l.Handle(CmdTable, []byte(`{"id":1,"name":"a","players":["alice","dave"],"running":false}`)))

	tables := l.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].ID)
	assert.Equal(t, []string{"alice", "dave"}, tables[0].Players)
	assert.True(t, tables[1].Running)

	require.NoError(t, l.Handle(CmdTableGone, []byte(`{"id":3}`)))
	assert.Len(t, l.Tables(), 1)
}

func TestLobby_TableStartRequestsGameInfo(t *testing.T) {
	l, sender := setupLobby(t)
	require.NoError(t, l.Handle(CmdTableStart, []byte(`{"tableID":42}`)))
	assert.Equal(t, []sentMsg{{CmdGetGameInfo1, game.TableRequest{TableID: 42}}}, sender.all())

	assert.ErrorIs(t, l.Handle(CmdTableStart, []byte(`{}`)), game.ErrDecode)
}

func TestLobby_ChatJoin(t *testing.T) {
	tests := []struct {
		name   string
		tables string
		msg    string
		want   []sentMsg
	}{
		{
			name:   "joins open table with password",
			tables: `[{"id":5,"players":["alice"],"running":false}]`,
			msg:    `{"msg":"/join hunter2","who":"alice","recipient":"bot"}`,
			want:   []sentMsg{{CmdTableJoin, TableJoin{TableID: 5, Password: "hunter2"}}},
		},
		{
			name:   "joins without password",
			tables: `[{"id":5,"players":["alice"],"running":false}]`,
			msg:    `{"msg":"/join","who":"alice","recipient":"bot"}`,
			want:   []sentMsg{{CmdTableJoin, TableJoin{TableID: 5}}},
		},
		{
			name:   "skips running tables",
			tables: `[{"id":5,"players":["alice"],"running":true}]`,
			msg:    `{"msg":"/join","who":"alice","recipient":"bot"}`,
			want:   []sentMsg{{CmdChatPM, ChatPM{Msg: msgNoTable, Recipient: "alice", Room: "lobby"}}},
		},
		{
			name:   "full table",
			tables: `[{"id":5,"players":["a","b","c","d","e","alice"],"running":false}]`,
			msg:    `{"msg":"/join","who":"alice","recipient":"bot"}`,
			want:   []sentMsg{{CmdChatPM, ChatPM{Msg: msgTableFull, Recipient: "alice", Room: "lobby"}}},
		},
		{
			name:   "unknown command",
			tables: `[]`,
			msg:    `{"msg":"/dance","who":"alice","recipient":"bot"}`,
			want:   []sentMsg{{CmdChatPM, ChatPM{Msg: msgInvalidCommand, Recipient: "alice", Room: "lobby"}}},
		},
		{
			name:   "public message ignored",
			tables: `[]`,
			msg:    `{"msg":"/join","who":"alice","recipient":"","room":"lobby"}`,
		},
		{
			name:   "plain text ignored",
			tables: `[]`,
			msg:    `{"msg":"hello","who":"alice","recipient":"bot"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, sender := setupLobby(t)
			require.NoError(t, l.Handle(CmdTableList, []byte(tt.tables)))
			require.NoError(t, l.Handle(CmdChat, []byte(tt.msg)))
			assert.Equal(t, tt.want, sender.all())
		})
	}
}

func TestLobby_ServerNotices(t *testing.T) {
	logger, hook := test.NewNullLogger()
	l := NewLobby(&fakeSender{}, logger)

	require.NoError(t, l.Handle(CmdWarning, []byte(`{"warning":"you are not at that table"}`)))
	require.NoError(t, l.Handle(CmdError, []byte(`{"error":"internal"}`)))
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "server warning", entries[0].Message)
	assert.Equal(t, "server error", entries[1].Message)
}

func TestLobby_DecodeFault(t *testing.T) {
	l, _ := setupLobby(t)
	assert.ErrorIs(t, l.Handle(CmdTable, []byte(`{"id":"x"}`)), game.ErrDecode)
	assert.ErrorIs(t, l.Handle("tableProgress", nil), game.ErrUnknownCommand)
}
