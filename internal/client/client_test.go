package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/hanabot/internal/game"
)

func TestSplitFrame(t *testing.T) {
	tests := []struct {
		in      string
		cmd     string
		payload string
	}{
		{`welcome {"username":"bot"}`, "welcome", `{"username":"bot"}`},
		{`chat {"msg":"a b c"}`, "chat", `{"msg":"a b c"}`},
		{`tableList [{"id":1}]`, "tableList", `[{"id":1}]`},
		{`yourTurn`, "yourTurn", `{}`},
		{`yourTurn `, "yourTurn", `{}`},
	}
	for _, tt := range tests {
		cmd, payload := SplitFrame([]byte(tt.in))
		assert.Equal(t, tt.cmd, cmd, tt.in)
		assert.Equal(t, tt.payload, string(payload), tt.in)
	}
}

func TestEncodeFrame(t *testing.T) {
	msg, err := EncodeFrame("getGameInfo2", game.TableRequest{TableID: 9})
	require.NoError(t, err)
	assert.Equal(t, `getGameInfo2 {"tableID":9}`, string(msg))

	msg, err = EncodeFrame("ping", nil)
	require.NoError(t, err)
	assert.Equal(t, `ping {}`, string(msg))

	_, err = EncodeFrame("bad", make(chan int))
	assert.Error(t, err)
}

// wsServer accepts one connection, hands it to script and reports the
// Cookie header it saw.
func wsServer(t *testing.T, script func(ctx context.Context, c *websocket.Conn)) (*httptest.Server, <-chan string) {
	t.Helper()
	cookies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookies <- r.Header.Get("Cookie")
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		script(r.Context(), c)
	}))
	t.Cleanup(srv.Close)
	return srv, cookies
}

func readFrame(ctx context.Context, t *testing.T, c *websocket.Conn) (string, []byte) {
	t.Helper()
	_, msg, err := c.Read(ctx)
	if !assert.NoError(t, err) {
		return "", nil
	}
	return SplitFrame(msg)
}

func writeFrame(ctx context.Context, t *testing.T, c *websocket.Conn, frame string) {
	t.Helper()
	assert.NoError(t, c.Write(ctx, websocket.MessageText, []byte(frame)))
}

func TestClient_PlaysTurnEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	actions := make(chan game.ActionMessage, 1)
	srv, cookies := wsServer(t, func(sctx context.Context, c *websocket.Conn) {
		writeFrame(sctx, t, c, `welcome {"userID":1,"username":"bot"}`)
		writeFrame(sctx, t, c, `init {"tableID":3,"names":["alice","bot"]}`)

		cmd, data := readFrame(sctx, t, c)
		assert.Equal(t, game.CmdGetGameInfo2, cmd)
		assert.JSONEq(t, `{"tableID":3}`, string(data))

		writeFrame(sctx, t, c, `gameActionList {"tableID":3,"list":[`+
			`{"type":"draw","who":0,"order":0,"suit":1,"rank":2},`+
			`{"type":"draw","who":1,"order":1,"suit":-1,"rank":-1},`+
			`{"type":"turn","num":0,"who":1}]}`)
		writeFrame(sctx, t, c, `someLobbyNoise {"x":1}`)
		writeFrame(sctx, t, c, `gameAction not-json`)
		writeFrame(sctx, t, c, `yourTurn {"tableID":3}`)

		cmd, data = readFrame(sctx, t, c)
		assert.Equal(t, game.CmdAction, cmd)
		var msg game.ActionMessage
		assert.NoError(t, json.Unmarshal(data, &msg))
		actions <- msg

		_ = c.Close(websocket.StatusNormalClosure, "done")
	})

	logger, _ := test.NewNullLogger()
	cl, err := Dial(ctx, srv.URL, "hanabi.sid=abc", 8, logger)
	require.NoError(t, err)
	lobby := NewLobby(cl, logger)
	games := game.NewDispatcher(game.Options{Self: lobby.Username, Sender: cl, Log: logger})

	require.NoError(t, cl.Run(ctx, NewBot(lobby, games, logger)))
	assert.Equal(t, "hanabi.sid=abc", <-cookies)

	select {
	case msg := <-actions:
		require.NotNil(t, msg.Value)
		assert.Equal(t, 3, msg.TableID)
		assert.Equal(t, 0, msg.Target)
		assert.Equal(t, 2, *msg.Value)
	default:
		t.Fatal("server did not receive an action")
	}

	s, err := games.Session(3)
	require.NoError(t, err)
	assert.Equal(t, 1, s.OurIndex)
	assert.Len(t, s.Hands[1], 1)
}

func TestClient_RunStopsOnCancel(t *testing.T) {
	srv, _ := wsServer(t, func(sctx context.Context, c *websocket.Conn) {
		_, _, _ = c.Read(sctx)
	})
	logger, _ := test.NewNullLogger()
	cl, err := Dial(context.Background(), srv.URL, "", 1, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	bot := NewBot(NewLobby(cl, logger), game.NewDispatcher(game.Options{Sender: cl, Log: logger}), logger)
	go func() { done <- cl.Run(ctx, bot) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClient_SendQueueFull(t *testing.T) {
	srv, _ := wsServer(t, func(sctx context.Context, c *websocket.Conn) {
		_, _, _ = c.Read(sctx)
	})
	logger, _ := test.NewNullLogger()
	cl, err := Dial(context.Background(), srv.URL, "", 1, logger)
	require.NoError(t, err)
	defer cl.conn.CloseNow()

	require.NoError(t, cl.Send("tableUnattend", game.TableRequest{TableID: 1}))
	err = cl.Send("tableUnattend", game.TableRequest{TableID: 2})
	assert.ErrorIs(t, err, ErrSendQueueFull)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "bot", r.PostForm.Get("version"))
		if r.PostForm.Get("username") != "bot" || r.PostForm.Get("password") != "secret" {
			http.Error(w, "wrong password", http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "hanabi.sid", Value: "abc", Path: "/", HttpOnly: true})
	}))
	defer srv.Close()

	cookie, err := Login(context.Background(), srv.Client(), srv.URL+"/", "bot", "secret")
	require.NoError(t, err)
	assert.Equal(t, "hanabi.sid=abc", cookie)

	_, err = Login(context.Background(), srv.Client(), srv.URL, "bot", "nope")
	require.ErrorIs(t, err, ErrLoginFailed)
	assert.True(t, strings.Contains(err.Error(), "wrong password"))
}

func TestLogin_NoCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := Login(context.Background(), srv.Client(), srv.URL, "bot", "secret")
	assert.ErrorIs(t, err, ErrLoginFailed)
}
