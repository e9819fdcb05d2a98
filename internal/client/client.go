// Package client connects the bot to a hanabi-live server: it logs in, keeps
// the websocket open and routes every inbound command to the lobby or the
// game dispatcher.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/hanabot/internal/game"
)

// ErrSendQueueFull is returned by Send when the writer has fallen behind.
var ErrSendQueueFull = errors.New("send queue full")

// readLimit fits a full gameActionList replay.
const readLimit = 4 << 20

// Handler processes one inbound command.
type Handler interface {
	Handle(cmd string, data []byte) error
}

// Client owns one websocket connection. Send is safe for concurrent use; Run
// must be called exactly once.
type Client struct {
	conn *websocket.Conn
	out  chan []byte
	log  logrus.FieldLogger
}

// Dial opens the websocket at url with the session cookie from Login.
func Dial(ctx context.Context, url, cookie string, buffer int, log logrus.FieldLogger) (*Client, error) {
	hdr := http.Header{}
	hdr.Set("Cookie", cookie)
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: hdr})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return New(conn, buffer, log), nil
}

// New wraps an established connection.
func New(conn *websocket.Conn, buffer int, log logrus.FieldLogger) *Client {
	if buffer <= 0 {
		buffer = 1
	}
	conn.SetReadLimit(readLimit)
	return &Client{conn: conn, out: make(chan []byte, buffer), log: log}
}

// Send queues command for the writer. It never blocks.
func (c *Client) Send(command string, payload any) error {
	msg, err := EncodeFrame(command, payload)
	if err != nil {
		return err
	}
	select {
	case c.out <- msg:
		c.log.WithField("command", command).Debug("queued command")
		return nil
	default:
		return fmt.Errorf("%s: %w", command, ErrSendQueueFull)
	}
}

// Run pumps frames until ctx is cancelled or the connection fails. Handler
// errors are logged and never end the stream. A cancelled ctx or a normal
// close by the server returns nil.
func (c *Client) Run(ctx context.Context, h Handler) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump(gctx, h) })
	g.Go(func() error { return c.writePump(gctx) })
	err := g.Wait()
	_ = c.conn.Close(websocket.StatusNormalClosure, "")

	if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		return nil
	}
	return err
}

func (c *Client) readPump(ctx context.Context, h Handler) error {
	for {
		typ, msg, err := c.conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		cmd, data := SplitFrame(msg)
		if err := h.Handle(cmd, data); err != nil {
			game.LogFault(c.log.WithField("command", cmd), err)
		}
	}
}

func (c *Client) writePump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-c.out:
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

// SplitFrame separates "command {json}" on the first space. A frame without
// a payload yields "{}".
func SplitFrame(msg []byte) (string, []byte) {
	cmd, data, _ := bytes.Cut(msg, []byte{' '})
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}
	return string(cmd), data
}

// EncodeFrame renders an outbound frame. A nil payload is sent as {}.
func EncodeFrame(command string, payload any) ([]byte, error) {
	if payload == nil {
		payload = struct{}{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", command, err)
	}
	msg := make([]byte, 0, len(command)+1+len(b))
	msg = append(msg, command...)
	msg = append(msg, ' ')
	return append(msg, b...), nil
}
