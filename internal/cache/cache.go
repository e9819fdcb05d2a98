// Package cache appends session history to a Redis stream so an external
// consumer can rebuild or audit games.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/hanabot/internal/game"
)

// DefaultStream is used when no stream key is configured.
const DefaultStream = "hanabot:actions"

// maxStreamLen caps the stream with approximate trimming.
const maxStreamLen = 100_000

// Publisher writes action and final records with XADD. It implements
// game.Recorder.
type Publisher struct {
	rdb    redis.Cmdable
	stream string
}

// New wraps an existing client.
func New(rdb redis.Cmdable, stream string) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{rdb: rdb, stream: stream}
}

// Connect dials addr, which is either host:port or a redis:// URL, and checks
// it with PING. The returned client must be closed by the caller.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// RecordAction appends one applied action to the stream.
func (p *Publisher) RecordAction(ctx context.Context, rec game.ActionRecord) error {
	return p.add(ctx, actionValues(rec))
}

// RecordFinal appends a closing entry for the session.
func (p *Publisher) RecordFinal(ctx context.Context, rec game.FinalRecord) error {
	values, err := finalValues(rec)
	if err != nil {
		return err
	}
	return p.add(ctx, values)
}

func (p *Publisher) add(ctx context.Context, values map[string]any) error {
	err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func actionValues(rec game.ActionRecord) map[string]any {
	v := map[string]any{
		"kind":      "action",
		"session":   rec.SessionID.String(),
		"table":     rec.TableID,
		"index":     rec.ActionIndex,
		"type":      rec.ActionType,
		"payload":   string(rec.Payload),
		"timestamp": rec.Timestamp,
	}
	if rec.Fault != "" {
		v["fault"] = rec.Fault
	}
	return v
}

func finalValues(rec game.FinalRecord) (map[string]any, error) {
	state, err := json.Marshal(rec.Session)
	if err != nil {
		return nil, fmt.Errorf("encode final session %s: %w", rec.SessionID, err)
	}
	return map[string]any{
		"kind":       "final",
		"session":    rec.SessionID.String(),
		"table":      rec.TableID,
		"databaseId": rec.DatabaseID,
		"score":      rec.Score,
		"maxScore":   rec.MaxScore,
		"state":      string(state),
		"timestamp":  rec.FinishedAt.UnixMilli(),
	}, nil
}
