// Package database persists the final state of finished sessions to
// PostgreSQL.
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/hanabot/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS hanabot_games (
	database_id  INTEGER PRIMARY KEY,
	session_id   UUID NOT NULL,
	table_id     INTEGER NOT NULL,
	players      TEXT[] NOT NULL,
	our_index    INTEGER NOT NULL,
	score        INTEGER NOT NULL,
	max_score    INTEGER NOT NULL,
	clue_tokens  INTEGER NOT NULL,
	life_tokens  INTEGER NOT NULL,
	turns        INTEGER NOT NULL,
	final_state  JSONB NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
)`

const upsertFinal = `
INSERT INTO hanabot_games (
	database_id, session_id, table_id, players, our_index, score, max_score,
	clue_tokens, life_tokens, turns, final_state, finished_at
) VALUES (
	@database_id, @session_id, @table_id, @players, @our_index, @score, @max_score,
	@clue_tokens, @life_tokens, @turns, @final_state, @finished_at
)
ON CONFLICT (database_id) DO UPDATE SET
	session_id  = EXCLUDED.session_id,
	table_id    = EXCLUDED.table_id,
	players     = EXCLUDED.players,
	our_index   = EXCLUDED.our_index,
	score       = EXCLUDED.score,
	max_score   = EXCLUDED.max_score,
	clue_tokens = EXCLUDED.clue_tokens,
	life_tokens = EXCLUDED.life_tokens,
	turns       = EXCLUDED.turns,
	final_state = EXCLUDED.final_state,
	finished_at = EXCLUDED.finished_at`

// Execer is the subset of pgxpool.Pool used by Store.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store writes final session snapshots. It implements game.Recorder and
// ignores per-action records.
type Store struct {
	db Execer
}

// New wraps a pool or connection.
func New(db Execer) *Store {
	return &Store{db: db}
}

// Connect opens a pool for url and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the games table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create hanabot_games: %w", err)
	}
	return nil
}

// RecordAction is a no-op; history lives in the action stream.
func (s *Store) RecordAction(context.Context, game.ActionRecord) error { return nil }

// RecordFinal upserts the finished session keyed by the server's database id.
func (s *Store) RecordFinal(ctx context.Context, rec game.FinalRecord) error {
	args, err := finalArgs(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertFinal, args); err != nil {
		return fmt.Errorf("store final state of table %d: %w", rec.TableID, err)
	}
	return nil
}

func finalArgs(rec game.FinalRecord) (pgx.NamedArgs, error) {
	if rec.Session == nil {
		return nil, fmt.Errorf("final record for table %d has no session", rec.TableID)
	}
	state, err := json.Marshal(rec.Session)
	if err != nil {
		return nil, fmt.Errorf("encode final state: %w", err)
	}
	s := rec.Session
	return pgx.NamedArgs{
		"database_id": rec.DatabaseID,
		"session_id":  rec.SessionID,
		"table_id":    rec.TableID,
		"players":     s.Players,
		"our_index":   s.OurIndex,
		"score":       rec.Score,
		"max_score":   rec.MaxScore,
		"clue_tokens": s.ClueTokens,
		"life_tokens": s.LifeTokens,
		"turns":       s.TurnNumber,
		"final_state": state,
		"finished_at": rec.FinishedAt,
	}, nil
}
