// Package game routes server game commands to per-table sessions and answers
// turn signals with a policy decision.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/jason-s-yu/hanabot/engine"
)

const (
	// recordTimeout bounds each recorder call.
	recordTimeout = 2 * time.Second
	// recordQueueSize is the per-table backlog of records awaiting the
	// recorder. Records beyond it are dropped, never reordered.
	recordQueueSize = 512
)

// Table owns the session of one server table. All access to Session goes
// through Mu. The logger is fixed at creation and safe to use without Mu.
type Table struct {
	ID      uuid.UUID // unique per session instance
	TableID int       // server table id

	Mu      sync.Mutex
	Session *engine.Session

	actionIndex int
	log         logrus.FieldLogger

	// records feeds a single worker so the recorder sees entries in
	// ActionIndex order with the final record last. Nil without a recorder.
	records chan recordJob
	closed  bool
}

// recordJob carries exactly one of action or final.
type recordJob struct {
	action *ActionRecord
	final  *FinalRecord
}

func newTable(tableID int, players []string, self string, log logrus.FieldLogger, rec Recorder) (*Table, error) {
	sess, err := engine.NewSession(players, self)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	t := &Table{
		ID:      id,
		TableID: tableID,
		Session: sess,
		log:     log.WithFields(logrus.Fields{"table": tableID, "session": id}),
	}
	if rec != nil {
		t.records = make(chan recordJob, recordQueueSize)
	}
	return t, nil
}

// recordLoop delivers queued records one at a time until the queue closes.
// It is started once per table that has a recorder.
func (t *Table) recordLoop(rec Recorder) {
	for job := range t.records {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if job.final != nil {
			if err := rec.RecordFinal(ctx, *job.final); err != nil {
				t.log.WithError(err).Warn("failed persisting final state")
			}
		} else if err := rec.RecordAction(ctx, *job.action); err != nil {
			t.log.WithError(err).WithField("index", job.action.ActionIndex).Warn("failed recording action")
		}
		cancel()
	}
}

// applyRaw decodes and applies one action. Assumes Mu is held.
func (t *Table) applyRaw(raw json.RawMessage) error {
	a, err := DecodeAction(raw)
	if err != nil {
		t.logAction("?", raw, err)
		return err
	}
	err = t.Apply(a)
	t.logAction(a.ActionType(), raw, err)
	return err
}

// Apply evolves the session by one action. On error the session is left as
// it was before the call. Assumes Mu is held.
func (t *Table) Apply(a Action) error {
	s := t.Session
	var err error
	switch a := a.(type) {
	case DrawAction:
		err = s.ApplyDraw(a.Who, a.Order, a.Suit, a.Rank)

	case PlayAction:
		if err = s.ApplyPlay(a.Which.Index, a.Which.Order, a.Which.Suit, a.Which.Rank); err == nil {
			s.LastAction = engine.LastAction{Type: "play", Who: s.CurrentPlayer, Order: a.Which.Order}
		}

	case DiscardAction:
		if err = s.ApplyDiscard(a.Which.Index, a.Which.Order, a.Which.Suit, a.Which.Rank); err == nil {
			if !a.Failed {
				s.ApplyDiscardRefund()
			}
			s.LastAction = engine.LastAction{Type: "discard", Who: s.CurrentPlayer, Order: a.Which.Order, Failed: a.Failed}
		}

	case ClueAction:
		if err = s.ApplyClue(a.Target, a.Clue, a.List); err == nil {
			s.ApplyClueCost()
			clue := a.Clue
			s.LastAction = engine.LastAction{Type: "clue", Who: s.CurrentPlayer, Target: a.Target, Clue: &clue}
		}

	case TurnAction:
		err = s.ApplyTurn(a.Num, a.Who)

	case StrikeAction:
		s.ApplyStrike()
		s.LastAction = engine.LastAction{Type: "strike", Who: s.CurrentPlayer}

	case UnknownAction:
		err = fmt.Errorf("%w %q", ErrUnknownAction, a.Type)

	default:
		err = fmt.Errorf("%w %T", ErrUnknownAction, a)
	}
	if err != nil {
		return fmt.Errorf("table %d %s: %w", t.TableID, a.ActionType(), err)
	}
	t.log.WithFields(logrus.Fields{
		"action": a.ActionType(),
		"turn":   s.TurnNumber,
	}).Debug("applied action")
	return nil
}

// logAction queues the action for the recorder. Assumes Mu is held.
func (t *Table) logAction(actionType string, raw json.RawMessage, fault error) {
	t.actionIndex++
	rec := ActionRecord{
		SessionID:   t.ID,
		TableID:     t.TableID,
		ActionIndex: t.actionIndex,
		ActionType:  actionType,
		Payload:     append(json.RawMessage(nil), raw...),
		Timestamp:   time.Now().UnixMilli(),
	}
	if fault != nil {
		rec.Fault = fault.Error()
	}
	t.enqueue(recordJob{action: &rec})
}

// enqueue hands a job to the record worker without blocking the event path.
// Assumes Mu is held.
func (t *Table) enqueue(job recordJob) {
	if t.records == nil || t.closed {
		return
	}
	select {
	case t.records <- job:
	default:
		entry := t.log.WithField("queued", recordQueueSize)
		if job.action != nil {
			entry = entry.WithField("index", job.action.ActionIndex)
		}
		entry.Warn("record queue full, dropping record")
	}
}

// closeRecords queues final, if any, behind every pending action and stops
// the worker once the queue drains. Assumes Mu is held.
func (t *Table) closeRecords(final *FinalRecord) {
	if t.records == nil || t.closed {
		return
	}
	if final != nil {
		t.enqueue(recordJob{final: final})
	}
	t.closed = true
	close(t.records)
}

// Snapshot returns a deep copy of the session.
func (t *Table) Snapshot() *engine.Session {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.Session.Snapshot()
}
