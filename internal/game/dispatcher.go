package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	engine "github.com/jason-s-yu/hanabot/engine"
	"github.com/jason-s-yu/hanabot/engine/agent"
)

// Sender queues an outbound command. It must not block on the network.
type Sender interface {
	Send(command string, payload any) error
}

// Options configures a Dispatcher. Self and Sender are required.
type Options struct {
	Self     func() string // our username, matched against init names
	Policy   agent.Policy
	Sender   Sender
	Recorder Recorder
	Log      logrus.FieldLogger
}

// Dispatcher owns every live table. Events for one table are applied in
// arrival order under that table's lock; different tables share nothing.
type Dispatcher struct {
	mu       sync.RWMutex
	tables   map[int]*Table
	finished map[int]struct{}
	workers  sync.WaitGroup // record workers

	self     func() string
	policy   agent.Policy
	sender   Sender
	recorder Recorder
	log      logrus.FieldLogger
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		tables:   make(map[int]*Table),
		finished: make(map[int]struct{}),
		self:     opts.Self,
		policy:   opts.Policy,
		sender:   opts.Sender,
		recorder: opts.Recorder,
		log:      opts.Log,
	}
	if d.policy == nil {
		d.policy = agent.SlotOneClue{}
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	if d.self == nil {
		d.self = func() string { return "" }
	}
	return d
}

// Handles reports whether cmd is a game command.
func (d *Dispatcher) Handles(cmd string) bool {
	switch cmd {
	case CmdInit, CmdGameAction, CmdGameActionList, CmdYourTurn, CmdDatabaseID:
		return true
	}
	return false
}

// Handle processes one decoded server command.
func (d *Dispatcher) Handle(cmd string, data []byte) error {
	switch cmd {
	case CmdInit:
		return d.handleInit(data)
	case CmdGameAction:
		return d.handleGameAction(data)
	case CmdGameActionList:
		return d.handleGameActionList(data)
	case CmdYourTurn:
		return d.handleYourTurn(data)
	case CmdDatabaseID:
		return d.handleDatabaseID(data)
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
	}
}

func (d *Dispatcher) handleInit(data []byte) error {
	var p initPayload
	if err := unmarshalPayload(CmdInit, data, &p); err != nil {
		return err
	}
	tableID, err := requireTable(CmdInit, p.TableID)
	if err != nil {
		return err
	}
	t, err := newTable(tableID, p.Names, d.self(), d.log, d.recorder)
	if err != nil {
		return decodeErr(fmt.Sprintf("init table %d", tableID), err)
	}
	if t.records != nil {
		d.workers.Add(1)
		go func() {
			defer d.workers.Done()
			t.recordLoop(d.recorder)
		}()
	}

	d.mu.Lock()
	old, replaced := d.tables[tableID]
	d.tables[tableID] = t
	delete(d.finished, tableID)
	d.mu.Unlock()
	if replaced {
		t.log.WithField("replaced", old.ID).Warn("init for a live table, replacing session")
		old.Mu.Lock()
		old.closeRecords(nil)
		old.Mu.Unlock()
	}

	t.log.WithFields(logrus.Fields{
		"players":  p.Names,
		"ourIndex": t.Session.OurIndex,
	}).Info("session created")
	return d.send(CmdGetGameInfo2, TableRequest{TableID: tableID})
}

func (d *Dispatcher) handleGameAction(data []byte) error {
	var p actionPayload
	if err := unmarshalPayload(CmdGameAction, data, &p); err != nil {
		return err
	}
	tableID, err := requireTable(CmdGameAction, p.TableID)
	if err != nil {
		return err
	}
	if len(p.Action) == 0 {
		return decodeErr("gameAction: action is required", nil)
	}
	t, err := d.lookup(tableID)
	if err != nil {
		return err
	}
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.applyRaw(p.Action)
}

// handleGameActionList replays a catch-up list with the same rule as single
// actions. A faulty entry is skipped and the rest are still applied.
func (d *Dispatcher) handleGameActionList(data []byte) error {
	var p actionListPayload
	if err := unmarshalPayload(CmdGameActionList, data, &p); err != nil {
		return err
	}
	tableID, err := requireTable(CmdGameActionList, p.TableID)
	if err != nil {
		return err
	}
	t, err := d.lookup(tableID)
	if err != nil {
		return err
	}
	t.Mu.Lock()
	defer t.Mu.Unlock()
	var errs []error
	for _, raw := range p.List {
		if err := t.applyRaw(raw); err != nil {
			errs = append(errs, err)
		}
	}
	t.log.WithField("count", len(p.List)).Debug("replayed action list")
	return errors.Join(errs...)
}

// handleYourTurn evaluates the policy on a snapshot, so the table lock is not
// held while the move is queued.
func (d *Dispatcher) handleYourTurn(data []byte) error {
	var p tablePayload
	if err := unmarshalPayload(CmdYourTurn, data, &p); err != nil {
		return err
	}
	tableID, err := requireTable(CmdYourTurn, p.TableID)
	if err != nil {
		return err
	}
	t, err := d.lookup(tableID)
	if err != nil {
		return err
	}
	snap := t.Snapshot()
	dec, err := d.policy.Decide(snap)
	if err != nil {
		return fmt.Errorf("table %d decide: %w", tableID, err)
	}
	t.log.WithFields(logrus.Fields{
		"turn":     snap.TurnNumber,
		"decision": dec.String(),
	}).Info("sending decision")
	return d.send(CmdAction, ActionMessage{
		TableID: tableID,
		Type:    dec.Type,
		Target:  dec.Target,
		Value:   dec.Value,
	})
}

func (d *Dispatcher) handleDatabaseID(data []byte) error {
	var p tablePayload
	if err := unmarshalPayload(CmdDatabaseID, data, &p); err != nil {
		return err
	}
	tableID, err := requireTable(CmdDatabaseID, p.TableID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	t, ok := d.tables[tableID]
	if ok {
		delete(d.tables, tableID)
		d.finished[tableID] = struct{}{}
	}
	d.mu.Unlock()
	if !ok {
		return d.missing(tableID)
	}

	t.Mu.Lock()
	t.Session.Finish()
	final := t.Session.Snapshot()
	// The final record trails every queued action of this session.
	t.closeRecords(&FinalRecord{
		SessionID:  t.ID,
		TableID:    t.TableID,
		DatabaseID: p.DatabaseID,
		Score:      final.Score(),
		MaxScore:   final.MaxScore(),
		Session:    final,
		FinishedAt: time.Now().UTC(),
	})
	t.Mu.Unlock()

	t.log.WithFields(logrus.Fields{
		"score":    final.Score(),
		"maxScore": final.MaxScore(),
	}).Info("session finished")
	return d.send(CmdTableUnattend, TableRequest{TableID: tableID})
}

func (d *Dispatcher) lookup(tableID int) (*Table, error) {
	d.mu.RLock()
	t, ok := d.tables[tableID]
	d.mu.RUnlock()
	if !ok {
		return nil, d.missing(tableID)
	}
	return t, nil
}

func (d *Dispatcher) missing(tableID int) error {
	d.mu.RLock()
	_, done := d.finished[tableID]
	d.mu.RUnlock()
	if done {
		return fmt.Errorf("table %d: %w", tableID, ErrSessionFinished)
	}
	return fmt.Errorf("table %d: %w", tableID, ErrSessionNotFound)
}

func (d *Dispatcher) send(cmd string, payload any) error {
	if d.sender == nil {
		return fmt.Errorf("send %s: no sender configured", cmd)
	}
	if err := d.sender.Send(cmd, payload); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	return nil
}

// Session returns a snapshot of a live table's session.
func (d *Dispatcher) Session(tableID int) (*engine.Session, error) {
	t, err := d.lookup(tableID)
	if err != nil {
		return nil, err
	}
	return t.Snapshot(), nil
}

// Len returns the number of live tables.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tables)
}

// Close stops accepting records for every live table and waits until every
// queued record, finished tables included, has reached the recorder. Handle
// must not be called afterwards.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	tables := make([]*Table, 0, len(d.tables))
	for _, t := range d.tables {
		tables = append(tables, t)
	}
	d.mu.Unlock()

	for _, t := range tables {
		t.Mu.Lock()
		t.closeRecords(nil)
		t.Mu.Unlock()
	}
	d.workers.Wait()
}
