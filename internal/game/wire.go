package game

import (
	"encoding/json"
	"fmt"

	engine "github.com/jason-s-yu/hanabot/engine"
)

// Inbound commands handled by the dispatcher.
const (
	CmdInit           = "init"
	CmdGameAction     = "gameAction"
	CmdGameActionList = "gameActionList"
	CmdYourTurn       = "yourTurn"
	CmdDatabaseID     = "databaseID"
)

// Outbound commands sent by the dispatcher.
const (
	CmdAction        = "action"
	CmdGetGameInfo2  = "getGameInfo2"
	CmdTableUnattend = "tableUnattend"
)

// Action is one decoded entry of the game action stream. The concrete types
// below are the only implementations.
type Action interface {
	ActionType() string
}

// CardRef identifies a card leaving a hand. Suit and Rank reveal its identity.
type CardRef struct {
	Index int         `json:"index"`
	Order int         `json:"order"`
	Suit  engine.Suit `json:"suit"`
	Rank  engine.Rank `json:"rank"`
}

type DrawAction struct {
	Who   int
	Order int
	Suit  engine.Suit
	Rank  engine.Rank
}

type PlayAction struct {
	Which CardRef
}

type DiscardAction struct {
	Which  CardRef
	Failed bool
}

type ClueAction struct {
	Clue   engine.Clue
	Giver  int
	Target int
	List   []int
}

type TurnAction struct {
	Num int
	Who int
}

type StrikeAction struct {
	Num int
}

// UnknownAction is any type tag this bot does not track.
type UnknownAction struct {
	Type string
}

func (DrawAction) ActionType() string      { return "draw" }
func (PlayAction) ActionType() string      { return "play" }
func (DiscardAction) ActionType() string   { return "discard" }
func (ClueAction) ActionType() string      { return "clue" }
func (TurnAction) ActionType() string      { return "turn" }
func (StrikeAction) ActionType() string    { return "strike" }
func (a UnknownAction) ActionType() string { return a.Type }

// Wire shapes. Pointer fields are required and reported as decode faults
// when absent.
type (
	wireTag struct {
		Type *string `json:"type"`
	}
	wireDraw struct {
		Who   *int         `json:"who"`
		Order *int         `json:"order"`
		Suit  *engine.Suit `json:"suit"`
		Rank  *engine.Rank `json:"rank"`
	}
	wireCardRef struct {
		Index *int         `json:"index"`
		Order *int         `json:"order"`
		Suit  *engine.Suit `json:"suit"`
		Rank  *engine.Rank `json:"rank"`
	}
	wirePlay struct {
		Which *wireCardRef `json:"which"`
	}
	wireDiscard struct {
		Which  *wireCardRef `json:"which"`
		Failed bool         `json:"failed"`
	}
	wireClue struct {
		Clue *struct {
			Type  *engine.ClueKind `json:"type"`
			Value *int             `json:"value"`
		} `json:"clue"`
		Giver  int   `json:"giver"`
		Target *int  `json:"target"`
		List   []int `json:"list"`
	}
	wireTurn struct {
		Num *int `json:"num"`
		Who *int `json:"who"`
	}
	wireStrike struct {
		Num int `json:"num"`
	}
)

func decodeErr(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, what, err)
	}
	return fmt.Errorf("%w: %s", ErrDecode, what)
}

func (w *wireCardRef) ref(what string) (CardRef, error) {
	if w == nil || w.Index == nil || w.Order == nil {
		return CardRef{}, decodeErr(what+": which.index and which.order are required", nil)
	}
	ref := CardRef{Index: *w.Index, Order: *w.Order, Suit: engine.UnknownSuit, Rank: engine.UnknownRank}
	if w.Suit != nil {
		ref.Suit = *w.Suit
	}
	if w.Rank != nil {
		ref.Rank = *w.Rank
	}
	return ref, nil
}

// DecodeAction parses one action object. Unrecognised type tags decode to
// UnknownAction without error.
func DecodeAction(raw json.RawMessage) (Action, error) {
	var tag wireTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, decodeErr("action", err)
	}
	if tag.Type == nil {
		return nil, decodeErr("action: missing type", nil)
	}

	switch *tag.Type {
	case "draw":
		var w wireDraw
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, decodeErr("draw", err)
		}
		if w.Who == nil || w.Order == nil {
			return nil, decodeErr("draw: who and order are required", nil)
		}
		a := DrawAction{Who: *w.Who, Order: *w.Order, Suit: engine.UnknownSuit, Rank: engine.UnknownRank}
		if w.Suit != nil {
			a.Suit = *w.Suit
		}
		if w.Rank != nil {
			a.Rank = *w.Rank
		}
		return a, nil

	case "play":
		var w wirePlay
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, decodeErr("play", err)
		}
		ref, err := w.Which.ref("play")
		if err != nil {
			return nil, err
		}
		return PlayAction{Which: ref}, nil

	case "discard":
		var w wireDiscard
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, decodeErr("discard", err)
		}
		ref, err := w.Which.ref("discard")
		if err != nil {
			return nil, err
		}
		return DiscardAction{Which: ref, Failed: w.Failed}, nil

	case "clue":
		var w wireClue
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, decodeErr("clue", err)
		}
		if w.Clue == nil || w.Clue.Type == nil || w.Clue.Value == nil || w.Target == nil {
			return nil, decodeErr("clue: clue.type, clue.value and target are required", nil)
		}
		clue := engine.Clue{Kind: *w.Clue.Type, Value: *w.Clue.Value}
		if _, err := engine.CluePredicate(clue); err != nil {
			return nil, fmt.Errorf("%w: clue %s %d: %w", ErrDecode, clue.Kind, clue.Value, err)
		}
		return ClueAction{
			Clue:   clue,
			Giver:  w.Giver,
			Target: *w.Target,
			List:   w.List,
		}, nil

	case "turn":
		var w wireTurn
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, decodeErr("turn", err)
		}
		if w.Num == nil || w.Who == nil {
			return nil, decodeErr("turn: num and who are required", nil)
		}
		return TurnAction{Num: *w.Num, Who: *w.Who}, nil

	case "strike":
		var w wireStrike
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, decodeErr("strike", err)
		}
		return StrikeAction{Num: w.Num}, nil

	default:
		return UnknownAction{Type: *tag.Type}, nil
	}
}

// Command payloads.
type (
	initPayload struct {
		TableID *int     `json:"tableID"`
		Names   []string `json:"names"`
	}
	actionPayload struct {
		TableID *int            `json:"tableID"`
		Action  json.RawMessage `json:"action"`
	}
	actionListPayload struct {
		TableID *int              `json:"tableID"`
		List    []json.RawMessage `json:"list"`
	}
	tablePayload struct {
		TableID    *int `json:"tableID"`
		DatabaseID int  `json:"databaseID,omitempty"`
	}
)

// TableRequest is the payload of outbound table-scoped commands such as
// getGameInfo2 and tableUnattend.
type TableRequest struct {
	TableID int `json:"tableID"`
}

// ActionMessage is the outbound move sent with the "action" command.
type ActionMessage struct {
	TableID int               `json:"tableID"`
	Type    engine.ActionKind `json:"type"`
	Target  int               `json:"target"`
	Value   *int              `json:"value,omitempty"`
}

func unmarshalPayload(cmd string, data []byte, v any) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return decodeErr(cmd, err)
	}
	return nil
}

func requireTable(cmd string, id *int) (int, error) {
	if id == nil {
		return 0, decodeErr(cmd+": tableID is required", nil)
	}
	return *id, nil
}
