package engine

import "fmt"

// Suit is a card color index as sent by the server (0..NumSuits-1).
type Suit int8

// Rank is a card rank as sent by the server (1..NumRanks).
type Rank int8

// Sentinels for cards whose identity has not been revealed to us.
const (
	UnknownSuit Suit = -1
	UnknownRank Rank = -1
)

// Known reports whether s is a real suit.
func (s Suit) Known() bool { return s >= 0 && int(s) < NumSuits }

// Known reports whether r is a real rank.
func (r Rank) Known() bool { return r >= 1 && int(r) <= NumRanks }

// Index returns the 0-based rank index used by Belief.
func (r Rank) Index() int { return int(r) - 1 }

// Card is one physical card tracked by its server-assigned order.
type Card struct {
	Order  int    `json:"order"`
	Suit   Suit   `json:"suit"`
	Rank   Rank   `json:"rank"`
	Belief Belief `json:"belief"`
}

// NewCard returns a freshly drawn card with no clue information.
func NewCard(order int, suit Suit, rank Rank) Card {
	return Card{Order: order, Suit: suit, Rank: rank, Belief: FullBelief}
}

// Known reports whether the card's true identity is known to the engine.
func (c Card) Known() bool { return c.Suit.Known() && c.Rank.Known() }

func (c Card) String() string {
	if !c.Known() {
		return fmt.Sprintf("#%d(?)", c.Order)
	}
	return fmt.Sprintf("#%d(%d/%d)", c.Order, c.Suit, c.Rank)
}

// ClueKind is the dimension a clue touches.
type ClueKind uint8

const (
	ClueColor ClueKind = 0
	ClueRank  ClueKind = 1
)

func (k ClueKind) String() string {
	switch k {
	case ClueColor:
		return "color"
	case ClueRank:
		return "rank"
	default:
		return fmt.Sprintf("ClueKind(%d)", uint8(k))
	}
}

// Clue is a single color or rank clue. Value is a suit index for color clues
// and a 1-based rank for rank clues, exactly as it appears on the wire.
type Clue struct {
	Kind  ClueKind `json:"type"`
	Value int      `json:"value"`
}

// ActionKind is the outbound move type understood by the server.
type ActionKind int

const (
	ActionPlay      ActionKind = 0
	ActionDiscard   ActionKind = 1
	ActionColorClue ActionKind = 2
	ActionRankClue  ActionKind = 3
)

func (k ActionKind) String() string {
	switch k {
	case ActionPlay:
		return "play"
	case ActionDiscard:
		return "discard"
	case ActionColorClue:
		return "color_clue"
	case ActionRankClue:
		return "rank_clue"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}
