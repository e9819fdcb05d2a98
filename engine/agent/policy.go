// Package agent chooses the bot's move from an observed game session.
package agent

import (
	"errors"
	"fmt"

	engine "github.com/jason-s-yu/hanabot/engine"
)

// ErrNoDecision is returned when a policy has no move to offer.
var ErrNoDecision = errors.New("no decision available")

// Decision is one outbound move. Target is a seat for clues and a card order
// for plays and discards. Value is set only for clues.
type Decision struct {
	Type   engine.ActionKind
	Target int
	Value  *int
}

func (d Decision) String() string {
	if d.Value != nil {
		return fmt.Sprintf("%s target=%d value=%d", d.Type, d.Target, *d.Value)
	}
	return fmt.Sprintf("%s target=%d", d.Type, d.Target)
}

// Policy turns a session snapshot into a move. Implementations must not
// mutate the session.
type Policy interface {
	Decide(s *engine.Session) (Decision, error)
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(s *engine.Session) (Decision, error)

// Decide calls f(s).
func (f PolicyFunc) Decide(s *engine.Session) (Decision, error) { return f(s) }

// RankClue builds a rank clue for seat.
func RankClue(seat int, rank engine.Rank) Decision {
	v := int(rank)
	return Decision{Type: engine.ActionRankClue, Target: seat, Value: &v}
}

// ColorClue builds a color clue for seat.
func ColorClue(seat int, suit engine.Suit) Decision {
	v := int(suit)
	return Decision{Type: engine.ActionColorClue, Target: seat, Value: &v}
}

// Discard builds a discard of the card with the given order.
func Discard(order int) Decision {
	return Decision{Type: engine.ActionDiscard, Target: order}
}

// Play builds a play of the card with the given order.
func Play(order int) Decision {
	return Decision{Type: engine.ActionPlay, Target: order}
}

// SlotOneClue is the reference policy. With a clue token available it gives
// the next seat a rank clue matching that seat's slot 1 card; otherwise it
// discards our oldest card.
type SlotOneClue struct{}

// Decide implements Policy.
func (SlotOneClue) Decide(s *engine.Session) (Decision, error) {
	if s.OurIndex < 0 || s.OurIndex >= s.NumPlayers() {
		return Decision{}, fmt.Errorf("not seated at table: %w", ErrNoDecision)
	}
	if s.ClueTokens > 0 {
		target := s.NextSeat(s.OurIndex)
		hand := s.Hand(target)
		if len(hand) > 0 {
			slot1 := hand[len(hand)-1]
			if slot1.Rank.Known() {
				return RankClue(target, slot1.Rank), nil
			}
		}
	}
	own := s.Hand(s.OurIndex)
	if len(own) == 0 {
		return Decision{}, fmt.Errorf("empty hand: %w", ErrNoDecision)
	}
	return Discard(own[0].Order), nil
}
