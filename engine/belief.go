package engine

import "math/bits"

// Belief is the set of (suit, rank) identities a card's owner still considers
// possible. Bit suit*NumRanks+rankIndex is set when the pair is possible.
type Belief uint32

const (
	// FullBelief has every one of the 25 identities possible.
	FullBelief Belief = 1<<(NumSuits*NumRanks) - 1
	// EmptyBelief rules out every identity. It is never a legal state for a
	// card still in a hand.
	EmptyBelief Belief = 0
)

func beliefBit(suit, rankIdx int) Belief {
	return 1 << uint(suit*NumRanks+rankIdx)
}

// Possible reports whether the card could be suit s with rank r.
func (b Belief) Possible(s Suit, r Rank) bool {
	if !s.Known() || !r.Known() {
		return false
	}
	return b&beliefBit(int(s), r.Index()) != 0
}

// Intersect returns the identities possible under both b and o.
func (b Belief) Intersect(o Belief) Belief { return b & o }

// Complement returns the identities in FullBelief that b rules out.
func (b Belief) Complement() Belief { return FullBelief &^ b }

// Empty reports whether no identity remains.
func (b Belief) Empty() bool { return b&FullBelief == 0 }

// Count returns the number of identities still possible.
func (b Belief) Count() int { return bits.OnesCount32(uint32(b & FullBelief)) }

// Matrix expands b into [suit][rankIndex] form.
func (b Belief) Matrix() [NumSuits][NumRanks]bool {
	var m [NumSuits][NumRanks]bool
	for s := 0; s < NumSuits; s++ {
		for r := 0; r < NumRanks; r++ {
			m[s][r] = b&beliefBit(s, r) != 0
		}
	}
	return m
}

// CluePredicate returns the identities that satisfy clue c. Rank clue values
// are 1-based on the wire and shifted to the 0-based index here.
func CluePredicate(c Clue) (Belief, error) {
	var p Belief
	switch c.Kind {
	case ClueColor:
		if c.Value < 0 || c.Value >= NumSuits {
			return EmptyBelief, ErrInvalidClue
		}
		for r := 0; r < NumRanks; r++ {
			p |= beliefBit(c.Value, r)
		}
	case ClueRank:
		idx := c.Value - 1
		if idx < 0 || idx >= NumRanks {
			return EmptyBelief, ErrInvalidClue
		}
		for s := 0; s < NumSuits; s++ {
			p |= beliefBit(s, idx)
		}
	default:
		return EmptyBelief, ErrInvalidClue
	}
	return p, nil
}
