package engine

// Copies returns how many cards of one suit carry rank r in the default deck.
func Copies(r Rank) int {
	switch {
	case r == 1:
		return 3
	case r >= 2 && int(r) < NumRanks:
		return 2
	case int(r) == NumRanks:
		return 1
	default:
		return 0
	}
}

// Score is the number of cards on the play stacks.
func (s *Session) Score() int {
	n := 0
	for suit := range s.PlayStacks {
		n += len(s.PlayStacks[suit])
	}
	return n
}

// MaxScore is the best score still reachable. A suit stops at the first rank
// whose copies are all in the discard pile.
func (s *Session) MaxScore() int {
	total := 0
	for suit := 0; suit < NumSuits; suit++ {
		for r := Rank(1); int(r) <= NumRanks; r++ {
			if len(s.DiscardPile[suit][r.Index()]) >= Copies(r) {
				break
			}
			total++
		}
	}
	return total
}

// Critical reports whether the card of suit and rank is the last copy still
// out of the discard pile and not yet played.
func (s *Session) Critical(suit Suit, rank Rank) bool {
	if !suit.Known() || !rank.Known() {
		return false
	}
	if len(s.PlayStacks[suit]) >= int(rank) {
		return false
	}
	return Copies(rank)-len(s.DiscardPile[suit][rank.Index()]) == 1
}
