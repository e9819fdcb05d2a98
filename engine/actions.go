package engine

import "fmt"

// ---------------------------------------------------------------------------
// Card movement
// ---------------------------------------------------------------------------

// ApplyDraw appends a new card with no clue information to seat's hand and
// takes it from the deck. Own cards arrive with UnknownSuit/UnknownRank and
// are tracked by order alone.
func (s *Session) ApplyDraw(seat, order int, suit Suit, rank Rank) error {
	if seat < 0 || seat >= len(s.Hands) {
		return fmt.Errorf("draw to seat %d: %w", seat, ErrSeatOutOfRange)
	}
	if s.DeckRemaining <= 0 {
		return fmt.Errorf("draw order %d: %w", order, ErrDeckExhausted)
	}
	if s.tracked(order) {
		return fmt.Errorf("draw order %d: %w", order, ErrDuplicateOrder)
	}
	s.touch()
	s.Hands[seat] = append(s.Hands[seat], NewCard(order, suit, rank))
	s.DeckRemaining--
	return nil
}

// ApplyPlay moves order from seat's hand onto the play stack of its suit.
// A known suit/rank carried by the event fixes the card's identity.
func (s *Session) ApplyPlay(seat, order int, suit Suit, rank Rank) error {
	card, err := s.takeCard(seat, order, suit, rank)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	s.PlayStacks[card.Suit] = append(s.PlayStacks[card.Suit], card)
	return nil
}

// ApplyDiscard moves order from seat's hand onto the discard pile. Misplays
// are discards too; the clue refund and the strike are applied separately.
func (s *Session) ApplyDiscard(seat, order int, suit Suit, rank Rank) error {
	card, err := s.takeCard(seat, order, suit, rank)
	if err != nil {
		return fmt.Errorf("discard: %w", err)
	}
	idx := card.Rank.Index()
	s.DiscardPile[card.Suit][idx] = append(s.DiscardPile[card.Suit][idx], card)
	return nil
}

// takeCard removes order from seat's hand once its identity is settled. The
// hand is left untouched on error.
func (s *Session) takeCard(seat, order int, suit Suit, rank Rank) (Card, error) {
	if seat < 0 || seat >= len(s.Hands) {
		return Card{}, fmt.Errorf("seat %d: %w", seat, ErrSeatOutOfRange)
	}
	i, ok := s.FindCard(seat, order)
	if !ok {
		return Card{}, fmt.Errorf("order %d in hand of seat %d: %w", order, seat, ErrCardNotFound)
	}
	card := s.Hands[seat][i]
	if suit.Known() {
		card.Suit = suit
	}
	if rank.Known() {
		card.Rank = rank
	}
	if !card.Known() {
		return Card{}, fmt.Errorf("order %d: %w", order, ErrUnknownIdentity)
	}
	s.touch()
	s.Hands[seat] = append(s.Hands[seat][:i], s.Hands[seat][i+1:]...)
	return card, nil
}

// ---------------------------------------------------------------------------
// Tokens and turns
// ---------------------------------------------------------------------------

// ApplyClueCost spends one clue token. The pool never drops below zero.
func (s *Session) ApplyClueCost() {
	s.touch()
	s.ClueTokens = clamp(s.ClueTokens-1, 0, MaxClues)
}

// ApplyDiscardRefund regains one clue token after a successful discard,
// capped at MaxClues.
func (s *Session) ApplyDiscardRefund() {
	s.touch()
	s.ClueTokens = clamp(s.ClueTokens+1, 0, MaxClues)
}

// ApplyStrike loses one life token. The game end itself is signalled by the
// server, not derived here.
func (s *Session) ApplyStrike() {
	s.touch()
	s.LifeTokens = clamp(s.LifeTokens-1, 0, MaxLives)
}

// ApplyTurn records the new turn number and the seat now to act.
func (s *Session) ApplyTurn(num, who int) error {
	if who < 0 || who >= len(s.Players) {
		return fmt.Errorf("turn %d for seat %d: %w", num, who, ErrSeatOutOfRange)
	}
	s.touch()
	s.TurnNumber = num
	s.CurrentPlayer = who
	return nil
}

// ---------------------------------------------------------------------------
// Clues
// ---------------------------------------------------------------------------

// ApplyClue narrows the beliefs of every card in target's hand: touched cards
// must satisfy the clue and the rest must not. Either every card is updated
// or, on error, none is.
func (s *Session) ApplyClue(target int, clue Clue, touched []int) error {
	if target < 0 || target >= len(s.Hands) {
		return fmt.Errorf("clue to seat %d: %w", target, ErrSeatOutOfRange)
	}
	pred, err := CluePredicate(clue)
	if err != nil {
		return fmt.Errorf("clue %s %d: %w", clue.Kind, clue.Value, err)
	}
	hand := s.Hands[target]
	isTouched := make(map[int]bool, len(touched))
	for _, order := range touched {
		if _, ok := s.FindCard(target, order); !ok {
			return fmt.Errorf("clued order %d in hand of seat %d: %w", order, target, ErrCardNotFound)
		}
		isTouched[order] = true
	}

	next := make([]Belief, len(hand))
	for i, c := range hand {
		if isTouched[c.Order] {
			next[i] = c.Belief.Intersect(pred)
		} else {
			next[i] = c.Belief.Intersect(pred.Complement())
		}
		if next[i].Empty() {
			return fmt.Errorf("clue %s %d on order %d: %w", clue.Kind, clue.Value, c.Order, ErrEmptyBelief)
		}
	}
	s.touch()
	for i := range hand {
		hand[i].Belief = next[i]
	}
	return nil
}
