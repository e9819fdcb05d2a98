// Package engine tracks the state of one Hanabi game as observed through the
// server's action stream.
//
// A Session is a plain value owned by exactly one caller; it holds no locks
// and performs no I/O. Every mutation goes through an Apply* method so the
// card-conservation and token-range invariants hold after each call.
package engine

import "fmt"

// ---------------------------------------------------------------------------
// Phase and last action
// ---------------------------------------------------------------------------

// Phase is the lifecycle position of a Session.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseInitialized
	PhaseActive
	PhaseFinished
)

// String returns the lowercase phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitialized:
		return "initialized"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// LastAction records the most recent play, discard, clue or strike for
// diagnostics. Who is the seat whose turn it was when it was applied.
type LastAction struct {
	Type   string `json:"type"`
	Who    int    `json:"who"`
	Order  int    `json:"order,omitempty"`
	Target int    `json:"target,omitempty"`
	Clue   *Clue  `json:"clue,omitempty"`
	Failed bool   `json:"failed,omitempty"`
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// Session holds the complete observed state of one table.
type Session struct {
	Players  []string `json:"players"`
	OurIndex int      `json:"ourIndex"` // -1 when we are not seated

	// Hands[seat] is ordered oldest draw first; the last card is slot 1.
	Hands       [][]Card                   `json:"hands"`
	PlayStacks  [NumSuits][]Card           `json:"playStacks"`
	DiscardPile [NumSuits][NumRanks][]Card `json:"discardPile"` // [suit][rank-1]

	ClueTokens    int `json:"clueTokens"`
	LifeTokens    int `json:"lifeTokens"`
	TurnNumber    int `json:"turnNumber"`
	CurrentPlayer int `json:"currentPlayer"`
	DeckRemaining int `json:"deckRemaining"`

	LastAction LastAction `json:"lastAction"`
	Phase      Phase      `json:"phase"`
}

// NewSession allocates an empty hand per player, full token pools and a full
// deck. OurIndex is the first seat whose name equals self, or -1.
func NewSession(players []string, self string) (*Session, error) {
	if len(players) < 2 || len(players) > MaxPlayers {
		return nil, fmt.Errorf("player count %d: %w", len(players), ErrSeatOutOfRange)
	}
	s := &Session{
		Players:       append([]string(nil), players...),
		OurIndex:      -1,
		Hands:         make([][]Card, len(players)),
		ClueTokens:    MaxClues,
		LifeTokens:    MaxLives,
		DeckRemaining: DeckSize,
		Phase:         PhaseInitialized,
	}
	for i, name := range players {
		if name == self {
			s.OurIndex = i
			break
		}
	}
	for i := range s.Hands {
		s.Hands[i] = []Card{}
	}
	for suit := range s.PlayStacks {
		s.PlayStacks[suit] = []Card{}
		for r := range s.DiscardPile[suit] {
			s.DiscardPile[suit][r] = []Card{}
		}
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Seat and hand lookups
// ---------------------------------------------------------------------------

// NumPlayers returns the number of seats.
func (s *Session) NumPlayers() int { return len(s.Players) }

// NextSeat returns the seat after seat, wrapping to 0.
func (s *Session) NextSeat(seat int) int {
	next := seat + 1
	if next >= len(s.Players) {
		next = 0
	}
	return next
}

// Hand returns the cards held by seat, or nil if seat is out of range.
func (s *Session) Hand(seat int) []Card {
	if seat < 0 || seat >= len(s.Hands) {
		return nil
	}
	return s.Hands[seat]
}

// FindCard locates order in seat's hand by linear scan.
func (s *Session) FindCard(seat, order int) (int, bool) {
	for i, c := range s.Hand(seat) {
		if c.Order == order {
			return i, true
		}
	}
	return -1, false
}

// tracked reports whether order is already held in any hand.
func (s *Session) tracked(order int) bool {
	for seat := range s.Hands {
		if _, ok := s.FindCard(seat, order); ok {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Conservation, snapshot and lifecycle
// ---------------------------------------------------------------------------

// CardCount sums every card position. It equals DeckSize in a consistent
// session.
func (s *Session) CardCount() int {
	n := s.DeckRemaining
	for _, h := range s.Hands {
		n += len(h)
	}
	for suit := range s.PlayStacks {
		n += len(s.PlayStacks[suit])
		for r := range s.DiscardPile[suit] {
			n += len(s.DiscardPile[suit][r])
		}
	}
	return n
}

// Snapshot returns a deep copy that shares no slices with s.
func (s *Session) Snapshot() *Session {
	c := *s
	c.Players = append([]string(nil), s.Players...)
	c.Hands = make([][]Card, len(s.Hands))
	for i, h := range s.Hands {
		c.Hands[i] = append([]Card{}, h...)
	}
	for suit := range s.PlayStacks {
		c.PlayStacks[suit] = append([]Card{}, s.PlayStacks[suit]...)
		for r := range s.DiscardPile[suit] {
			c.DiscardPile[suit][r] = append([]Card{}, s.DiscardPile[suit][r]...)
		}
	}
	if s.LastAction.Clue != nil {
		clue := *s.LastAction.Clue
		c.LastAction.Clue = &clue
	}
	return &c
}

// Finish moves the session to its terminal phase.
func (s *Session) Finish() { s.Phase = PhaseFinished }

// touch marks the session active once the action stream starts.
func (s *Session) touch() {
	if s.Phase == PhaseInitialized {
		s.Phase = PhaseActive
	}
}
