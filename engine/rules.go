package engine

// Default no-variant game constants. These must match the server.
const (
	NumSuits    = 5
	NumRanks    = 5
	DeckSize    = 50
	MaxClues    = 8
	MaxLives    = 3
	MaxPlayers  = 6
	MaxHandSize = 5
)

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
