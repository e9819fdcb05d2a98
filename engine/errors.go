package engine

import "errors"

// Integrity faults: the event stream disagrees with the tracked state. The
// offending mutation is skipped and the session carries on.
var (
	ErrCardNotFound    = errors.New("card not found in hand")
	ErrDuplicateOrder  = errors.New("card order already tracked")
	ErrSeatOutOfRange  = errors.New("seat out of range")
	ErrDeckExhausted   = errors.New("deck is empty")
	ErrUnknownIdentity = errors.New("card identity not revealed")
	ErrEmptyBelief     = errors.New("belief update leaves no possible identity")
)

// ErrInvalidClue reports a clue kind or value outside the default variant.
var ErrInvalidClue = errors.New("invalid clue")

// IsIntegrityFault reports whether err stems from state that disagrees with
// the event stream.
func IsIntegrityFault(err error) bool {
	for _, target := range []error{
		ErrCardNotFound, ErrDuplicateOrder, ErrSeatOutOfRange,
		ErrDeckExhausted, ErrUnknownIdentity, ErrEmptyBelief,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
