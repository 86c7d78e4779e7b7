package reaction

import "errors"

var (
	// ErrConflict is reported by a Ledger when an insert hits an existing row
	// for the same (story, voter) pair.
	ErrConflict = errors.New("reaction already recorded")

	// ErrInFlight means another transition for the same (story, voter) pair
	// is still running. The tap was ignored and nothing was sent to the store.
	ErrInFlight = errors.New("reaction transition already in flight")

	// ErrSwitchIncomplete means a switch removed the old reaction but failed
	// to record the new one. The voter is left with no reaction.
	ErrSwitchIncomplete = errors.New("reaction switch incomplete")

	// ErrUnknownType is returned for reaction types outside the closed set.
	ErrUnknownType = errors.New("unknown reaction type")
)
