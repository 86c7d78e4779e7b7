// Package services defines the business logic for stories and reactions.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/cuentos-backend/internal/reaction"
)

var (
	// ErrValidation is the sentinel matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrStoryNotFound indicates that the requested story does not exist.
	ErrStoryNotFound = errors.New("story not found")

	// ErrConflict means the ledger already holds a reaction for the
	// (story, voter) pair.
	ErrConflict = reaction.ErrConflict

	// ErrInFlight means a reaction transition for the same (story, voter)
	// pair is already running.
	ErrInFlight = reaction.ErrInFlight

	// ErrSwitchIncomplete means a switch removed the old reaction but could
	// not record the new one.
	ErrSwitchIncomplete = reaction.ErrSwitchIncomplete
)

// ValidationError describes rejected input. It never reaches the store.
type ValidationError struct {
	Field  string
	Reason string
	// CharsLeft is the "characters remaining" value for content errors:
	// max length minus the untrimmed rune count. It goes negative when the
	// content is too long.
	CharsLeft *int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
