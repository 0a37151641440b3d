package domain

import "errors"

// Error taxonomy reported by the engine. Callers map these onto transport
// codes; the engine never retries on its own.
var (
	// ErrValidation covers malformed or missing input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound covers references to absent entities.
	ErrNotFound        = errors.New("not found")
	ErrSlotNotFound    = wrap("time slot not found", ErrNotFound)
	ErrBookingNotFound = wrap("booking not found", ErrNotFound)
	ErrCourtNotFound   = wrap("court not found", ErrNotFound)
	ErrUserNotFound    = wrap("user not found", ErrNotFound)

	// ErrConflict covers state that the caller may retry with fresh data.
	ErrConflict         = errors.New("conflict")
	ErrSlotUnavailable  = wrap("time slot is not available", ErrConflict)
	ErrAlreadyCancelled = wrap("booking is already cancelled", ErrConflict)
	ErrSlotInUse        = wrap("time slot has a live booking", ErrConflict)
	ErrDuplicate        = wrap("duplicate unique field", ErrConflict)

	// ErrInvalidWindow is a validation failure specific to slot windows.
	ErrInvalidWindow = wrap("invalid time window", ErrValidation)

	// ErrNoActiveCourt is reported when pricing or booking touches an
	// inactive court.
	ErrNoActiveCourt = errors.New("court is not active")
)

func wrap(msg string, sentinel error) error {
	return &taxonomyError{msg: msg, sentinel: sentinel}
}

type taxonomyError struct {
	msg      string
	sentinel error
}

func (e *taxonomyError) Error() string { return e.msg }

func (e *taxonomyError) Unwrap() error { return e.sentinel }
