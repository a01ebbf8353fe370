package service

import "errors"

var (
	// ErrInvalidRequest marks a caller-correctable request: missing sitting,
	// a date in the past or a non-positive party size.
	ErrInvalidRequest = errors.New("invalid reservation request")

	// ErrDuplicateReservation is returned when the owner already holds a
	// reservation for the same date and sitting.
	ErrDuplicateReservation = errors.New("reservation already exists for this user, date and service")

	// ErrCapacityExhausted is the "no room" outcome of Create.  It is not a
	// failure: nothing was persisted and the request was otherwise valid.
	ErrCapacityExhausted = errors.New("no tables available")

	// ErrUpdateFailed wraps collaborator errors raised while editing.
	ErrUpdateFailed = errors.New("reservation update failed")
)
