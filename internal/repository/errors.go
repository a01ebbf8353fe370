// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// the allocation engine and handlers to distinguish between different
// failure scenarios.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a reservation they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTableNotFound is returned when a table lookup yields no rows.
var ErrTableNotFound = errors.New("table not found")

// ErrReservationNotFound is returned when a reservation lookup yields no rows.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// ErrMealNotFound is returned when a meal lookup yields no rows.
var ErrMealNotFound = errors.New("meal not found")

// ErrCategoryNotFound is returned when a meal references a category that
// does not exist.
var ErrCategoryNotFound = errors.New("category not found")
