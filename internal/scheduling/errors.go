// Package scheduling implements the booking conflict and availability
// core: the interval model, the conflict checker, the booking state
// machine and the availability queries.  It talks to persistence only
// through the Store interface so handlers and tests can supply their
// own implementations.
package scheduling

import "errors"

// Sentinel errors returned by the scheduling core.  Handlers translate
// them into HTTP status codes: ErrConflict becomes 409 so clients can
// offer "pick another time", validation errors become 400, and
// ErrNotFound/ErrNotPending become 404.  Anything else is a storage
// failure and surfaces as 500.
var (
	// ErrConflict signals that the requested window overlaps an
	// active (pending or approved) booking on the same room.
	ErrConflict = errors.New("room is already booked for this time slot")

	// ErrNotFound is returned when a booking ID does not resolve.
	ErrNotFound = errors.New("booking not found")

	// ErrNotPending is returned when approving a booking that has
	// already left the pending state.
	ErrNotPending = errors.New("booking is not pending")

	// ErrInvalidRange is returned when start_time >= end_time.
	ErrInvalidRange = errors.New("start time must be before end time")

	// ErrEmptyPurpose is returned when a booking request carries a
	// blank purpose.
	ErrEmptyPurpose = errors.New("purpose is required")

	// ErrEmptyReason is returned when rejecting without a reason.
	ErrEmptyReason = errors.New("reason is required for rejection")

	// ErrBadDate is returned when a date string is not YYYY-MM-DD.
	ErrBadDate = errors.New("invalid date")

	// ErrBadTime is returned when a time string is not HH:MM.
	ErrBadTime = errors.New("invalid time")
)
