// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when creating a user with an email that
// is already registered.  Handlers should translate this into an
// HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrRoomNotFound is returned when a room ID does not resolve, for
// example when locking the room row before a booking write.  Handlers
// should translate this into an HTTP 404 response.
var ErrRoomNotFound = errors.New("room not found")

// ErrFloorNotFound is returned when a floor ID does not resolve.
var ErrFloorNotFound = errors.New("floor not found")

// ErrBuildingNotFound is returned when a building ID does not resolve.
var ErrBuildingNotFound = errors.New("building not found")

// ErrInUse is returned when a delete cannot be performed because
// dependent records still reference the row, such as removing a room
// that has bookings.  Handlers should translate this into 409.
var ErrInUse = errors.New("record is referenced by other rows")
