package model

import "time"

// BookingStatus is the closed set of states a booking can be in.
// Using a named string type (rather than free-form strings) keeps
// illegal states out of the rest of the codebase while still
// matching the ENUM column in the database.
type BookingStatus string

const (
	// StatusPending is the initial state of every booking request.
	StatusPending BookingStatus = "pending"
	// StatusApproved is a terminal state set by an admin after the
	// conflict check passes a second time.
	StatusApproved BookingStatus = "approved"
	// StatusRejected is a terminal state.  Rejected bookings never
	// participate in conflict checks again.
	StatusRejected BookingStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Active reports whether a booking in this status occupies its time
// window for scheduling purposes.  Pending and approved bookings
// block overlapping requests; rejected ones do not.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Booking records a user's request to occupy a room for the half-open
// window [StartTime, EndTime).  StartTime < EndTime always holds for
// rows created through the scheduling core.
//
// Fields:
//  ID          – primary key identifier.
//  Reference   – UUID issued at creation, used for user-facing tracking.
//  RoomID      – room the booking occupies.
//  UserID      – requesting user.
//  StartTime   – inclusive start of the window (UTC).
//  EndTime     – exclusive end of the window (UTC).
//  Purpose     – free-text purpose supplied by the requester.
//  Status      – pending, approved or rejected.
//  AdminReason – reason recorded on approve/reject (nullable).
//  CreatedAt   – creation timestamp, immutable, used for default ordering.
type Booking struct {
	ID          uint64        // bookings.id
	Reference   string        // bookings.reference
	RoomID      uint64        // bookings.room_id
	UserID      uint64        // bookings.user_id
	StartTime   time.Time     // bookings.start_time
	EndTime     time.Time     // bookings.end_time
	Purpose     string        // bookings.purpose
	Status      BookingStatus // bookings.status
	AdminReason *string       // bookings.admin_reason (nullable)
	CreatedAt   time.Time     // bookings.created_at
}
