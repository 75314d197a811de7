package scheduling

import (
	"context"
	"time"

	"github.com/roomhub/roomhub/internal/model"
)

// Store is the persistence collaborator consumed by the scheduling
// core.  The SQL implementation lives in internal/repository; tests
// supply an in-memory double.  All times passed in and out are UTC.
type Store interface {
	// ActiveBookingsForRoom returns every pending or approved booking
	// for the room.  Rejected bookings are never returned.
	ActiveBookingsForRoom(ctx context.Context, roomID uint64) ([]model.Booking, error)

	// BookingByID returns the booking with the given ID, or (nil, nil)
	// when no such booking exists.
	BookingByID(ctx context.Context, id uint64) (*model.Booking, error)

	// InsertBooking persists a new booking and populates its ID and
	// CreatedAt fields.
	InsertBooking(ctx context.Context, b *model.Booking) error

	// UpdateBookingStatus sets the status and admin reason of a
	// booking and returns the updated row, or (nil, nil) when the
	// booking does not exist.
	UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus, reason *string) (*model.Booking, error)

	// RoomsForFloor returns the rooms on a floor ordered by name.
	RoomsForFloor(ctx context.Context, floorID uint64) ([]model.Room, error)

	// BookingsOverlapping returns every active booking, across all
	// rooms, whose [start_time, end_time) window strictly overlaps
	// [start, end).
	BookingsOverlapping(ctx context.Context, start, end time.Time) ([]model.Booking, error)

	// WithRoomLock runs fn while holding a write lock scoped to the
	// room, so that a conflict check and the write that follows it
	// commit as one atomic sequence.  The Store passed to fn must be
	// used for every read and write inside fn.
	WithRoomLock(ctx context.Context, roomID uint64, fn func(Store) error) error
}
