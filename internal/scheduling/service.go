package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roomhub/roomhub/internal/model"
)

// SlotLength is the fixed granularity of the global availability
// grid.  The slot view answers "is this room free at date+time" for a
// single 15-minute bucket.
const SlotLength = 15 * time.Minute

// Service implements booking creation, the approve/reject state
// machine and the availability queries on top of a Store.  Conflict
// checks and the writes they guard run inside WithRoomLock so two
// concurrent requests for the same room cannot both pass the check.
type Service struct {
	store Store
	loc   *time.Location
}

// NewService returns a Service using loc as the reference location
// for calendar-day and slot boundaries.  Passing nil selects UTC.
func NewService(store Store, loc *time.Location) *Service {
	if store == nil {
		panic("nil store passed to scheduling.NewService")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, loc: loc}
}

// CreateRequest carries the validated inputs for a new booking.
type CreateRequest struct {
	RoomID  uint64
	UserID  uint64
	Start   time.Time
	End     time.Time
	Purpose string
}

// CreateBooking validates the request, checks the room for
// conflicting active bookings and inserts a new pending booking.
// It returns ErrInvalidRange or ErrEmptyPurpose before touching
// storage, and ErrConflict when the window overlaps an existing
// pending or approved booking on the room.
//
// Two overlapping pending requests may coexist only in the sense
// that a second submission is checked against bookings that exist at
// that moment; once one of them is approved the other can no longer
// pass the approval re-check.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*model.Booking, error) {
	if !req.Start.Before(req.End) {
		return nil, ErrInvalidRange
	}
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	b := &model.Booking{
		Reference: uuid.NewString(),
		RoomID:    req.RoomID,
		UserID:    req.UserID,
		StartTime: req.Start.UTC(),
		EndTime:   req.End.UTC(),
		Purpose:   purpose,
		Status:    model.StatusPending,
	}

	err := s.store.WithRoomLock(ctx, req.RoomID, func(tx Store) error {
		conflict, err := hasConflict(ctx, tx, req.RoomID, b.StartTime, b.EndTime, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrConflict
		}
		return tx.InsertBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ApproveBooking transitions a pending booking to approved.  The
// conflict check is re-run with the booking itself excluded, so a
// booking never conflicts with its own window.  Approving a booking
// that is no longer pending fails with ErrNotPending; once approved
// or rejected no further transition exists.
func (s *Service) ApproveBooking(ctx context.Context, id uint64, reason *string) (*model.Booking, error) {
	b, err := s.store.BookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}

	var approved *model.Booking
	err = s.store.WithRoomLock(ctx, b.RoomID, func(tx Store) error {
		// Re-read inside the lock: another approval may have raced us.
		cur, err := tx.BookingByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		if cur.Status != model.StatusPending {
			return ErrNotPending
		}
		conflict, err := hasConflict(ctx, tx, cur.RoomID, cur.StartTime, cur.EndTime, cur.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrConflict
		}
		approved, err = tx.UpdateBookingStatus(ctx, id, model.StatusApproved, reason)
		if err != nil {
			return err
		}
		if approved == nil {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// RejectBooking transitions a booking to rejected, recording the
// mandatory reason.  A blank reason fails with ErrEmptyReason before
// touching storage.  No conflict check applies: a rejected booking
// leaves the schedule entirely.
func (s *Service) RejectBooking(ctx context.Context, id uint64, reason string) (*model.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	rejected, err := s.store.UpdateBookingStatus(ctx, id, model.StatusRejected, &reason)
	if err != nil {
		return nil, err
	}
	if rejected == nil {
		return nil, ErrNotFound
	}
	return rejected, nil
}

// HasConflict reports whether [start, end) overlaps any active
// booking on the room, excluding excludeID when non-zero.  Callers
// must ensure start < end.  The check is read-only; CreateBooking and
// ApproveBooking run the same check under the room lock before
// writing.
func (s *Service) HasConflict(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	return hasConflict(ctx, s.store, roomID, start.UTC(), end.UTC(), excludeID)
}

func hasConflict(ctx context.Context, st Store, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	active, err := st.ActiveBookingsForRoom(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("load active bookings: %w", err)
	}
	candidate := Interval{Start: start, End: end}
	for _, b := range active {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if candidate.Overlaps(Interval{Start: b.StartTime, End: b.EndTime}) {
			return true, nil
		}
	}
	return false, nil
}

// RoomAvailability is one row of the per-floor day view.  The JSON
// field names match what the calendar UI consumes.
type RoomAvailability struct {
	RoomID          uint64     `json:"id"`
	RoomName        string     `json:"name"`
	BookedIntervals []Interval `json:"bookedIntervals"`
}

// FloorAvailability returns, for every room on the floor, the active
// booking windows that overlap the calendar day named by date
// (YYYY-MM-DD) in the service's reference location.  Every room gets
// an entry even when it has no bookings; rooms come back ordered by
// name and intervals sorted by start time ascending.
func (s *Service) FloorAvailability(ctx context.Context, floorID uint64, date string) ([]RoomAvailability, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	// The day ends at the next local midnight, not start+24h: DST
	// transition days are 23 or 25 hours long in the reference
	// location.
	y, m, d := dayStart.Date()
	dayEnd := time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
	day := Interval{Start: dayStart.UTC(), End: dayEnd.UTC()}

	rooms, err := s.store.RoomsForFloor(ctx, floorID)
	if err != nil {
		return nil, err
	}

	out := make([]RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		active, err := s.store.ActiveBookingsForRoom(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		intervals := make([]Interval, 0, len(active))
		for _, b := range active {
			iv := Interval{Start: b.StartTime, End: b.EndTime}
			if iv.Overlaps(day) {
				intervals = append(intervals, iv)
			}
		}
		sort.Slice(intervals, func(i, j int) bool {
			return intervals[i].Start.Before(intervals[j].Start)
		})
		out = append(out, RoomAvailability{
			RoomID:          room.ID,
			RoomName:        room.Name,
			BookedIntervals: intervals,
		})
	}
	return out, nil
}

// BookingSlot is one row of the global slot view: an active booking
// that occupies the requested 15-minute bucket.
type BookingSlot struct {
	RoomID uint64              `json:"room_id"`
	Status model.BookingStatus `json:"status"`
	Start  time.Time           `json:"start_time"`
	End    time.Time           `json:"end_time"`
}

// SlotStatus returns every active booking, across all rooms, whose
// window overlaps the 15-minute slot starting at date+clock
// (YYYY-MM-DD and HH:MM) in the service's reference location.  Rooms
// with no entry in the result are free for the slot.
func (s *Service) SlotStatus(ctx context.Context, date, clock string) ([]BookingSlot, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	slotStart, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadTime, clock)
	}
	slotEnd := slotStart.Add(SlotLength)

	bookings, err := s.store.BookingsOverlapping(ctx, slotStart.UTC(), slotEnd.UTC())
	if err != nil {
		return nil, err
	}
	slots := make([]BookingSlot, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, BookingSlot{
			RoomID: b.RoomID,
			Status: b.Status,
			Start:  b.StartTime,
			End:    b.EndTime,
		})
	}
	return slots, nil
}
