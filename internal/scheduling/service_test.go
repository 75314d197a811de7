package scheduling

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomhub/roomhub/internal/model"
)

// memStore is an in-memory Store used to exercise the scheduling core
// without a database.  It is not safe for concurrent use beyond what
// WithRoomLock provides, which is all the tests need.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]*model.Booking
	rooms    []model.Room
}

func newMemStore(rooms ...model.Room) *memStore {
	return &memStore{bookings: make(map[uint64]*model.Booking), rooms: rooms}
}

func (m *memStore) ActiveBookingsForRoom(_ context.Context, roomID uint64) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.Status.Active() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) BookingByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) InsertBooking(_ context.Context, b *model.Booking) error {
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now().UTC()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memStore) UpdateBookingStatus(_ context.Context, id uint64, status model.BookingStatus, reason *string) (*model.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	b.Status = status
	b.AdminReason = reason
	cp := *b
	return &cp, nil
}

func (m *memStore) RoomsForFloor(_ context.Context, floorID uint64) ([]model.Room, error) {
	var out []model.Room
	for _, r := range m.rooms {
		if r.FloorID == floorID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) BookingsOverlapping(_ context.Context, start, end time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range m.bookings {
		if b.Status.Active() && b.StartTime.Before(end) && start.Before(b.EndTime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) WithRoomLock(_ context.Context, _ uint64, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func ts(day, hour, min int) time.Time {
	return time.Date(2024, 6, day, hour, min, 0, 0, time.UTC)
}

func newTestService(rooms ...model.Room) (*Service, *memStore) {
	st := newMemStore(rooms...)
	return NewService(st, time.UTC), st
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending booking", func(t *testing.T) {
		svc, _ := newTestService()
		b, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "standup",
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, b.Status)
		assert.NotZero(t, b.ID)
		assert.NotEmpty(t, b.Reference)
	})

	t.Run("rejects start >= end before storage", func(t *testing.T) {
		svc, st := newTestService()
		_, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 10, 0), End: ts(1, 10, 0),
			Purpose: "standup",
		})
		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.Empty(t, st.bookings)
	})

	t.Run("rejects blank purpose", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "   ",
		})
		assert.ErrorIs(t, err, ErrEmptyPurpose)
	})

	t.Run("conflicts with an overlapping approved booking", func(t *testing.T) {
		svc, _ := newTestService()
		first, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "planning",
		})
		require.NoError(t, err)
		_, err = svc.ApproveBooking(ctx, first.ID, nil)
		require.NoError(t, err)

		_, err = svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 8,
			Start: ts(1, 9, 30), End: ts(1, 10, 30),
			Purpose: "retro",
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("touching windows do not conflict", func(t *testing.T) {
		svc, _ := newTestService()
		first, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "planning",
		})
		require.NoError(t, err)
		_, err = svc.ApproveBooking(ctx, first.ID, nil)
		require.NoError(t, err)

		second, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 8,
			Start: ts(1, 10, 0), End: ts(1, 11, 0),
			Purpose: "retro",
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, second.Status)
	})

	t.Run("different rooms never conflict", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "planning",
		})
		require.NoError(t, err)
		_, err = svc.CreateBooking(ctx, CreateRequest{
			RoomID: 2, UserID: 8,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "planning",
		})
		assert.NoError(t, err)
	})
}

func TestApproveBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("approves a pending booking", func(t *testing.T) {
		svc, _ := newTestService()
		b, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 14, 0), End: ts(1, 15, 0),
			Purpose: "interview",
		})
		require.NoError(t, err)

		reason := "approved by facilities"
		approved, err := svc.ApproveBooking(ctx, b.ID, &reason)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, approved.Status)
		require.NotNil(t, approved.AdminReason)
		assert.Equal(t, reason, *approved.AdminReason)
	})

	t.Run("unknown booking returns not found", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.ApproveBooking(ctx, 999, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("second approval finds a non-pending booking", func(t *testing.T) {
		svc, _ := newTestService()
		b, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 14, 0), End: ts(1, 15, 0),
			Purpose: "interview",
		})
		require.NoError(t, err)
		_, err = svc.ApproveBooking(ctx, b.ID, nil)
		require.NoError(t, err)
		_, err = svc.ApproveBooking(ctx, b.ID, nil)
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("two overlapping pendings, only one can be approved", func(t *testing.T) {
		svc, _ := newTestService()
		p1, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 14, 0), End: ts(1, 15, 0),
			Purpose: "workshop",
		})
		require.NoError(t, err)
		// Pending bookings participate in the submission-time check, so
		// a second overlapping request is refused up front.  Overlapping
		// pendings can still reach storage through concurrent submission;
		// the approval re-check below is what keeps them from both being
		// approved.
		_, err = svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 8,
			Start: ts(1, 14, 30), End: ts(1, 15, 30),
			Purpose: "workshop",
		})
		assert.ErrorIs(t, err, ErrConflict)

		_, err = svc.ApproveBooking(ctx, p1.ID, nil)
		assert.NoError(t, err)
	})

	t.Run("approval re-check excludes the booking itself", func(t *testing.T) {
		svc, _ := newTestService()
		b, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 14, 0), End: ts(1, 15, 0),
			Purpose: "workshop",
		})
		require.NoError(t, err)

		conflict, err := svc.HasConflict(ctx, 1, b.StartTime, b.EndTime, b.ID)
		require.NoError(t, err)
		assert.False(t, conflict, "a booking must not conflict with itself")

		_, err = svc.ApproveBooking(ctx, b.ID, nil)
		assert.NoError(t, err)
	})

	t.Run("approval fails once an overlapping booking was approved", func(t *testing.T) {
		svc, st := newTestService()
		p1, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 14, 0), End: ts(1, 15, 0),
			Purpose: "workshop",
		})
		require.NoError(t, err)
		// Simulate the double-submission race the policy allows: a second
		// overlapping pending row already exists in storage.
		p2 := &model.Booking{
			Reference: "11111111-1111-1111-1111-111111111111",
			RoomID:    1, UserID: 8,
			StartTime: ts(1, 14, 30), EndTime: ts(1, 15, 30),
			Purpose: "workshop", Status: model.StatusPending,
		}
		require.NoError(t, st.InsertBooking(ctx, p2))

		_, err = svc.ApproveBooking(ctx, p1.ID, nil)
		require.ErrorIs(t, err, ErrConflict, "p2 is pending and overlaps p1")

		_, err = svc.RejectBooking(ctx, p2.ID, "duplicate request")
		require.NoError(t, err)
		_, err = svc.ApproveBooking(ctx, p1.ID, nil)
		assert.NoError(t, err, "rejected bookings leave the schedule")
	})
}

func TestRejectBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("blank reason is a validation error", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.RejectBooking(ctx, 1, "  ")
		assert.ErrorIs(t, err, ErrEmptyReason)
	})

	t.Run("records the reason and frees the window", func(t *testing.T) {
		svc, _ := newTestService()
		b, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "offsite",
		})
		require.NoError(t, err)

		rejected, err := svc.RejectBooking(ctx, b.ID, "No budget")
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, rejected.Status)
		require.NotNil(t, rejected.AdminReason)
		assert.Equal(t, "No budget", *rejected.AdminReason)

		// The same window is immediately bookable again.
		_, err = svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 8,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "offsite",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown booking returns not found", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.RejectBooking(ctx, 42, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFloorAvailability(t *testing.T) {
	ctx := context.Background()
	rooms := []model.Room{
		{ID: 1, FloorID: 3, Name: "Birch"},
		{ID: 2, FloorID: 3, Name: "Aspen"},
		{ID: 9, FloorID: 4, Name: "Cedar"},
	}

	t.Run("one entry per room ordered by name", func(t *testing.T) {
		svc, _ := newTestService(rooms...)
		_, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 9, 0), End: ts(1, 10, 0),
			Purpose: "sync",
		})
		require.NoError(t, err)

		avail, err := svc.FloorAvailability(ctx, 3, "2024-06-01")
		require.NoError(t, err)
		require.Len(t, avail, 2, "only floor 3 rooms, booked or not")
		assert.Equal(t, "Aspen", avail[0].RoomName)
		assert.Equal(t, "Birch", avail[1].RoomName)
		assert.Empty(t, avail[0].BookedIntervals)
		require.Len(t, avail[1].BookedIntervals, 1)
		assert.Equal(t, ts(1, 9, 0), avail[1].BookedIntervals[0].Start)
	})

	t.Run("intervals sorted ascending, rejected excluded, other days excluded", func(t *testing.T) {
		svc, _ := newTestService(rooms...)
		_, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 2, UserID: 7,
			Start: ts(1, 15, 0), End: ts(1, 16, 0),
			Purpose: "late",
		})
		require.NoError(t, err)
		_, err = svc.CreateBooking(ctx, CreateRequest{
			RoomID: 2, UserID: 7,
			Start: ts(1, 8, 0), End: ts(1, 9, 0),
			Purpose: "early",
		})
		require.NoError(t, err)
		dropped, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 2, UserID: 7,
			Start: ts(1, 11, 0), End: ts(1, 12, 0),
			Purpose: "cancelled later",
		})
		require.NoError(t, err)
		_, err = svc.RejectBooking(ctx, dropped.ID, "room closed")
		require.NoError(t, err)
		_, err = svc.CreateBooking(ctx, CreateRequest{
			RoomID: 2, UserID: 7,
			Start: ts(2, 9, 0), End: ts(2, 10, 0),
			Purpose: "next day",
		})
		require.NoError(t, err)

		avail, err := svc.FloorAvailability(ctx, 3, "2024-06-01")
		require.NoError(t, err)
		aspen := avail[0]
		require.Equal(t, "Aspen", aspen.RoomName)
		require.Len(t, aspen.BookedIntervals, 2)
		assert.Equal(t, ts(1, 8, 0), aspen.BookedIntervals[0].Start)
		assert.Equal(t, ts(1, 15, 0), aspen.BookedIntervals[1].Start)
	})

	t.Run("booking spanning midnight shows up on both days", func(t *testing.T) {
		svc, _ := newTestService(rooms...)
		_, err := svc.CreateBooking(ctx, CreateRequest{
			RoomID: 1, UserID: 7,
			Start: ts(1, 23, 0), End: ts(2, 1, 0),
			Purpose: "overnight maintenance",
		})
		require.NoError(t, err)

		for _, date := range []string{"2024-06-01", "2024-06-02"} {
			avail, err := svc.FloorAvailability(ctx, 3, date)
			require.NoError(t, err)
			assert.Len(t, avail[1].BookedIntervals, 1, date)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		svc, _ := newTestService(rooms...)
		_, err := svc.FloorAvailability(ctx, 3, "06/01/2024")
		assert.ErrorIs(t, err, ErrBadDate)
	})

	t.Run("day boundaries follow local midnight across DST", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)
		st := newMemStore(rooms...)
		svc := NewService(st, berlin)

		// Shortly after midnight on the day following the 23-hour
		// spring-forward day (2024-03-31 in Berlin).
		early := &model.Booking{
			Reference: "33333333-3333-3333-3333-333333333333",
			RoomID:    1, UserID: 7,
			StartTime: time.Date(2024, 4, 1, 0, 15, 0, 0, berlin).UTC(),
			EndTime:   time.Date(2024, 4, 1, 0, 45, 0, 0, berlin).UTC(),
			Purpose:   "night shift", Status: model.StatusPending,
		}
		require.NoError(t, st.InsertBooking(ctx, early))

		avail, err := svc.FloorAvailability(ctx, 3, "2024-03-31")
		require.NoError(t, err)
		assert.Empty(t, avail[1].BookedIntervals, "April booking must not bleed into March 31")

		avail, err = svc.FloorAvailability(ctx, 3, "2024-04-01")
		require.NoError(t, err)
		assert.Len(t, avail[1].BookedIntervals, 1)

		// Last hour of the 25-hour fall-back day (2024-10-27).
		late := &model.Booking{
			Reference: "44444444-4444-4444-4444-444444444444",
			RoomID:    1, UserID: 7,
			StartTime: time.Date(2024, 10, 27, 23, 0, 0, 0, berlin).UTC(),
			EndTime:   time.Date(2024, 10, 27, 23, 30, 0, 0, berlin).UTC(),
			Purpose:   "night shift", Status: model.StatusPending,
		}
		require.NoError(t, st.InsertBooking(ctx, late))

		avail, err = svc.FloorAvailability(ctx, 3, "2024-10-27")
		require.NoError(t, err)
		assert.Len(t, avail[1].BookedIntervals, 1, "the long day's final hour still belongs to it")

		avail, err = svc.FloorAvailability(ctx, 3, "2024-10-28")
		require.NoError(t, err)
		assert.Empty(t, avail[1].BookedIntervals)
	})
}

func TestSlotStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.CreateBooking(ctx, CreateRequest{
		RoomID: 1, UserID: 7,
		Start: ts(1, 9, 0), End: ts(1, 10, 0),
		Purpose: "sync",
	})
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, CreateRequest{
		RoomID: 2, UserID: 8,
		Start: ts(1, 9, 30), End: ts(1, 11, 0),
		Purpose: "review",
	})
	require.NoError(t, err)

	t.Run("returns bookings overlapping the slot across rooms", func(t *testing.T) {
		slots, err := svc.SlotStatus(ctx, "2024-06-01", "09:45")
		require.NoError(t, err)
		require.Len(t, slots, 2)
	})

	t.Run("slot touching a booking end is free", func(t *testing.T) {
		// [10:00, 10:15) touches room 1's booking end but overlaps room 2's.
		slots, err := svc.SlotStatus(ctx, "2024-06-01", "10:00")
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, uint64(2), slots[0].RoomID)
	})

	t.Run("empty when nothing overlaps", func(t *testing.T) {
		slots, err := svc.SlotStatus(ctx, "2024-06-01", "22:00")
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("malformed inputs", func(t *testing.T) {
		_, err := svc.SlotStatus(ctx, "2024/06/01", "09:00")
		assert.ErrorIs(t, err, ErrBadDate)
		_, err = svc.SlotStatus(ctx, "2024-06-01", "9am")
		assert.ErrorIs(t, err, ErrBadTime)
	})
}
