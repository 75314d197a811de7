package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/queue"
	"github.com/roomhub/roomhub/internal/repository"
	"github.com/roomhub/roomhub/internal/scheduling"
)

// fakeStore is an in-memory scheduling.Store so handler tests can run
// without MySQL.
type fakeStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]*model.Booking
	rooms    []model.Room
}

func newFakeStore(rooms ...model.Room) *fakeStore {
	return &fakeStore{bookings: make(map[uint64]*model.Booking), rooms: rooms}
}

func (f *fakeStore) ActiveBookingsForRoom(_ context.Context, roomID uint64) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if b.RoomID == roomID && b.Status.Active() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) BookingByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) InsertBooking(_ context.Context, b *model.Booking) error {
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, id uint64, status model.BookingStatus, reason *string) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	b.Status = status
	b.AdminReason = reason
	cp := *b
	return &cp, nil
}

func (f *fakeStore) RoomsForFloor(_ context.Context, floorID uint64) ([]model.Room, error) {
	var out []model.Room
	for _, r := range f.rooms {
		if r.FloorID == floorID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) BookingsOverlapping(_ context.Context, start, end time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if b.Status.Active() && b.StartTime.Before(end) && start.Before(b.EndTime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) WithRoomLock(_ context.Context, _ uint64, fn func(scheduling.Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

func newTestHandler(rooms ...model.Room) (*BookingHandler, *fakeStore) {
	st := newFakeStore(rooms...)
	h := NewBookingHandler(scheduling.NewService(st, time.UTC), repository.NewBookingRepo(nil))
	h.publish = func(context.Context, queue.BookingDecidedEvent) error { return nil }
	return h, st
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

// request builds an authenticated echo context for handler calls.
func request(e *echo.Echo, method, target, body string, userID float64, role string) (echo.Context, *httptest.ResponseRecorder) {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func TestBookingCreateEndpoint(t *testing.T) {
	e := newEcho()

	t.Run("returns 201 with a pending booking", func(t *testing.T) {
		h, _ := newTestHandler()
		c, rec := request(e, http.MethodPost, "/v1/bookings",
			`{"room_id":1,"start_time":"2024-06-01T09:00:00Z","end_time":"2024-06-01T10:00:00Z","purpose":"standup"}`,
			7, "user")
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)
		assert.Contains(t, rec.Body.String(), `"reference"`)
	})

	t.Run("missing purpose fails validation with 400", func(t *testing.T) {
		h, st := newTestHandler()
		c, _ := request(e, http.MethodPost, "/v1/bookings",
			`{"room_id":1,"start_time":"2024-06-01T09:00:00Z","end_time":"2024-06-01T10:00:00Z"}`,
			7, "user")
		err := h.Create(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Empty(t, st.bookings)
	})

	t.Run("inverted window returns 400", func(t *testing.T) {
		h, _ := newTestHandler()
		c, rec := request(e, http.MethodPost, "/v1/bookings",
			`{"room_id":1,"start_time":"2024-06-01T10:00:00Z","end_time":"2024-06-01T09:00:00Z","purpose":"standup"}`,
			7, "user")
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("overlapping window returns 409", func(t *testing.T) {
		h, _ := newTestHandler()
		c, rec := request(e, http.MethodPost, "/v1/bookings",
			`{"room_id":1,"start_time":"2024-06-01T09:00:00Z","end_time":"2024-06-01T10:00:00Z","purpose":"planning"}`,
			7, "user")
		require.NoError(t, h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		c, rec = request(e, http.MethodPost, "/v1/bookings",
			`{"room_id":1,"start_time":"2024-06-01T09:30:00Z","end_time":"2024-06-01T10:30:00Z","purpose":"retro"}`,
			8, "user")
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unauthenticated request returns 401", func(t *testing.T) {
		h, _ := newTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader("{}"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Create(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBookingDecisionEndpoints(t *testing.T) {
	e := newEcho()

	seed := func(t *testing.T, h *BookingHandler) uint64 {
		t.Helper()
		b, err := h.Sched.CreateBooking(context.Background(), scheduling.CreateRequest{
			RoomID: 1, UserID: 7,
			Start:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			End:     time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			Purpose: "workshop",
		})
		require.NoError(t, err)
		return b.ID
	}

	t.Run("approve publishes and returns 200", func(t *testing.T) {
		h, _ := newTestHandler()
		id := seed(t, h)

		published := make(chan queue.BookingDecidedEvent, 1)
		h.publish = func(_ context.Context, ev queue.BookingDecidedEvent) error {
			published <- ev
			return nil
		}

		c, rec := request(e, http.MethodPut, "/v1/admin/bookings/1/approve", `{"reason":"fine"}`, 1, "admin")
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Approve(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"approved"`)

		select {
		case ev := <-published:
			assert.Equal(t, id, ev.BookingID)
			assert.Equal(t, "approved", ev.Status)
			assert.Equal(t, "fine", ev.Reason)
		case <-time.After(2 * time.Second):
			t.Fatal("decision event was not published")
		}
	})

	t.Run("approving an unknown booking returns 404", func(t *testing.T) {
		h, _ := newTestHandler()
		c, rec := request(e, http.MethodPut, "/v1/admin/bookings/99/approve", "", 1, "admin")
		c.SetParamNames("id")
		c.SetParamValues("99")
		require.NoError(t, h.Approve(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "pending booking not found")
	})

	t.Run("approving twice returns 404", func(t *testing.T) {
		h, _ := newTestHandler()
		seed(t, h)

		for i, want := range []int{http.StatusOK, http.StatusNotFound} {
			c, rec := request(e, http.MethodPut, "/v1/admin/bookings/1/approve", "", 1, "admin")
			c.SetParamNames("id")
			c.SetParamValues("1")
			require.NoError(t, h.Approve(c))
			assert.Equal(t, want, rec.Code, "attempt %d", i+1)
		}
	})

	t.Run("approve conflict returns 409", func(t *testing.T) {
		h, st := newTestHandler()
		seed(t, h)
		// Overlapping pending row inserted behind the service's back, as
		// a concurrent submission would leave it.
		require.NoError(t, st.InsertBooking(context.Background(), &model.Booking{
			Reference: "22222222-2222-2222-2222-222222222222",
			RoomID:    1, UserID: 8,
			StartTime: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
			Purpose:   "dup", Status: model.StatusPending,
		}))

		c, rec := request(e, http.MethodPut, "/v1/admin/bookings/1/approve", "", 1, "admin")
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Approve(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		h, _ := newTestHandler()
		seed(t, h)
		c, rec := request(e, http.MethodPut, "/v1/admin/bookings/1/reject", `{"reason":"  "}`, 1, "admin")
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Reject(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reject records the reason", func(t *testing.T) {
		h, _ := newTestHandler()
		seed(t, h)
		c, rec := request(e, http.MethodPut, "/v1/admin/bookings/1/reject", `{"reason":"No budget"}`, 1, "admin")
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Reject(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"rejected"`)
		assert.Contains(t, rec.Body.String(), "No budget")
	})
}

func TestAvailabilityEndpoints(t *testing.T) {
	e := newEcho()
	rooms := []model.Room{
		{ID: 1, FloorID: 3, Name: "Birch"},
		{ID: 2, FloorID: 3, Name: "Aspen"},
	}

	t.Run("floor availability lists every room on the floor", func(t *testing.T) {
		h, _ := newTestHandler(rooms...)
		_, err := h.Sched.CreateBooking(context.Background(), scheduling.CreateRequest{
			RoomID: 1, UserID: 7,
			Start:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			End:     time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			Purpose: "sync",
		})
		require.NoError(t, err)

		c, rec := request(e, http.MethodGet, "/v1/availability?floorId=3&date=2024-06-01", "", 7, "user")
		require.NoError(t, h.FloorAvailability(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Aspen")
		assert.Contains(t, rec.Body.String(), "Birch")
		assert.Contains(t, rec.Body.String(), "bookedIntervals")
	})

	t.Run("floor availability rejects bad params", func(t *testing.T) {
		h, _ := newTestHandler(rooms...)
		c, rec := request(e, http.MethodGet, "/v1/availability?date=2024-06-01", "", 7, "user")
		require.NoError(t, h.FloorAvailability(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		c, rec = request(e, http.MethodGet, "/v1/availability?floorId=3&date=junk", "", 7, "user")
		require.NoError(t, h.FloorAvailability(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("slot view returns overlapping bookings", func(t *testing.T) {
		h, _ := newTestHandler(rooms...)
		_, err := h.Sched.CreateBooking(context.Background(), scheduling.CreateRequest{
			RoomID: 2, UserID: 7,
			Start:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			End:     time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
			Purpose: "review",
		})
		require.NoError(t, err)

		c, rec := request(e, http.MethodGet, "/v1/availability/slots?date=2024-06-01&time=09:45", "", 0, "")
		require.NoError(t, h.SlotStatus(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"room_id":2`)

		c, rec = request(e, http.MethodGet, "/v1/availability/slots?date=2024-06-01&time=23:00", "", 0, "")
		require.NoError(t, h.SlotStatus(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})

	t.Run("slot view rejects a malformed time", func(t *testing.T) {
		h, _ := newTestHandler(rooms...)
		c, rec := request(e, http.MethodGet, "/v1/availability/slots?date=2024-06-01&time=9am", "", 0, "")
		require.NoError(t, h.SlotStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
