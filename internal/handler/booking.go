package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/queue"
	"github.com/roomhub/roomhub/internal/repository"
	"github.com/roomhub/roomhub/internal/scheduling"
	queue_publisher "github.com/roomhub/roomhub/internal/service"
)

// BookingHandler exposes booking submission, the admin decision
// endpoints and the availability views.  The scheduling service owns
// the conflict and state-machine rules; this layer binds requests,
// extracts the authenticated user and maps sentinel errors to HTTP
// status codes.
type BookingHandler struct {
	Sched    *scheduling.Service
	Bookings *repository.BookingRepo

	// publish delivers decision events to the broker; swappable in
	// tests.
	publish func(ctx context.Context, ev queue.BookingDecidedEvent) error
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies
// must be non-nil.
func NewBookingHandler(sched *scheduling.Service, bookings *repository.BookingRepo) *BookingHandler {
	if sched == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Sched: sched, Bookings: bookings, publish: queue_publisher.PublishBookingDecided}
}

type createBookingReq struct {
	RoomID    uint64    `json:"room_id" validate:"required,min=1"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Purpose   string    `json:"purpose" validate:"required"`
}

type decisionReq struct {
	Reason string `json:"reason"`
}

type bookingResp struct {
	ID          uint64    `json:"id"`
	Reference   string    `json:"reference"`
	RoomID      uint64    `json:"room_id"`
	UserID      uint64    `json:"user_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Purpose     string    `json:"purpose"`
	Status      string    `json:"status"`
	AdminReason *string   `json:"admin_reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:          b.ID,
		Reference:   b.Reference,
		RoomID:      b.RoomID,
		UserID:      b.UserID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Purpose:     b.Purpose,
		Status:      string(b.Status),
		AdminReason: b.AdminReason,
		CreatedAt:   b.CreatedAt,
	}
}

// Create handles POST /v1/bookings.  It submits a booking request for
// the authenticated user.  The window must satisfy start < end and
// not overlap any active booking on the room; conflicts come back as
// 409 so the UI can offer a different time.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.Sched.CreateBooking(c.Request().Context(), scheduling.CreateRequest{
		RoomID:  req.RoomID,
		UserID:  userID,
		Start:   req.StartTime,
		End:     req.EndTime,
		Purpose: req.Purpose,
	})
	switch {
	case err == nil:
	case errors.Is(err, scheduling.ErrInvalidRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start time must be before end time"})
	case errors.Is(err, scheduling.ErrEmptyPurpose):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "purpose is required"})
	case errors.Is(err, scheduling.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is already booked for this time slot, please choose a different time"})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	default:
		c.Logger().Errorf("create booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "booking request submitted",
		"booking": toBookingResp(b),
	})
}

// My handles GET /v1/bookings/my.  It returns the authenticated
// user's bookings with room and building names, newest first.
func (h *BookingHandler) My(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("list user bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// List handles GET /v1/bookings and GET /v1/admin/bookings.  With
// ?roomId= it returns that room's bookings ordered by start time;
// without it, the full joined dashboard listing, newest first.  Both
// forms are admin-only and accept an optional ?status= filter.
func (h *BookingHandler) List(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}
	status := model.BookingStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	ctx := c.Request().Context()

	if raw := c.QueryParam("roomId"); raw != "" {
		roomID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || roomID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
		}
		items, err := h.Bookings.ListByRoom(ctx, roomID, status)
		if err != nil {
			c.Logger().Errorf("list room bookings: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
		}
		out := make([]bookingResp, 0, len(items))
		for i := range items {
			out = append(out, toBookingResp(&items[i]))
		}
		return c.JSON(http.StatusOK, echo.Map{"items": out})
	}

	items, err := h.Bookings.AdminList(ctx, status)
	if err != nil {
		c.Logger().Errorf("admin list bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Approve handles PUT /v1/admin/bookings/:id/approve.  The booking
// must still be pending and its window must pass the conflict check
// a second time with the booking itself excluded.
func (h *BookingHandler) Approve(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}

	b, err := h.Sched.ApproveBooking(c.Request().Context(), id, reason)
	switch {
	case err == nil:
	case errors.Is(err, scheduling.ErrNotFound), errors.Is(err, scheduling.ErrNotPending):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "pending booking not found"})
	case errors.Is(err, scheduling.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot approve: room is already booked for this time slot"})
	default:
		c.Logger().Errorf("approve booking %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to approve booking"})
	}

	h.publishDecision(b)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "booking approved",
		"booking": toBookingResp(b),
	})
}

// Reject handles PUT /v1/admin/bookings/:id/reject.  A non-empty
// reason is mandatory; the booking's window is freed immediately.
func (h *BookingHandler) Reject(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Sched.RejectBooking(c.Request().Context(), id, req.Reason)
	switch {
	case err == nil:
	case errors.Is(err, scheduling.ErrEmptyReason):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required for rejection"})
	case errors.Is(err, scheduling.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	default:
		c.Logger().Errorf("reject booking %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject booking"})
	}

	h.publishDecision(b)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "booking rejected",
		"booking": toBookingResp(b),
	})
}

// publishDecision emits a booking.decided event.  Delivery is best
// effort: the decision is already committed and a broker outage must
// not fail the request.
func (h *BookingHandler) publishDecision(b *model.Booking) {
	ev := queue.BookingDecidedEvent{
		BookingID: b.ID,
		Reference: b.Reference,
		RoomID:    b.RoomID,
		UserID:    b.UserID,
		Status:    string(b.Status),
		StartTime: b.StartTime.Format(time.RFC3339),
		EndTime:   b.EndTime.Format(time.RFC3339),
		DecidedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if b.AdminReason != nil {
		ev.Reason = *b.AdminReason
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.publish(ctx, ev)
	}()
}

// FloorAvailability handles GET /v1/availability.  It returns, for
// every room on the floor, the active booking windows overlapping the
// requested calendar day.
func (h *BookingHandler) FloorAvailability(c echo.Context) error {
	floorID, err := strconv.ParseUint(c.QueryParam("floorId"), 10, 64)
	if err != nil || floorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid floorId required"})
	}
	date := c.QueryParam("date")

	rooms, err := h.Sched.FloorAvailability(c.Request().Context(), floorID, date)
	switch {
	case err == nil:
	case errors.Is(err, scheduling.ErrBadDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid date (YYYY-MM-DD) required"})
	default:
		c.Logger().Errorf("floor availability: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// SlotStatus handles GET /v1/availability/slots.  It returns every
// active booking overlapping the 15-minute slot at date+time, across
// all rooms.
func (h *BookingHandler) SlotStatus(c echo.Context) error {
	date := c.QueryParam("date")
	clock := c.QueryParam("time")

	slots, err := h.Sched.SlotStatus(c.Request().Context(), date, clock)
	switch {
	case err == nil:
	case errors.Is(err, scheduling.ErrBadDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid date (YYYY-MM-DD) required"})
	case errors.Is(err, scheduling.ErrBadTime):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid time (HH:MM) required"})
	default:
		c.Logger().Errorf("slot status: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load slot status"})
	}
	return c.JSON(http.StatusOK, slots)
}
