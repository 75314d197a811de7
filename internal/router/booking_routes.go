package router

import (
	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/handler"
	"github.com/roomhub/roomhub/internal/middleware"
)

// RegisterBooking registers the booking endpoints available to any
// authenticated user under /v1.  Admin-only decision endpoints are
// registered separately by RegisterAdmin.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("user", "admin"),
	)

	// Submit a booking request; it starts in the pending state.
	g.POST("/bookings", b.Create)
	// The caller's own bookings, newest first.
	g.GET("/bookings/my", b.My)
	// Admin-only listing; ?roomId= narrows to one room, ?status=
	// filters.  Registered here so both URL forms resolve, the
	// handler enforces the role.
	g.GET("/bookings", b.List)
	// Per-room booked windows for one floor and day.
	g.GET("/availability", b.FloorAvailability)
}
