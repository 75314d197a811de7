package router

import (
	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/handler"
	"github.com/roomhub/roomhub/internal/middleware"
)

// RegisterAdmin registers admin-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, b *handler.BookingHandler, bl *handler.BuildingHandler, fl *handler.FloorHandler, rm *handler.RoomHandler, us *handler.UserHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin"),
	)

	// ---- Bookings ----
	g.GET("/bookings", b.List)
	g.PUT("/bookings/:id/approve", b.Approve)
	g.PUT("/bookings/:id/reject", b.Reject)

	// ---- Buildings ----
	g.POST("/buildings", bl.Create)
	g.PUT("/buildings/:id", bl.Update)
	g.DELETE("/buildings/:id", bl.Delete)

	// ---- Floors ----
	g.GET("/floors", fl.ListAll)
	g.POST("/floors", fl.Create)
	g.PUT("/floors/:id", fl.Update)
	g.DELETE("/floors/:id", fl.Delete)

	// ---- Rooms ----
	g.GET("/rooms", rm.ListAll)
	g.POST("/rooms", rm.Create)
	g.PUT("/rooms/:id", rm.Update)
	g.DELETE("/rooms/:id", rm.Delete)

	// ---- Users ----
	g.GET("/users", us.List)
	g.POST("/users", us.Create)
	g.PUT("/users/:id", us.Update)
	g.DELETE("/users/:id", us.Delete)
	// Bulk CSV import: name,email,password,role per row.
	g.POST("/users/import", us.Import)
}
