package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/handler"
	"github.com/roomhub/roomhub/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes and the authenticated
// profile endpoints.  Unauthenticated operations live under /v1/auth;
// protected ones under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/change-password", a.ChangePassword)
}

// RegisterPublic registers the unauthenticated browse endpoints:
// the building/floor/room hierarchy and the global slot view.  These
// carry no JWT middleware so guests can explore availability before
// registering.
func RegisterPublic(e *echo.Echo, bl *handler.BuildingHandler, fl *handler.FloorHandler, rm *handler.RoomHandler, bk *handler.BookingHandler) {
	e.GET("/v1/buildings", bl.List)
	e.GET("/v1/buildings/:id/floors", fl.ListByBuilding)
	e.GET("/v1/floors/:id/rooms", rm.ListByFloor)
	e.GET("/v1/rooms/:id", rm.Get)
	// Who is in which room at a given quarter hour, across all rooms.
	e.GET("/v1/availability/slots", bk.SlotStatus)
}
