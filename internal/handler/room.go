package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/repository"
)

// RoomHandler serves the public room listing under a floor and the
// admin CRUD endpoints.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(r *repository.RoomRepo) *RoomHandler {
	return &RoomHandler{Rooms: r}
}

type createRoomReq struct {
	FloorID     uint64  `json:"floor_id" validate:"required,min=1"`
	Name        string  `json:"name" validate:"required"`
	Capacity    uint32  `json:"capacity" validate:"required,min=1"`
	Description *string `json:"description"`
}

type updateRoomReq struct {
	FloorID     uint64  `json:"floor_id" validate:"required,min=1"`
	Name        string  `json:"name" validate:"required"`
	Capacity    *uint32 `json:"capacity" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// ListByFloor handles GET /v1/floors/:id/rooms.
func (h *RoomHandler) ListByFloor(c echo.Context) error {
	floorID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	items, err := h.Rooms.ListByFloor(c.Request().Context(), floorID)
	if err != nil {
		c.Logger().Errorf("list rooms: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListAll handles GET /v1/admin/rooms.
func (h *RoomHandler) ListAll(c echo.Context) error {
	items, err := h.Rooms.ListAll(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list all rooms: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	rm, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		c.Logger().Errorf("get room %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	if rm == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	return c.JSON(http.StatusOK, rm)
}

// Create handles POST /v1/admin/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}
	rm := model.Room{
		FloorID:     req.FloorID,
		Name:        req.Name,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	err := h.Rooms.Create(c.Request().Context(), &rm)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, rm)
	case errors.Is(err, repository.ErrFloorNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "floor not found"})
	default:
		c.Logger().Errorf("create room: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}
}

// Update handles PUT /v1/admin/rooms/:id.  Omitted capacity and
// description keep their current values.
func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req updateRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}
	rm, err := h.Rooms.Update(c.Request().Context(), id, req.FloorID, req.Name, req.Capacity, req.Description)
	switch {
	case err == nil && rm != nil:
		return c.JSON(http.StatusOK, rm)
	case err == nil:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrFloorNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "floor not found"})
	default:
		c.Logger().Errorf("update room %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room"})
	}
}

// Delete handles DELETE /v1/admin/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	err := h.Rooms.Delete(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "room deleted"})
	case errors.Is(err, repository.ErrInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room still has bookings"})
	default:
		c.Logger().Errorf("delete room %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete room"})
	}
}
