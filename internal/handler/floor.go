package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/repository"
)

// FloorHandler serves the public floor listing under a building and
// the admin CRUD endpoints.
type FloorHandler struct {
	Floors *repository.FloorRepo
}

func NewFloorHandler(f *repository.FloorRepo) *FloorHandler {
	return &FloorHandler{Floors: f}
}

type floorReq struct {
	BuildingID  uint64 `json:"building_id" validate:"required,min=1"`
	FloorNumber int32  `json:"floor_number"`
}

// ListByBuilding handles GET /v1/buildings/:id/floors.
func (h *FloorHandler) ListByBuilding(c echo.Context) error {
	buildingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid building id"})
	}
	items, err := h.Floors.ListByBuilding(c.Request().Context(), buildingID)
	if err != nil {
		c.Logger().Errorf("list floors: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load floors"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListAll handles GET /v1/admin/floors.
func (h *FloorHandler) ListAll(c echo.Context) error {
	items, err := h.Floors.ListAll(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list all floors: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load floors"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/admin/floors.
func (h *FloorHandler) Create(c echo.Context) error {
	var req floorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	f := model.Floor{BuildingID: req.BuildingID, FloorNumber: req.FloorNumber}
	err := h.Floors.Create(c.Request().Context(), &f)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, f)
	case errors.Is(err, repository.ErrBuildingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "building not found"})
	default:
		c.Logger().Errorf("create floor: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create floor"})
	}
}

// Update handles PUT /v1/admin/floors/:id.
func (h *FloorHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	var req floorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	existed, err := h.Floors.Update(c.Request().Context(), id, req.BuildingID, req.FloorNumber)
	switch {
	case err == nil && existed:
		return c.JSON(http.StatusOK, echo.Map{"message": "floor updated"})
	case err == nil:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "floor not found"})
	case errors.Is(err, repository.ErrBuildingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "building not found"})
	default:
		c.Logger().Errorf("update floor %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update floor"})
	}
}

// Delete handles DELETE /v1/admin/floors/:id.
func (h *FloorHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	err := h.Floors.Delete(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "floor deleted"})
	case errors.Is(err, repository.ErrInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "floor still has rooms"})
	default:
		c.Logger().Errorf("delete floor %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete floor"})
	}
}
