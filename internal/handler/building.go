package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/repository"
)

// BuildingHandler serves the public building listing and the admin
// CRUD endpoints.
type BuildingHandler struct {
	Buildings *repository.BuildingRepo
}

func NewBuildingHandler(b *repository.BuildingRepo) *BuildingHandler {
	return &BuildingHandler{Buildings: b}
}

type buildingReq struct {
	Name string `json:"name" validate:"required"`
}

// List handles GET /v1/buildings.
func (h *BuildingHandler) List(c echo.Context) error {
	items, err := h.Buildings.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list buildings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load buildings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/admin/buildings.
func (h *BuildingHandler) Create(c echo.Context) error {
	var req buildingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}
	b := model.Building{Name: req.Name}
	if err := h.Buildings.Create(c.Request().Context(), &b); err != nil {
		c.Logger().Errorf("create building: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create building"})
	}
	return c.JSON(http.StatusCreated, b)
}

// Update handles PUT /v1/admin/buildings/:id.
func (h *BuildingHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid building id"})
	}
	var req buildingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}
	existed, err := h.Buildings.Update(c.Request().Context(), id, req.Name)
	if err != nil {
		c.Logger().Errorf("update building %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update building"})
	}
	if !existed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "building not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "building updated"})
}

// Delete handles DELETE /v1/admin/buildings/:id.
func (h *BuildingHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid building id"})
	}
	err := h.Buildings.Delete(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "building deleted"})
	case errors.Is(err, repository.ErrInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "building still has floors"})
	default:
		c.Logger().Errorf("delete building %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete building"})
	}
}
