package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roomhub/roomhub/internal/config"
	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/repository"
)

// UserHandler serves the admin user management endpoints, including
// bulk CSV import.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

type updateUserReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// List handles GET /v1/admin/users.
func (h *UserHandler) List(c echo.Context) error {
	items, err := h.Users.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list users: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	out := make([]userPart, 0, len(items))
	for _, u := range items {
		out = append(out, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create handles POST /v1/admin/users.  Unlike self-registration this
// endpoint can create admin accounts.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}
	uid, err := h.Users.Create(c.Request().Context(), req.Name, req.Email, req.Password, req.Role, h.Cfg.BcryptCost)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, userPart{ID: uid, Name: req.Name, Email: req.Email, Role: req.Role})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	default:
		c.Logger().Errorf("create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}
}

// Update handles PUT /v1/admin/users/:id.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}
	existed, err := h.Users.Update(c.Request().Context(), id, req.Name, req.Email)
	switch {
	case err == nil && existed:
		return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
	case err == nil:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	default:
		c.Logger().Errorf("update user %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}
}

// Delete handles DELETE /v1/admin/users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	err := h.Users.Delete(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
	case errors.Is(err, repository.ErrInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user still has bookings"})
	default:
		c.Logger().Errorf("delete user %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
}

// importReport summarises a CSV import run.
type importReport struct {
	Created    int      `json:"created"`
	Duplicates int      `json:"duplicates"`
	Errors     []string `json:"errors"`
}

// Import handles POST /v1/admin/users/import.  The uploaded CSV must
// have the columns name,email,password,role in that order, with an
// optional header row.  Rows that fail validation are reported but do
// not abort the rest of the file; duplicate emails are counted
// separately so re-importing the same file is harmless.
func (h *UserHandler) Import(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "csv file required in 'file' field"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open uploaded file"})
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = 4
	rd.TrimLeadingSpace = true

	ctx := c.Request().Context()
	report := importReport{Errors: []string{}}
	line := 0
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue // header row
		}
		name := strings.TrimSpace(rec[0])
		email := strings.ToLower(strings.TrimSpace(rec[1]))
		password := rec[2]
		role := strings.ToLower(strings.TrimSpace(rec[3]))
		if role == "" {
			role = model.RoleUser
		}

		switch {
		case name == "":
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: name is required", line))
			continue
		case email == "" || !strings.Contains(email, "@"):
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: invalid email", line))
			continue
		case len(password) < 8:
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: password must be at least 8 characters", line))
			continue
		case role != model.RoleUser && role != model.RoleAdmin:
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: unknown role %q", line, role))
			continue
		}

		_, err = h.Users.Create(ctx, name, email, password, role, h.Cfg.BcryptCost)
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, repository.ErrEmailExists):
			report.Duplicates++
		default:
			c.Logger().Errorf("import user line %d: %v", line, err)
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: could not create user", line))
		}
	}

	return c.JSON(http.StatusOK, report)
}
