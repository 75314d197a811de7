package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface so request DTOs can declare their constraints as struct
// tags.  Install it with e.Validator = handler.NewRequestValidator().
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a validator with the default tag name
// ("validate") and struct-level validation enabled.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.  Constraint violations come
// back as a 400 with the validator's message so clients see which
// field failed.
func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
