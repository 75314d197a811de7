package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// errNoUser is returned by getUserID when the JWT middleware did not
// leave a usable subject claim in the context.
var errNoUser = errors.New("no authenticated user in context")

// getUserID extracts the authenticated user's ID from the context.
// JWTAuth stores the raw "sub" claim, which arrives as a float64 when
// decoded from JSON and may be a string with other token issuers.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v <= 0 {
			return 0, errNoUser
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, errNoUser
		}
		return id, nil
	default:
		return 0, errNoUser
	}
}

// isAdmin reports whether the authenticated request carries the admin
// role claim.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
