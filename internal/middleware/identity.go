package middleware

// identity.go defines helper functions shared across middleware files.
// It provides a userID extraction function that reads the viewer ID the
// JWT middleware stored in the Echo context. When no viewer is
// authenticated, "guest" is returned so cache and rate-limit keys still
// partition sensibly for public routes.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID extracts a viewer identifier from the Echo context. It returns
// "guest" when no viewer is authenticated.
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
		return strconv.FormatUint(v, 10)
	}
	return "guest"
}
