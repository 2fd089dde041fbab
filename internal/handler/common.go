package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// errNoViewer is returned by getUserID when the context carries no
// authenticated viewer; handlers translate it into a 401 response.
var errNoViewer = errors.New("no authenticated viewer")

// getUserID reads the viewer ID that the JWT middleware stored in the
// Echo context.  All viewer-scoped handlers call this first.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
		return v, nil
	}
	return 0, errNoViewer
}
