package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kivustream/streampass/internal/model"
)

// categorySource is the slice of the category repository this handler
// needs; tests substitute a fixed list.
type categorySource interface {
	ListAll(ctx context.Context) ([]model.Category, error)
}

// CategoryHandler serves the category list the client renders as filter
// chips over the event catalog.
type CategoryHandler struct {
	Categories categorySource
}

// NewCategoryHandler constructs a new CategoryHandler with the provided
// repository.  The dependency must be non-nil.
func NewCategoryHandler(categories categorySource) *CategoryHandler {
	if categories == nil {
		panic("nil repository passed to NewCategoryHandler")
	}
	return &CategoryHandler{Categories: categories}
}

// List handles GET /v1/categories.
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.Categories.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}
