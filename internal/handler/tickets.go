package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kivustream/streampass/internal/repository"
)

// TicketHandler serves the viewer's purchased tickets.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

// NewTicketHandler constructs a new TicketHandler with the provided
// repository.  The dependency must be non-nil.
func NewTicketHandler(tickets *repository.TicketRepo) *TicketHandler {
	if tickets == nil {
		panic("nil repository passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: tickets}
}

// List handles GET /v1/tickets?page=N.  It returns one page of the
// viewer's tickets, newest first, with paging metadata.
func (h *TicketHandler) List(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	pageData, err := h.Tickets.ListByUser(c.Request().Context(), viewerID, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, pageData)
}
