package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kivustream/streampass/internal/access"
	"github.com/kivustream/streampass/internal/model"
	"github.com/kivustream/streampass/internal/repository"
)

// EventHandler serves event listings and detail views.  Every event it
// returns is passed through the access classifier so that callers render
// from one authoritative phase/action pair instead of re-deriving the
// temporal flags themselves.  Methods assume JWT authentication has
// already run and may return 401 when no viewer is present.
type EventHandler struct {
	Events *repository.EventRepo
}

// NewEventHandler constructs a new EventHandler with the provided
// repository.  The dependency must be non-nil.
func NewEventHandler(events *repository.EventRepo) *EventHandler {
	if events == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: events}
}

// eventView is the wire shape for one event: the record plus the
// decision derived for the requesting viewer at request time.  Events
// whose stored date is unusable carry a data_error instead of a decision
// so one bad record cannot break a whole listing.
type eventView struct {
	model.Event
	Phase     access.Phase  `json:"phase,omitempty"`
	Action    access.Action `json:"action,omitempty"`
	DataError string        `json:"data_error,omitempty"`
}

func viewOf(ev model.Event, now time.Time) eventView {
	dec, err := access.Classify(ev, now, ev.IsPaid)
	if err != nil {
		return eventView{Event: ev, DataError: "invalid event data"}
	}
	return eventView{Event: ev, Phase: dec.Phase, Action: dec.Action}
}

// List handles GET /v1/events?page=N&category=C.  It returns one page of
// events ordered by start time, optionally restricted to one category,
// each annotated with the viewer's decision.
func (h *EventHandler) List(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	categoryID, _ := strconv.ParseUint(c.QueryParam("category"), 10, 64)

	pageData, err := h.Events.ListPage(c.Request().Context(), viewerID, categoryID, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	now := time.Now()
	views := make([]eventView, 0, len(pageData.Items))
	for _, ev := range pageData.Items {
		views = append(views, viewOf(ev, now))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     views,
		"page":      pageData.Page,
		"last_page": pageData.LastPage,
		"has_more":  pageData.HasMore,
	})
}

// GetByID handles GET /v1/events/:id.  It returns the event with the
// viewer's decision, or 404 when no such event exists.  A malformed
// stored date yields 422: the record exists but cannot be classified.
func (h *EventHandler) GetByID(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ev, err := h.Events.GetByID(c.Request().Context(), viewerID, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	dec, err := access.Classify(ev, time.Now(), ev.IsPaid)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid event data"})
	}
	return c.JSON(http.StatusOK, eventView{Event: ev, Phase: dec.Phase, Action: dec.Action})
}
