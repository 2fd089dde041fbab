package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kivustream/streampass/internal/refresh"
	"github.com/kivustream/streampass/internal/repository"
)

// FavoriteHandler serves the viewer's favorites list and the toggle
// endpoint.  Toggling bumps the shared refresh key so other screens know
// their cached lists went stale.
type FavoriteHandler struct {
	Events    *repository.EventRepo
	Favorites *repository.FavoriteRepo
	Refresh   *refresh.Key
}

// NewFavoriteHandler constructs a new FavoriteHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewFavoriteHandler(events *repository.EventRepo, favorites *repository.FavoriteRepo, key *refresh.Key) *FavoriteHandler {
	if events == nil || favorites == nil || key == nil {
		panic("nil dependency passed to NewFavoriteHandler")
	}
	return &FavoriteHandler{Events: events, Favorites: favorites, Refresh: key}
}

// List handles GET /v1/favorites.  Each favorited event is annotated
// with the viewer's decision, same as the main listing.
func (h *FavoriteHandler) List(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	events, err := h.Events.ListFavorites(c.Request().Context(), viewerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	now := time.Now()
	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		views = append(views, viewOf(ev, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// Toggle handles POST /v1/favorites/:id/toggle.  The body carries the
// state the client currently believes in so the server applies the
// matching statement.  The response returns the new state; the refresh
// key is bumped so unrelated screens re-fetch their lists.
func (h *FavoriteHandler) Toggle(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	var body struct {
		CurrentlyFavorite bool `json:"currently_favorite"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	// ensure the event exists before writing a favorite row for it
	if _, err := h.Events.GetByID(ctx, viewerID, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	isFavorite, err := h.Favorites.Toggle(ctx, viewerID, eventID, body.CurrentlyFavorite)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.Refresh.Bump()

	return c.JSON(http.StatusOK, echo.Map{"is_favorite": isFavorite})
}

// RefreshKey handles GET /v1/refresh-key.  Clients compare the returned
// version against the last one they saw and re-fetch when it moved.
func (h *FavoriteHandler) RefreshKey(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"refresh_key": h.Refresh.Current()})
}
