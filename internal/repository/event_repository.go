package repository

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/kivustream/streampass/internal/model"
)

// eventColumns is the select list shared by every event query.  The two
// derived flags come from viewer-scoped LEFT JOINs against tickets and
// favorites; when no viewer is known both joins bind to user id 0 and
// the flags are false.
const eventColumns = `e.id, e.title, e.description, e.cover_url, e.category_id,
       e.starts_at, e.is_live, e.is_started, e.is_finished, e.stream_link,
       e.price_cents, e.currency,
       t.id IS NOT NULL AS is_paid,
       f.event_id IS NOT NULL AS is_favorite,
       e.created_at, e.updated_at`

const eventJoins = ` FROM events e
       LEFT JOIN tickets   t ON t.event_id = e.id AND t.user_id = ?
       LEFT JOIN favorites f ON f.event_id = e.id AND f.user_id = ?`

// EventRepo provides read access to the events table together with the
// viewer-scoped entitlement and favorite flags.  Single-event lookups
// are coalesced through a singleflight group so that a burst of
// identical fetches (pull-to-refresh racing a navigation focus) issues
// one query instead of many.
type EventRepo struct {
	db    *sql.DB
	group singleflight.Group
}

// NewEventRepo returns a new EventRepo bound to the provided database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning several repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// defaultPerPage is the page size for event listings.
const defaultPerPage = 20

// ListPage returns one page of events ordered by start time descending
// (most recent first, matching the storefront's "recents" listing),
// optionally restricted to one category (categoryID 0 means all).
// Page numbers are 1-based; out-of-range pages return an empty item
// slice with paging metadata intact.
func (r *EventRepo) ListPage(ctx context.Context, viewerID, categoryID uint64, page int) (model.EventPage, error) {
	if page < 1 {
		page = 1
	}

	where := ""
	countArgs := []interface{}{}
	if categoryID != 0 {
		where = ` WHERE e.category_id = ?`
		countArgs = append(countArgs, categoryID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events e`+where, countArgs...,
	).Scan(&total); err != nil {
		return model.EventPage{}, fmt.Errorf("count events: %w", err)
	}
	lastPage := (total + defaultPerPage - 1) / defaultPerPage
	if lastPage < 1 {
		lastPage = 1
	}

	offset := (page - 1) * defaultPerPage
	args := []interface{}{viewerID, viewerID}
	args = append(args, countArgs...)
	args = append(args, defaultPerPage, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+eventJoins+where+` ORDER BY e.starts_at DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return model.EventPage{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items, err := scanEvents(rows)
	if err != nil {
		return model.EventPage{}, err
	}
	return model.EventPage{
		Items:    items,
		Page:     page,
		LastPage: lastPage,
		HasMore:  page < lastPage,
	}, nil
}

// GetByID fetches a single event with the viewer's flags.  Concurrent
// fetches of the same event by the same viewer share one query.
func (r *EventRepo) GetByID(ctx context.Context, viewerID, eventID uint64) (model.Event, error) {
	key := fmt.Sprintf("%d:%d", viewerID, eventID)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.getByID(ctx, viewerID, eventID)
	})
	if err != nil {
		return model.Event{}, err
	}
	return v.(model.Event), nil
}

func (r *EventRepo) getByID(ctx context.Context, viewerID, eventID uint64) (model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+eventJoins+` WHERE e.id = ?`,
		viewerID, viewerID, eventID,
	)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return model.Event{}, ErrEventNotFound
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("get event %d: %w", eventID, err)
	}
	return ev, nil
}

// ListFavorites returns every event the viewer has favorited, most
// recently favorited first.
func (r *EventRepo) ListFavorites(ctx context.Context, viewerID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+eventJoins+`
		 JOIN favorites fav ON fav.event_id = e.id AND fav.user_id = ?
		 ORDER BY fav.created_at DESC`,
		viewerID, viewerID, viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s scanner) (model.Event, error) {
	var ev model.Event
	var startsAt sql.NullTime
	var streamLink sql.NullString
	if err := s.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.CoverURL, &ev.CategoryID,
		&startsAt, &ev.IsLive, &ev.IsStarted, &ev.IsFinished, &streamLink,
		&ev.PriceCents, &ev.Currency, &ev.IsPaid, &ev.IsFavorite,
		&ev.CreatedAt, &ev.UpdatedAt,
	); err != nil {
		return model.Event{}, err
	}
	// A NULL starts_at leaves Date zero; the classifier reports that as
	// invalid event data instead of guessing a phase.
	if startsAt.Valid {
		ev.Date = startsAt.Time
	}
	if streamLink.Valid {
		ev.StreamLink = streamLink.String
	}
	return ev, nil
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	events := []model.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
