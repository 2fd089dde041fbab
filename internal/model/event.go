package model

import "time"

// Event represents a streamed occasion that viewers can browse, favorite
// and purchase access to.  The temporal flags are asserted by the backend
// that runs the broadcast; the client-facing service only reads them and
// derives the viewing phase.  Entitlement and favorite flags are
// viewer-scoped and filled in by the repository when a viewer is known.
//
// Fields:
//  ID           – primary key identifier.
//  Title        – display title of the event.
//  Description  – longer description shown on the detail view.
//  CoverURL     – poster image URL.
//  CategoryID   – category the event belongs to.
//  Date         – scheduled start instant (stored in UTC).
//  IsLive       – broadcaster-asserted "currently streaming" flag.
//  IsStarted    – broadcaster-asserted "broadcast has begun" flag.
//  IsFinished   – broadcaster-asserted "broadcast has concluded" flag.
//  StreamLink   – playable stream URL; empty when no stream is attached.
//  PriceCents   – access price in cents.
//  Currency     – ISO currency code of the price (e.g. "USD", "CDF").
//  IsPaid       – whether the current viewer purchased/reserved access.
//  IsFavorite   – whether the current viewer favorited this event.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Event struct {
	ID          uint64    `json:"id"`           // events.id
	Title       string    `json:"title"`        // events.title
	Description string    `json:"description"`  // events.description
	CoverURL    string    `json:"cover_url"`    // events.cover_url
	CategoryID  uint64    `json:"category_id"`  // events.category_id
	Date        time.Time `json:"date"`         // events.starts_at
	IsLive      bool      `json:"is_live"`      // events.is_live
	IsStarted   bool      `json:"is_started"`   // events.is_started
	IsFinished  bool      `json:"is_finished"`  // events.is_finished
	StreamLink  string    `json:"stream_link"`  // events.stream_link (empty = none)
	PriceCents  int64     `json:"price_cents"`  // events.price_cents
	Currency    string    `json:"currency"`     // events.currency
	IsPaid      bool      `json:"is_paid"`      // derived: entitlements join
	IsFavorite  bool      `json:"is_favorite"`  // derived: favorites join
	CreatedAt   time.Time `json:"created_at"`   // events.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // events.updated_at
}

// HasStreamLink reports whether a playable stream URL is attached to the
// event.  Absence means the event is never watchable regardless of time.
func (e Event) HasStreamLink() bool { return e.StreamLink != "" }

// EventPage is the paginated envelope returned when listing events.  The
// page numbers are 1-based; HasMore is true while Page < LastPage.
type EventPage struct {
	Items    []Event `json:"items"`
	Page     int     `json:"page"`
	LastPage int     `json:"last_page"`
	HasMore  bool    `json:"has_more"`
}
