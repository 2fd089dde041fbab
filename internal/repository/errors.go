// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrEventNotFound maps to an HTTP 404, while ErrConflict
// signals that an operation cannot proceed due to existing records
// (e.g. granting an entitlement the viewer already holds).
package repository

import "errors"

// ErrEventNotFound is returned when no event exists for the requested
// identifier. Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketNotFound is returned when no ticket exists for the requested
// identifier or viewer. Handlers should translate this into an HTTP 404
// response.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrConflict is returned when an insert or update cannot be
// performed because of conflicting state, such as granting an
// entitlement that already exists. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
