package model

import "time"

// Ticket records a viewer's purchased or reserved access to an event.
// One ticket per viewer/event pair; its existence is what makes the
// viewer entitled.  Tickets are written only after the payment gateway
// reports approval, never optimistically.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – viewer who purchased access.
//  EventID     – event the access applies to.
//  AmountCents – amount actually charged, post-discount, in cents.
//  Currency    – currency of the charge.
//  Method      – payment method used (CARD or MOBILE_MONEY).
//  PromoID     – promo applied at purchase time, if any.
//  Reference   – payment attempt reference for reconciliation.
//  CreatedAt   – purchase timestamp.
type Ticket struct {
	ID          uint64    `json:"id"`           // tickets.id
	UserID      uint64    `json:"user_id"`      // tickets.user_id
	EventID     uint64    `json:"event_id"`     // tickets.event_id
	AmountCents int64     `json:"amount_cents"` // tickets.amount_cents
	Currency    string    `json:"currency"`     // tickets.currency
	Method      string    `json:"method"`       // tickets.method
	PromoID     *uint64   `json:"promo_id"`     // tickets.promo_id (nullable)
	Reference   string    `json:"reference"`    // tickets.reference
	CreatedAt   time.Time `json:"created_at"`   // tickets.created_at
}

// TicketPage is the paginated envelope returned when listing a viewer's
// tickets.  Page numbers are 1-based.
type TicketPage struct {
	Items       []Ticket `json:"items"`
	CurrentPage int      `json:"current_page"`
	LastPage    int      `json:"last_page"`
	HasMore     bool     `json:"has_more"`
}
