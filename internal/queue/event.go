// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentApprovedEvent is published when a payment attempt reaches the
// approved state and the entitlement ticket has been written.  It
// contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type PaymentApprovedEvent struct {
	TicketID    uint64 `json:"ticket_id"`
	UserID      uint64 `json:"user_id"`
	EventID     uint64 `json:"event_id"`
	EventTitle  string `json:"event_title"`
	Method      string `json:"method"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	PromoID     uint64 `json:"promo_id,omitempty"`
	Reference   string `json:"reference"`
	ApprovedAt  string `json:"approved_at"`
}
