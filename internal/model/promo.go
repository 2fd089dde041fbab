package model

// PromoType distinguishes fixed-amount discounts from percentage ones.
type PromoType string

const (
	PromoAmount     PromoType = "AMOUNT"     // fixed value per currency
	PromoPercentage PromoType = "PERCENTAGE" // percentage of the base amount
)

// PromoCode is a discount attached to a single event and applied at
// payment time.  A code string is unique within its event.  Amount-typed
// promos carry one fixed value per currency; percentage-typed promos
// carry a single percentage applied to any currency.
//
// Fields:
//  ID              – primary key identifier.
//  EventID         – event this promo is attached to.
//  Code            – code entered by the viewer (matched case-sensitively).
//  Type            – AMOUNT or PERCENTAGE.
//  ValueByCurrency – currency code -> fixed discount in cents (amount type).
//  ValuePercentage – discount percentage, 0–100 (percentage type).
type PromoCode struct {
	ID              uint64           `json:"id"`
	EventID         uint64           `json:"event_id"`
	Code            string           `json:"code"`
	Type            PromoType        `json:"type"`
	ValueByCurrency map[string]int64 `json:"value_by_currency,omitempty"`
	ValuePercentage int64            `json:"value_percentage,omitempty"`
}
