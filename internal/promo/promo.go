// Package promo resolves user-entered promo codes against an event's
// promo list and computes the discounted payable amount.  Resolution is
// a pure computation and must run before any gateway call so that a bad
// code never costs a network round-trip.
package promo

import (
	"errors"

	"github.com/kivustream/streampass/internal/model"
)

// ErrPromoNotFound is returned when the entered code matches no promo
// attached to the event.  Callers must abort the payment submission.
var ErrPromoNotFound = errors.New("promo code not found")

// ErrInvalidPromoResult is returned when applying a promo would make the
// payable amount negative, or when the promo's own value is negative and
// would surcharge the viewer.  Such promos are treated as misconfigured
// and the submission is rejected rather than clamped or forwarded.
var ErrInvalidPromoResult = errors.New("promo yields invalid amount")

// Result carries the outcome of a successful promo resolution.  PromoID
// is zero when no code was entered.
type Result struct {
	AmountCents int64
	PromoID     uint64
}

// Apply resolves entered against the event's promo list and returns the
// discounted amount in cents.  An empty code returns the base amount
// unchanged.  Matching is a case-sensitive exact comparison.  For
// amount-typed promos the discount is the fixed value registered for the
// payment currency (a promo with no value for that currency discounts
// nothing); for percentage-typed promos it is baseCents*pct/100.
func Apply(promos []model.PromoCode, entered string, baseCents int64, currency string) (Result, error) {
	if entered == "" {
		return Result{AmountCents: baseCents}, nil
	}
	var found *model.PromoCode
	for i := range promos {
		if promos[i].Code == entered {
			found = &promos[i]
			break
		}
	}
	if found == nil {
		return Result{}, ErrPromoNotFound
	}

	var discount int64
	switch found.Type {
	case model.PromoPercentage:
		discount = baseCents * found.ValuePercentage / 100
	default: // model.PromoAmount
		discount = found.ValueByCurrency[currency]
	}
	// A negative discount would surcharge the viewer above the listed
	// price; that is bad promo data, not a valid outcome.
	if discount < 0 {
		return Result{}, ErrInvalidPromoResult
	}

	final := baseCents - discount
	if final < 0 {
		return Result{}, ErrInvalidPromoResult
	}
	return Result{AmountCents: final, PromoID: found.ID}, nil
}
