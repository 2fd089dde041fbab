package payment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRejectedClientSide is returned when a submission fails validation
// before any network call: amount under the card minimum, or a missing
// or malformed mobile-money number.  Callers surface the wrapped reason
// and never invoke the gateway.
var ErrRejectedClientSide = errors.New("payment rejected client-side")

// MobileMoneyPrefix is the country prefix every mobile-money number must
// carry (DRC country code, no leading plus).
const MobileMoneyPrefix = "243"

// MinCardUSDCents is the smallest card charge the gateway will accept in
// USD; anything below is rejected here instead of wasting a round-trip.
const MinCardUSDCents = 200

// ValidateSubmission applies the method-specific client-side rules to a
// resolved (post-discount) amount.  A nil return means the submission
// may proceed to the gateway.
func ValidateSubmission(method Method, amountCents int64, currency, phone string) error {
	switch method {
	case MethodCard:
		if currency == "USD" && amountCents < MinCardUSDCents {
			return fmt.Errorf("%w: card amount below minimum", ErrRejectedClientSide)
		}
	case MethodMobileMoney:
		if phone == "" {
			return fmt.Errorf("%w: phone number is required", ErrRejectedClientSide)
		}
		if !digitsOnly(phone) || !strings.HasPrefix(phone, MobileMoneyPrefix) {
			return fmt.Errorf("%w: phone must be digits starting with %s", ErrRejectedClientSide, MobileMoneyPrefix)
		}
		if len(phone) != 12 {
			return fmt.Errorf("%w: phone must be 12 digits", ErrRejectedClientSide)
		}
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrRejectedClientSide, method)
	}
	return nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
