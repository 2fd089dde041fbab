// Package payment implements the client-side purchase flow: validation
// before submission, the attempt state machine that tracks one in-flight
// purchase, and the redirect-marker matching used for hosted card
// checkout.  Attempts are ephemeral session state; entitlement truth
// always comes from the tickets table after an approved payment.
package payment

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Method selects how the viewer pays.
type Method string

const (
	MethodCard        Method = "CARD"
	MethodMobileMoney Method = "MOBILE_MONEY"
)

// State is the lifecycle position of a payment attempt.
//
//	Idle -> Submitting -> CardRedirectPending  -> Approved|Cancelled|Declined
//	                   -> MobileMoneyPending   -> Approved|TimedOut
//
// A failed submission returns the attempt to Idle with nothing retained.
type State string

const (
	StateIdle                State = "IDLE"
	StateSubmitting          State = "SUBMITTING"
	StateCardRedirectPending State = "CARD_REDIRECT_PENDING"
	StateMobileMoneyPending  State = "MOBILE_MONEY_PENDING"
	StateApproved            State = "APPROVED"
	StateCancelled           State = "CANCELLED"
	StateDeclined            State = "DECLINED"
	StateTimedOut            State = "TIMED_OUT"
)

// Redirect URL markers emitted by the hosted checkout page.  These exact
// substrings are the wire contract with the gateway and must not change.
const (
	MarkerApprove = "/approve"
	MarkerCancel  = "/cancel"
	MarkerDecline = "/decline"
)

// MobileMoneyWait is how long the client waits for a mobile-money
// confirmation before surfacing a "refresh to check status" prompt.
// Expiry only changes client state; the server-side transaction is not
// cancelled.
const MobileMoneyWait = 20 * time.Second

var errBadTransition = errors.New("payment: invalid state transition")

// Attempt tracks one in-flight purchase for one viewer.  All state
// transitions are serialized by the internal mutex; the timeout timer for
// mobile money fires on its own goroutine and goes through the same lock.
type Attempt struct {
	Reference   string
	EventID     uint64
	UserID      uint64
	Method      Method
	AmountCents int64
	Currency    string
	Phone       string
	PromoID     uint64
	RedirectURL string
	CreatedAt   time.Time

	mu    sync.Mutex
	state State
	timer *time.Timer
}

// NewAttempt builds an attempt in the Idle state.  The amount must
// already be post-discount; promo resolution happens before the attempt
// exists.
func NewAttempt(ref string, eventID, userID uint64, method Method, amountCents int64, currency, phone string, promoID uint64) *Attempt {
	return &Attempt{
		Reference:   ref,
		EventID:     eventID,
		UserID:      userID,
		Method:      method,
		AmountCents: amountCents,
		Currency:    currency,
		Phone:       phone,
		PromoID:     promoID,
		CreatedAt:   time.Now().UTC(),
		state:       StateIdle,
	}
}

// State returns the current lifecycle state.
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Terminal reports whether the attempt reached one of its final states.
func (a *Attempt) Terminal() bool {
	return isTerminal(a.State())
}

func isTerminal(s State) bool {
	switch s {
	case StateApproved, StateCancelled, StateDeclined, StateTimedOut:
		return true
	}
	return false
}

// BeginSubmit moves Idle -> Submitting.  It fails if the attempt was
// already submitted, which is how double taps on the pay button are
// coalesced instead of queued.
func (a *Attempt) BeginSubmit() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateIdle {
		return errBadTransition
	}
	a.state = StateSubmitting
	return nil
}

// FailSubmit returns a failed submission to Idle.  No partial state is
// retained; the viewer may re-submit.
func (a *Attempt) FailSubmit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateSubmitting {
		a.state = StateIdle
	}
}

// AwaitCardRedirect moves Submitting -> CardRedirectPending and records
// the hosted checkout URL the viewer is being sent to.
func (a *Attempt) AwaitCardRedirect(redirectURL string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateSubmitting {
		return errBadTransition
	}
	a.state = StateCardRedirectPending
	a.RedirectURL = redirectURL
	return nil
}

// AwaitMobileMoney moves Submitting -> MobileMoneyPending and arms the
// wait timer.  When the timer fires while the attempt is still pending,
// the attempt becomes TimedOut and onTimeout (if any) runs outside the
// lock.  Confirmation arriving first stops the timer.
func (a *Attempt) AwaitMobileMoney(wait time.Duration, onTimeout func()) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateSubmitting {
		return errBadTransition
	}
	a.state = StateMobileMoneyPending
	a.timer = time.AfterFunc(wait, func() {
		a.mu.Lock()
		timedOut := a.state == StateMobileMoneyPending
		if timedOut {
			a.state = StateTimedOut
		}
		a.mu.Unlock()
		if timedOut && onTimeout != nil {
			onTimeout()
		}
	})
	return nil
}

// ObserveNavigation feeds one checkout navigation URL into the state
// machine.  The first matching marker wins and the markers are checked
// in approve, cancel, decline order; navigations observed after a
// terminal transition are ignored.  It returns the state after the
// observation and whether this call caused a terminal transition.
func (a *Attempt) ObserveNavigation(url string) (State, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateCardRedirectPending {
		return a.state, false
	}
	switch {
	case strings.Contains(url, MarkerApprove):
		a.state = StateApproved
	case strings.Contains(url, MarkerCancel):
		a.state = StateCancelled
	case strings.Contains(url, MarkerDecline):
		a.state = StateDeclined
	default:
		return a.state, false
	}
	return a.state, true
}

// Dismiss records that the viewer closed the checkout surface.  It moves
// CardRedirectPending -> Cancelled without any server round-trip and
// reports whether the transition happened.
func (a *Attempt) Dismiss() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateCardRedirectPending {
		return false
	}
	a.state = StateCancelled
	return true
}

// ConfirmMobileMoney records a gateway confirmation for a pending
// mobile-money attempt, stopping the wait timer.  It reports whether the
// attempt transitioned to Approved; a confirmation arriving after the
// timeout is ignored because the viewer was already told to refresh.
func (a *Attempt) ConfirmMobileMoney() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateMobileMoneyPending {
		return false
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.state = StateApproved
	return true
}

// Snapshot is the JSON view of an attempt returned to polling clients.
type Snapshot struct {
	Reference   string `json:"reference"`
	EventID     uint64 `json:"event_id"`
	Method      Method `json:"method"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	State       State  `json:"state"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Snapshot returns a copy of the attempt safe to serialize.
func (a *Attempt) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Reference:   a.Reference,
		EventID:     a.EventID,
		Method:      a.Method,
		AmountCents: a.AmountCents,
		Currency:    a.Currency,
		State:       a.state,
		RedirectURL: a.RedirectURL,
	}
}
