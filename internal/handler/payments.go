package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kivustream/streampass/internal/gateway"
	"github.com/kivustream/streampass/internal/model"
	"github.com/kivustream/streampass/internal/payment"
	"github.com/kivustream/streampass/internal/promo"
	"github.com/kivustream/streampass/internal/refresh"
	"github.com/kivustream/streampass/internal/repository"
	queue_publisher "github.com/kivustream/streampass/internal/service"

	q "github.com/kivustream/streampass/internal/queue"
)

// The payment flow touches only a slice of each repository, so the
// handler depends on these narrow interfaces; the MySQL repositories
// satisfy them and tests substitute in-memory implementations.
type eventCatalog interface {
	GetByID(ctx context.Context, viewerID, eventID uint64) (model.Event, error)
}

type promoSource interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.PromoCode, error)
}

type entitlements interface {
	Grant(ctx context.Context, t model.Ticket) (uint64, error)
}

// PaymentHandler drives the purchase flow: promo resolution and
// client-side validation happen before the gateway is contacted, card
// attempts wait on the hosted checkout redirect, mobile-money attempts
// wait on a timer.  An approved attempt writes the entitlement ticket,
// publishes a payment.approved message and bumps the refresh key;
// everything else leaves the database untouched.
type PaymentHandler struct {
	Events        eventCatalog
	Promos        promoSource
	Tickets       entitlements
	Gateway       *gateway.Client
	Attempts      *payment.Store
	Refresh       *refresh.Key
	PublicBaseURL string
	GatewayToken  string

	// Publish emits the payment.approved message after a grant.  A nil
	// value disables publishing.
	Publish func(ctx context.Context, ev q.PaymentApprovedEvent) error
}

// NewPaymentHandler constructs a new PaymentHandler.  All dependencies
// must be non-nil.
func NewPaymentHandler(events *repository.EventRepo, promos *repository.PromoRepo, tickets *repository.TicketRepo,
	gw *gateway.Client, attempts *payment.Store, key *refresh.Key, publicBaseURL, gatewayToken string) *PaymentHandler {
	if events == nil || promos == nil || tickets == nil || gw == nil || attempts == nil || key == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{
		Events:        events,
		Promos:        promos,
		Tickets:       tickets,
		Gateway:       gw,
		Attempts:      attempts,
		Refresh:       key,
		PublicBaseURL: publicBaseURL,
		GatewayToken:  gatewayToken,
		Publish:       queue_publisher.PublishPaymentApproved,
	}
}

// Submit handles POST /v1/events/:id/pay.  The body selects the method
// and optionally carries a phone number (mobile money) and a promo code.
// All validation failures are reported before the gateway is contacted.
func (h *PaymentHandler) Submit(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	var body struct {
		Method    string `json:"method"`
		Phone     string `json:"phone"`
		PromoCode string `json:"promo_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, viewerID, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if ev.IsPaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already entitled"})
	}
	// a second submission while one is in flight is ignored, not queued
	if h.Attempts.PendingForViewer(viewerID, eventID) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment already in progress"})
	}

	// resolve the promo first: a bad code must never cost a gateway call
	promos, err := h.Promos.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resolved, err := promo.Apply(promos, body.PromoCode, ev.PriceCents, ev.Currency)
	if errors.Is(err, promo.ErrPromoNotFound) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "promo code not found"})
	}
	if errors.Is(err, promo.ErrInvalidPromoResult) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "promo yields invalid amount"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "promo resolution failed"})
	}

	method := payment.Method(strings.ToUpper(body.Method))
	if err := payment.ValidateSubmission(method, resolved.AmountCents, ev.Currency, body.Phone); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	ref, err := payment.NewReference()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create attempt"})
	}
	attempt := payment.NewAttempt(ref, eventID, viewerID, method, resolved.AmountCents, ev.Currency, body.Phone, resolved.PromoID)
	if err := attempt.BeginSubmit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create attempt"})
	}
	// The early pending check above is advisory; this insert re-checks
	// under the store lock so two racing submissions cannot both pass.
	if !h.Attempts.PutIfNoPending(attempt) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment already in progress"})
	}

	resp, err := h.Gateway.SubmitPayment(ctx, gateway.SubmitRequest{
		Reference:   ref,
		AmountCents: resolved.AmountCents,
		Currency:    ev.Currency,
		Method:      string(method),
		Phone:       body.Phone,
		ReturnURL:   h.PublicBaseURL + "/v1/payments/" + ref + "/return",
	})
	if err != nil {
		attempt.FailSubmit()
		h.Attempts.Remove(ref)
		log.Printf("payments: gateway submission failed for ref=%s: %v", ref, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway error"})
	}

	if method == payment.MethodCard {
		if resp.RedirectURL == "" {
			attempt.FailSubmit()
			h.Attempts.Remove(ref)
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "gateway returned no checkout url"})
		}
		if err := attempt.AwaitCardRedirect(resp.RedirectURL); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attempt state error"})
		}
		return c.JSON(http.StatusCreated, attempt.Snapshot())
	}

	// mobile money: no redirect; wait for the provider, advise refresh on timeout
	if err := attempt.AwaitMobileMoney(payment.MobileMoneyWait, func() {
		log.Printf("payments: mobile-money attempt ref=%s timed out; viewer advised to refresh", ref)
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attempt state error"})
	}
	return c.JSON(http.StatusAccepted, attempt.Snapshot())
}

// Return handles GET /v1/payments/:ref/return/*.  The hosted checkout
// page sends the viewer's browser here with the outcome marker appended
// to the path; the attempt's state machine pattern-matches the URL.  The
// route is unauthenticated because the browser arrives without a bearer
// token; the opaque reference is the correlation secret.
func (h *PaymentHandler) Return(c echo.Context) error {
	attempt := h.Attempts.Get(c.Param("ref"))
	if attempt == nil || attempt.Method != payment.MethodCard {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown payment reference"})
	}

	state, terminal := attempt.ObserveNavigation(c.Request().RequestURI)
	if terminal && state == payment.StateApproved {
		h.finalizeApproval(c.Request().Context(), attempt)
	}
	return c.JSON(http.StatusOK, echo.Map{"state": state})
}

// Dismiss handles POST /v1/payments/:ref/dismiss.  The viewer closed the
// checkout surface; the attempt is cancelled without a gateway call.
func (h *PaymentHandler) Dismiss(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	attempt := h.Attempts.Get(c.Param("ref"))
	if attempt == nil || attempt.UserID != viewerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown payment reference"})
	}
	attempt.Dismiss()
	return c.JSON(http.StatusOK, attempt.Snapshot())
}

// Confirm handles POST /v1/payments/:ref/confirm, the provider's
// server-to-server confirmation for asynchronous mobile-money charges.
// It is authenticated with the merchant token, not a viewer JWT.  A
// confirmation arriving after the client-side timeout still grants the
// entitlement: the viewer was told to refresh, and the next event fetch
// will show them as entitled.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	got := []byte(c.Request().Header.Get("Authorization"))
	want := []byte("Bearer " + h.GatewayToken)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	attempt := h.Attempts.Get(c.Param("ref"))
	if attempt == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown payment reference"})
	}

	if attempt.ConfirmMobileMoney() {
		h.finalizeApproval(c.Request().Context(), attempt)
	} else if attempt.State() == payment.StateTimedOut {
		// Late confirmation after the client-side timeout: the viewer
		// was told to refresh, so grant the entitlement and retire the
		// attempt rather than waiting for a poll that may never come.
		h.finalizeApproval(c.Request().Context(), attempt)
		h.Attempts.Remove(attempt.Reference)
	}
	return c.JSON(http.StatusOK, echo.Map{"state": attempt.State()})
}

// Get handles GET /v1/payments/:ref, the polling endpoint.  Attempts
// are session-scoped: once a terminal outcome has been reported to its
// viewer the attempt is discarded and later polls return 404, except
// for timed-out mobile-money attempts, which are kept for the
// provider's late confirmation.
func (h *PaymentHandler) Get(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	attempt := h.Attempts.Get(c.Param("ref"))
	if attempt == nil || attempt.UserID != viewerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown payment reference"})
	}

	snap := attempt.Snapshot()
	// Card outcomes and approvals are session-scoped and discarded once
	// reported.  A timed-out mobile-money attempt must outlive its
	// report: the provider's late confirmation still needs the stored
	// amount and promo to grant the entitlement.
	if attempt.Terminal() && snap.State != payment.StateTimedOut {
		h.Attempts.Remove(attempt.Reference)
	}
	return c.JSON(http.StatusOK, snap)
}

// finalizeApproval records the durable effects of an approved payment:
// the entitlement ticket, the payment.approved message and the refresh
// key bump.  The ticket row is the source of truth; queue publishing is
// best effort and never rolls the grant back.
func (h *PaymentHandler) finalizeApproval(ctx context.Context, attempt *payment.Attempt) {
	t := model.Ticket{
		UserID:      attempt.UserID,
		EventID:     attempt.EventID,
		AmountCents: attempt.AmountCents,
		Currency:    attempt.Currency,
		Method:      string(attempt.Method),
		Reference:   attempt.Reference,
	}
	if attempt.PromoID != 0 {
		id := attempt.PromoID
		t.PromoID = &id
	}

	ticketID, err := h.Tickets.Grant(ctx, t)
	if errors.Is(err, repository.ErrConflict) {
		// already entitled; nothing more to record
		h.Refresh.Bump()
		return
	}
	if err != nil {
		log.Printf("payments: entitlement grant failed for ref=%s: %v", attempt.Reference, err)
		return
	}

	title := ""
	if ev, err := h.Events.GetByID(ctx, attempt.UserID, attempt.EventID); err == nil {
		title = ev.Title
	}
	if h.Publish == nil {
		h.Refresh.Bump()
		return
	}
	if err := h.Publish(ctx, q.PaymentApprovedEvent{
		TicketID:    ticketID,
		UserID:      attempt.UserID,
		EventID:     attempt.EventID,
		EventTitle:  title,
		Method:      string(attempt.Method),
		AmountCents: attempt.AmountCents,
		Currency:    attempt.Currency,
		PromoID:     attempt.PromoID,
		Reference:   attempt.Reference,
		ApprovedAt:  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("payments: publish payment.approved failed for ref=%s: %v", attempt.Reference, err)
	}
	h.Refresh.Bump()
}
