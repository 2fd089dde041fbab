package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCardAttempt(t *testing.T) *Attempt {
	t.Helper()
	a := NewAttempt("ref-1", 7, 42, MethodCard, 2500, "USD", "", 0)
	require.NoError(t, a.BeginSubmit())
	require.NoError(t, a.AwaitCardRedirect("https://pay.example/checkout/ref-1"))
	return a
}

func TestAttempt_CardApproveMarker(t *testing.T) {
	a := newCardAttempt(t)
	st, terminal := a.ObserveNavigation("https://pay.example/checkout/ref-1/approve?tx=9")
	assert.True(t, terminal)
	assert.Equal(t, StateApproved, st)
}

func TestAttempt_CardCancelAndDeclineMarkers(t *testing.T) {
	a := newCardAttempt(t)
	st, terminal := a.ObserveNavigation("https://pay.example/checkout/ref-1/cancel")
	assert.True(t, terminal)
	assert.Equal(t, StateCancelled, st)

	b := newCardAttempt(t)
	st, terminal = b.ObserveNavigation("https://pay.example/checkout/ref-1/decline?code=51")
	assert.True(t, terminal)
	assert.Equal(t, StateDeclined, st)
}

func TestAttempt_FirstMarkerWins(t *testing.T) {
	a := newCardAttempt(t)
	st, terminal := a.ObserveNavigation("https://pay.example/checkout/ref-1/decline")
	require.True(t, terminal)
	require.Equal(t, StateDeclined, st)

	// A later approval navigation must not resurrect the attempt.
	st, terminal = a.ObserveNavigation("https://pay.example/checkout/ref-1/approve")
	assert.False(t, terminal)
	assert.Equal(t, StateDeclined, st)
}

func TestAttempt_NonMarkerNavigationIgnored(t *testing.T) {
	a := newCardAttempt(t)
	st, terminal := a.ObserveNavigation("https://pay.example/checkout/ref-1/3ds-challenge")
	assert.False(t, terminal)
	assert.Equal(t, StateCardRedirectPending, st)
}

func TestAttempt_Dismiss(t *testing.T) {
	a := newCardAttempt(t)
	assert.True(t, a.Dismiss())
	assert.Equal(t, StateCancelled, a.State())
	// Dismissing twice is a no-op.
	assert.False(t, a.Dismiss())
}

func TestAttempt_DoubleSubmitCoalesced(t *testing.T) {
	a := NewAttempt("ref-2", 7, 42, MethodCard, 2500, "USD", "", 0)
	require.NoError(t, a.BeginSubmit())
	assert.Error(t, a.BeginSubmit())
}

func TestAttempt_FailedSubmitReturnsToIdle(t *testing.T) {
	a := NewAttempt("ref-3", 7, 42, MethodCard, 2500, "USD", "", 0)
	require.NoError(t, a.BeginSubmit())
	a.FailSubmit()
	assert.Equal(t, StateIdle, a.State())
	// The viewer may retry after a failure.
	assert.NoError(t, a.BeginSubmit())
}

func TestAttempt_MobileMoneyTimeout(t *testing.T) {
	a := NewAttempt("ref-4", 7, 42, MethodMobileMoney, 5000, "USD", "243810000001", 0)
	require.NoError(t, a.BeginSubmit())

	fired := make(chan struct{})
	require.NoError(t, a.AwaitMobileMoney(20*time.Millisecond, func() { close(fired) }))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timeout callback never fired")
	}
	assert.Equal(t, StateTimedOut, a.State())

	// A confirmation arriving after timeout is ignored.
	assert.False(t, a.ConfirmMobileMoney())
	assert.Equal(t, StateTimedOut, a.State())
}

func TestAttempt_MobileMoneyConfirmedBeforeTimeout(t *testing.T) {
	a := NewAttempt("ref-5", 7, 42, MethodMobileMoney, 5000, "USD", "243810000001", 0)
	require.NoError(t, a.BeginSubmit())
	require.NoError(t, a.AwaitMobileMoney(time.Hour, nil))

	assert.True(t, a.ConfirmMobileMoney())
	assert.Equal(t, StateApproved, a.State())
}

func TestValidateSubmission_CardMinimum(t *testing.T) {
	err := ValidateSubmission(MethodCard, 199, "USD", "")
	assert.ErrorIs(t, err, ErrRejectedClientSide)

	assert.NoError(t, ValidateSubmission(MethodCard, 200, "USD", ""))
	// The minimum applies to USD only.
	assert.NoError(t, ValidateSubmission(MethodCard, 100, "CDF", ""))
}

func TestValidateSubmission_MobileMoneyPhone(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"243810000001", true},
		{"", false},
		{"0810000001", false},   // missing country prefix
		{"+24381000000", false}, // plus sign not accepted
		{"2438100000", false},   // too short
		{"24381000000123", false},
		{"24381000000a", false},
	}
	for _, tc := range cases {
		err := ValidateSubmission(MethodMobileMoney, 5000, "USD", tc.phone)
		if tc.ok {
			assert.NoError(t, err, "phone %q", tc.phone)
		} else {
			assert.ErrorIs(t, err, ErrRejectedClientSide, "phone %q", tc.phone)
		}
	}
}

func TestStore_PutIfNoPendingIsExclusive(t *testing.T) {
	s := NewStore()
	a := NewAttempt("ref-7", 7, 42, MethodCard, 2500, "USD", "", 0)
	require.NoError(t, a.BeginSubmit())
	require.True(t, s.PutIfNoPending(a))

	// A second submission for the same viewer and event is refused while
	// the first is still in flight.
	b := NewAttempt("ref-8", 7, 42, MethodCard, 2500, "USD", "", 0)
	require.NoError(t, b.BeginSubmit())
	assert.False(t, s.PutIfNoPending(b))
	assert.Nil(t, s.Get("ref-8"))

	// A different event is unaffected.
	c := NewAttempt("ref-9", 8, 42, MethodCard, 2500, "USD", "", 0)
	require.NoError(t, c.BeginSubmit())
	assert.True(t, s.PutIfNoPending(c))

	// Once the first attempt is terminal the viewer may submit again.
	require.NoError(t, a.AwaitCardRedirect("https://pay.example/checkout/ref-7"))
	a.ObserveNavigation("https://pay.example/checkout/ref-7/cancel")
	assert.True(t, s.PutIfNoPending(b))
}

func TestStore_PendingForViewer(t *testing.T) {
	s := NewStore()
	a := NewAttempt("ref-6", 7, 42, MethodCard, 2500, "USD", "", 0)
	require.NoError(t, a.BeginSubmit())
	s.Put(a)

	assert.True(t, s.PendingForViewer(42, 7))
	assert.False(t, s.PendingForViewer(42, 8))
	assert.False(t, s.PendingForViewer(43, 7))

	require.NoError(t, a.AwaitCardRedirect("https://pay.example/checkout/ref-6"))
	a.ObserveNavigation("https://pay.example/checkout/ref-6/approve")
	assert.False(t, s.PendingForViewer(42, 7))

	s.Remove("ref-6")
	assert.Nil(t, s.Get("ref-6"))
}
