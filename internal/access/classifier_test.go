package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivustream/streampass/internal/model"
)

// fixed "now": a Wednesday afternoon in a non-UTC zone so calendar-day
// logic is exercised against the viewer's zone, not the storage zone.
var now = time.Date(2025, 3, 12, 15, 0, 0, 0, time.FixedZone("CAT", 2*60*60))

func TestClassifyPhase_FinishedAlwaysWins(t *testing.T) {
	dates := []time.Time{
		now.Add(-48 * time.Hour),
		now.Add(-1 * time.Hour),
		now.Add(48 * time.Hour), // future date must still be past
	}
	for _, d := range dates {
		ev := model.Event{Date: d, IsFinished: true, IsLive: true, IsStarted: true}
		phase, err := ClassifyPhase(ev, now)
		require.NoError(t, err)
		assert.Equal(t, PhasePast, phase, "date %s", d)
	}
}

func TestClassifyPhase_PastDay(t *testing.T) {
	ev := model.Event{Date: now.Add(-26 * time.Hour)} // yesterday
	phase, err := ClassifyPhase(ev, now)
	require.NoError(t, err)
	assert.Equal(t, PhasePast, phase)
}

func TestClassifyPhase_FutureDay(t *testing.T) {
	ev := model.Event{Date: now.Add(30 * time.Hour), IsLive: true} // tomorrow; flag ignored across days
	phase, err := ClassifyPhase(ev, now)
	require.NoError(t, err)
	assert.Equal(t, PhaseUpcoming, phase)
}

func TestClassifyPhase_SameDayNotYetStarted(t *testing.T) {
	ev := model.Event{Date: now.Add(3 * time.Hour), StreamLink: "https://cdn.example/s/1.m3u8"}
	phase, err := ClassifyPhase(ev, now)
	require.NoError(t, err)
	assert.Equal(t, PhaseUpcoming, phase)
}

func TestClassifyPhase_SameDayStartedFlag(t *testing.T) {
	ev := model.Event{Date: now.Add(-2 * time.Hour), IsStarted: true}
	phase, err := ClassifyPhase(ev, now)
	require.NoError(t, err)
	assert.Equal(t, PhaseLive, phase)
}

func TestClassifyPhase_SameDayLinkHeuristic(t *testing.T) {
	// Time reached, no broadcaster flags, but a stream link is attached:
	// the live player treats this as watchable, so the phase is live.
	ev := model.Event{Date: now.Add(-30 * time.Minute), StreamLink: "https://cdn.example/s/2.m3u8"}
	phase, err := ClassifyPhase(ev, now)
	require.NoError(t, err)
	assert.Equal(t, PhaseLive, phase)
}

func TestClassifyPhase_SameDayAmbiguousDefaultsUpcoming(t *testing.T) {
	// Time reached but no flags and no link: do not guess live.
	ev := model.Event{Date: now.Add(-30 * time.Minute)}
	phase, err := ClassifyPhase(ev, now)
	require.NoError(t, err)
	assert.Equal(t, PhaseUpcoming, phase)
}

func TestClassifyPhase_ZeroDate(t *testing.T) {
	_, err := ClassifyPhase(model.Event{}, now)
	assert.ErrorIs(t, err, ErrInvalidEventData)
}

func TestDecideAction_EntitlementGatePrecedesPhase(t *testing.T) {
	ev := model.Event{StreamLink: "https://cdn.example/s/3.m3u8"}
	for _, phase := range []Phase{PhaseLive, PhaseUpcoming, PhasePast} {
		assert.Equal(t, ActionPayToUnlock, DecideAction(ev, phase, false), "phase %s", phase)
	}
}

func TestDecideAction_EntitledPerPhase(t *testing.T) {
	ev := model.Event{StreamLink: "https://cdn.example/s/4.m3u8"}
	assert.Equal(t, ActionWatchNow, DecideAction(ev, PhaseLive, true))
	assert.Equal(t, ActionViewReplay, DecideAction(ev, PhasePast, true))
	assert.Equal(t, ActionWait, DecideAction(ev, PhaseUpcoming, true))
}

func TestDecideAction_NoStreamLinkIsUnavailable(t *testing.T) {
	ev := model.Event{}
	for _, phase := range []Phase{PhaseLive, PhaseUpcoming, PhasePast} {
		assert.Equal(t, ActionUnavailable, DecideAction(ev, phase, true), "phase %s", phase)
	}
}

// End-to-end scenarios mirrored from the product behaviour.

func TestClassify_TomorrowUnpaid(t *testing.T) {
	ev := model.Event{Date: now.Add(29 * time.Hour)} // tomorrow 20:00
	dec, err := Classify(ev, now, false)
	require.NoError(t, err)
	assert.Equal(t, PhaseUpcoming, dec.Phase)
	assert.Equal(t, ActionPayToUnlock, dec.Action)
}

func TestClassify_TodayStartedEntitled(t *testing.T) {
	ev := model.Event{
		Date:       now.Add(-5 * time.Hour), // today 10:00, already passed
		IsStarted:  true,
		StreamLink: "https://cdn.example/s/5.m3u8",
	}
	dec, err := Classify(ev, now, true)
	require.NoError(t, err)
	assert.Equal(t, PhaseLive, dec.Phase)
	assert.Equal(t, ActionWatchNow, dec.Action)
}

func TestClassify_YesterdayFinishedEntitled(t *testing.T) {
	ev := model.Event{
		Date:       now.Add(-26 * time.Hour),
		IsFinished: true,
		StreamLink: "https://cdn.example/s/6.m3u8",
	}
	dec, err := Classify(ev, now, true)
	require.NoError(t, err)
	assert.Equal(t, PhasePast, dec.Phase)
	assert.Equal(t, ActionViewReplay, dec.Action)
}

func TestClassify_UTCDateAgainstLocalNow(t *testing.T) {
	// An event stored in UTC that falls on "tomorrow" in UTC but "today"
	// in the viewer's zone must be classified against the viewer's day.
	local := time.FixedZone("UTC+9", 9*60*60)
	viewerNow := time.Date(2025, 3, 12, 23, 30, 0, 0, local)
	ev := model.Event{Date: time.Date(2025, 3, 12, 13, 0, 0, 0, time.UTC), IsStarted: true} // 22:00 local, same day
	phase, err := ClassifyPhase(ev, viewerNow)
	require.NoError(t, err)
	assert.Equal(t, PhaseLive, phase)
}
