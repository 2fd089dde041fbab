// Package access is the single source of truth for event temporal
// classification and access gating.  Every surface that needs to know
// whether an event is live, upcoming or past, and what the viewer may do
// about it, consumes this package instead of re-deriving booleans from
// raw flags.  All functions are pure: they take an event snapshot, the
// current instant and the viewer's entitlement, and perform no I/O.
package access

import (
	"errors"
	"time"

	"github.com/kivustream/streampass/internal/model"
)

// Phase is the temporal classification of an event.  The string values
// are part of the wire contract consumed by clients.
type Phase string

const (
	PhaseLive     Phase = "live"
	PhaseUpcoming Phase = "upcoming"
	PhasePast     Phase = "past"
)

// Action is what the viewer is permitted to do with an event.  The
// string values are part of the wire contract consumed by clients;
// presentation code may branch only on these.
type Action string

const (
	ActionWatchNow    Action = "watch_now"
	ActionWait        Action = "wait"
	ActionViewReplay  Action = "view_replay"
	ActionPayToUnlock Action = "pay_to_unlock"
	ActionUnavailable Action = "unavailable"
)

// ErrInvalidEventData is returned when an event record is missing its
// start instant.  The classifier refuses to guess a phase for such a
// record; callers must surface the error at the data boundary.
var ErrInvalidEventData = errors.New("invalid event data")

// Decision is the classifier's output for one event at one instant.  It
// is produced fresh on every call and must not be cached across time,
// since "now" advances.
type Decision struct {
	Phase  Phase  `json:"phase"`
	Action Action `json:"action"`
}

// ClassifyPhase determines the temporal phase of an event at the given
// instant.  Precedence: the explicit finished flag always wins, then the
// calendar-day comparison in the viewer's zone (taken from now), then
// the broadcaster flags and the same-day heuristic.
//
// The same-day heuristic: when the scheduled instant has been reached on
// the event's own day, the event counts as live if the broadcaster
// asserted isStarted or isLive, or if a stream link is attached (the
// link's presence is how the live player decides it has something to
// show).  A same-day event whose time has passed but that has neither a
// flag nor a link stays upcoming rather than being guessed live.
func ClassifyPhase(ev model.Event, now time.Time) (Phase, error) {
	if ev.Date.IsZero() {
		return "", ErrInvalidEventData
	}
	if ev.IsFinished {
		return PhasePast, nil
	}

	loc := now.Location()
	eventDay := dayOf(ev.Date.In(loc))
	today := dayOf(now)

	switch {
	case eventDay.Before(today):
		return PhasePast, nil
	case eventDay.After(today):
		return PhaseUpcoming, nil
	}

	// Same calendar day.
	if ev.Date.After(now) {
		return PhaseUpcoming, nil
	}
	if ev.IsStarted || ev.IsLive {
		return PhaseLive, nil
	}
	if ev.HasStreamLink() {
		return PhaseLive, nil
	}
	return PhaseUpcoming, nil
}

// DecideAction derives the permitted viewer action from an event, its
// phase and the viewer's entitlement.  The purchase gate precedes the
// temporal gate: a viewer without entitlement is always asked to pay.
// An entitled viewer looking at an event with no stream link gets
// ActionUnavailable so callers never present a dead watch button.
func DecideAction(ev model.Event, phase Phase, entitled bool) Action {
	if !entitled {
		return ActionPayToUnlock
	}
	if !ev.HasStreamLink() {
		return ActionUnavailable
	}
	switch phase {
	case PhaseLive:
		return ActionWatchNow
	case PhasePast:
		return ActionViewReplay
	default:
		return ActionWait
	}
}

// Classify combines ClassifyPhase and DecideAction into one call.  This
// is the entry point handlers use when rendering an event.
func Classify(ev model.Event, now time.Time, entitled bool) (Decision, error) {
	phase, err := ClassifyPhase(ev, now)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Phase: phase, Action: DecideAction(ev, phase, entitled)}, nil
}

// dayOf truncates an instant to midnight in its own location.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
