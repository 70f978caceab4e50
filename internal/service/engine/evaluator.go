package engine

import "github.com/oshokin/alarm-clock/internal/domain/alarm"

// Decision is the outcome of evaluating one alarm against the current minute.
type Decision int

const (
	// Skip means the alarm must not fire this pass.
	Skip Decision = iota
	// Fire means the alarm's scheduled time matches the current minute
	// and it has not fired within it yet.
	Fire
)

// String renders the decision for logs.
func (d Decision) String() string {
	if d == Fire {
		return "fire"
	}

	return "skip"
}

// Decide is the pure fire/no-fire decision for a single alarm.
//
// An alarm fires when it is enabled, its time equals the current minute,
// and its trigger marker does not already equal that minute. The marker
// check is the duplicate-suppression: the scheduler polls at sub-minute
// cadence, so the same minute string is observed repeatedly.
func Decide(a *alarm.Alarm, nowMinute string) Decision {
	switch {
	case !a.Enabled:
		return Skip
	case a.LastTriggered == nowMinute:
		return Skip
	case a.Time == nowMinute:
		return Fire
	default:
		return Skip
	}
}

// staleMarker reports whether the trigger marker refers to a minute
// other than the current one. The scheduler clears stale markers so a
// daily alarm becomes eligible again once its matched minute has passed,
// in particular at the same time-of-day the next day.
func staleMarker(a *alarm.Alarm, nowMinute string) bool {
	return a.LastTriggered != "" && a.LastTriggered != nowMinute
}
