package alarm

import (
	"errors"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Repeat describes how often an alarm fires.
type Repeat string

const (
	// RepeatOnce disables the alarm automatically after it fires.
	RepeatOnce Repeat = "once"
	// RepeatDaily keeps the alarm enabled so it fires every day.
	RepeatDaily Repeat = "daily"
)

const (
	// DefaultLabel is shown when the user left the label empty.
	DefaultLabel = "Alarm"
	// SnoozedLabel is used for snooze-derived alarms without an original label.
	SnoozedLabel = "Snoozed alarm"
	// QuickLabel is the prefilled label for quick alarms.
	QuickLabel = "Quick alarm"

	// SnoozeDelay is how far into the future a snoozed alarm is scheduled.
	SnoozeDelay = 5 * time.Minute
	// QuickDelay is how far into the future a quick alarm is scheduled.
	QuickDelay = time.Minute

	// MinuteLayout is the time-of-day layout used for Time and LastTriggered.
	MinuteLayout = "15:04"
)

var (
	// ErrInvalidTime is returned when the alarm time is not a zero-padded HH:MM string.
	ErrInvalidTime = errors.New("alarm time must be a zero-padded HH:MM string")
	// ErrInvalidRepeat is returned when the repeat policy is neither once nor daily.
	ErrInvalidRepeat = errors.New("alarm repeat must be once or daily")
)

// minutePattern matches a zero-padded 24-hour time-of-day string.
var minutePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Alarm is a persisted alarm record. Time and LastTriggered are
// minute-resolution time-of-day strings ("HH:MM", 24-hour, zero-padded).
type Alarm struct {
	// ID is a stable opaque identity assigned at creation, never reused.
	ID string `json:"id"`
	// Time is the scheduled fire time.
	Time string `json:"time"`
	// Label is display text; empty means DefaultLabel.
	Label string `json:"label"`
	// Enabled reports whether the alarm participates in evaluation.
	Enabled bool `json:"enabled"`
	// Repeat is the repeat policy.
	Repeat Repeat `json:"repeat"`
	// LastTriggered is the minute at which the alarm last fired,
	// empty if it has not fired since creation or re-enabling.
	LastTriggered string `json:"lastTriggered,omitempty"`
}

// New creates an enabled alarm with a fresh id after validating inputs.
func New(timeOfDay, label string, repeat Repeat) (*Alarm, error) {
	if !ValidTime(timeOfDay) {
		return nil, ErrInvalidTime
	}

	if repeat != RepeatOnce && repeat != RepeatDaily {
		return nil, ErrInvalidRepeat
	}

	return &Alarm{
		ID:      uuid.NewString(),
		Time:    timeOfDay,
		Label:   label,
		Enabled: true,
		Repeat:  repeat,
	}, nil
}

// ValidTime reports whether s is a zero-padded 24-hour "HH:MM" string.
func ValidTime(s string) bool {
	return minutePattern.MatchString(s)
}

// Minute renders t as the minute-resolution time-of-day string
// alarms are compared against.
func Minute(t time.Time) string {
	return t.Format(MinuteLayout)
}

// Clone returns a copy of the alarm to avoid leaking internal references.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// DisplayLabel returns the label to present, falling back to DefaultLabel.
func (a *Alarm) DisplayLabel() string {
	if a.Label == "" {
		return DefaultLabel
	}

	return a.Label
}

// Snoozed derives the one-shot alarm created when this alarm is snoozed
// at the given moment. The new alarm fires SnoozeDelay later, rolling over
// hour and day boundaries, carries the original label (or SnoozedLabel),
// a fresh id, and no trigger marker.
func (a *Alarm) Snoozed(now time.Time) *Alarm {
	label := a.Label
	if label == "" {
		label = SnoozedLabel
	}

	return &Alarm{
		ID:      uuid.NewString(),
		Time:    Minute(now.Add(SnoozeDelay)),
		Label:   label,
		Enabled: true,
		Repeat:  RepeatOnce,
	}
}

// Sort orders alarms ascending by time, then by id, in place.
// The order is deterministic so evaluation passes behave identically
// across runs given identical persisted state.
func Sort(alarms []*Alarm) {
	sort.SliceStable(alarms, func(i, j int) bool {
		if alarms[i].Time != alarms[j].Time {
			return alarms[i].Time < alarms[j].Time
		}

		return alarms[i].ID < alarms[j].ID
	})
}
