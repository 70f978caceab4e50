// Package ring owns the "currently ringing" session: at most one alarm
// notifies the user at a time, driving the audio signal and the
// notification surface until it is dismissed or snoozed.
package ring

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Signaler produces the repeating audible pattern while a session is
// active. Stop must be safe to call multiple times.
type Signaler interface {
	Start(ctx context.Context) error
	Stop()
}

// Notifier shows and hides the ringing indicator with the alarm's label
// and time, and is expected to expose dismiss/snooze affordances that
// map onto Manager.Dismiss and Manager.Snooze.
type Notifier interface {
	ShowRinging(ctx context.Context, label, timeOfDay string)
	HideRinging(ctx context.Context)
}

// Manager is the ring session state machine. It is Idle until Trigger
// starts a session and returns to Idle via Dismiss or Snooze.
type Manager struct {
	// signal drives the audible pattern.
	signal Signaler
	// notifier drives the visual ringing indicator.
	notifier Notifier

	// mu guards active.
	mu sync.Mutex
	// active is the currently ringing alarm, nil while idle.
	active *alarm.Alarm
}

// NewManager creates an idle ring session manager.
func NewManager(signal Signaler, notifier Notifier) *Manager {
	return &Manager{
		signal:   signal,
		notifier: notifier,
	}
}

// Trigger starts a session for the given alarm. If a session is already
// active the new fire is coalesced: the call reports false and the
// active session is left untouched. The notification is shown even when
// the signal fails to start; missing sound never blocks the session.
func (m *Manager) Trigger(ctx context.Context, a *alarm.Alarm) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		logger.InfoKV(ctx, "Alarm fired while another is ringing, not interrupting",
			"alarm_id", a.ID, "ringing_id", m.active.ID)

		return false
	}

	m.active = a.Clone()
	m.notifier.ShowRinging(ctx, a.DisplayLabel(), a.Time)

	if err := m.signal.Start(ctx); err != nil {
		logger.WarnKV(ctx, "Ring signal failed to start", "alarm_id", a.ID, "error", err)
	}

	return true
}

// Active returns a copy of the currently ringing alarm, or nil while idle.
func (m *Manager) Active() *alarm.Alarm {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.active.Clone()
}

// Dismiss ends the active session: the signal stops immediately and the
// indicator is hidden. Dismissing with no active session is a no-op and
// reports false.
func (m *Manager) Dismiss(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return false
	}

	logger.InfoKV(ctx, "Alarm dismissed", "alarm_id", m.active.ID)
	m.teardown(ctx)

	return true
}

// Snooze ends the active session like Dismiss and returns the derived
// one-shot alarm scheduled alarm.SnoozeDelay after now. Snoozing with no
// active session is a no-op and returns nil; the caller is responsible
// for persisting the returned alarm.
func (m *Manager) Snooze(ctx context.Context, now time.Time) *alarm.Alarm {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil
	}

	snoozed := m.active.Snoozed(now)
	logger.InfoKV(ctx, "Alarm snoozed", "alarm_id", m.active.ID, "until", snoozed.Time)
	m.teardown(ctx)

	return snoozed
}

// teardown stops the signal and clears the session. Callers hold mu.
func (m *Manager) teardown(ctx context.Context) {
	m.signal.Stop()
	m.notifier.HideRinging(ctx)
	m.active = nil
}
