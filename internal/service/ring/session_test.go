package ring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// fakeSignaler records signal lifecycle calls.
type fakeSignaler struct {
	starts   int
	stops    int
	startErr error
}

func (s *fakeSignaler) Start(context.Context) error {
	s.starts++

	return s.startErr
}

func (s *fakeSignaler) Stop() {
	s.stops++
}

// fakeNotifier records the visible ringing state.
type fakeNotifier struct {
	shown  int
	hidden int
	label  string
	time   string
}

func (n *fakeNotifier) ShowRinging(_ context.Context, label, timeOfDay string) {
	n.shown++
	n.label = label
	n.time = timeOfDay
}

func (n *fakeNotifier) HideRinging(context.Context) {
	n.hidden++
}

// ringingManager returns a manager with an active session for "07:00".
func ringingManager(t *testing.T) (*Manager, *fakeSignaler, *fakeNotifier) {
	t.Helper()

	signal := new(fakeSignaler)
	notifier := new(fakeNotifier)
	m := NewManager(signal, notifier)

	fired := &alarm.Alarm{
		ID:      "a1",
		Time:    "07:00",
		Label:   "Wake up",
		Enabled: true,
		Repeat:  alarm.RepeatDaily,
	}

	require.True(t, m.Trigger(context.Background(), fired))

	return m, signal, notifier
}

// TestTrigger verifies the Idle to Ringing transition.
func TestTrigger(t *testing.T) {
	t.Parallel()

	m, signal, notifier := ringingManager(t)

	require.Equal(t, 1, signal.starts)
	require.Equal(t, 1, notifier.shown)
	require.Equal(t, "Wake up", notifier.label)
	require.Equal(t, "07:00", notifier.time)
	require.NotNil(t, m.Active())
	require.Equal(t, "a1", m.Active().ID)
}

// TestTrigger_Coalesces ensures a second fire does not interrupt or
// queue behind the active session.
func TestTrigger_Coalesces(t *testing.T) {
	t.Parallel()

	m, signal, notifier := ringingManager(t)

	second := &alarm.Alarm{ID: "a2", Time: "07:00", Repeat: alarm.RepeatOnce}
	require.False(t, m.Trigger(context.Background(), second))

	require.Equal(t, 1, signal.starts)
	require.Equal(t, 1, notifier.shown)
	require.Equal(t, "a1", m.Active().ID)
}

// TestTrigger_EmptyLabel ensures the default label is presented.
func TestTrigger_EmptyLabel(t *testing.T) {
	t.Parallel()

	notifier := new(fakeNotifier)
	m := NewManager(new(fakeSignaler), notifier)

	require.True(t, m.Trigger(context.Background(), &alarm.Alarm{ID: "a1", Time: "07:00"}))
	require.Equal(t, alarm.DefaultLabel, notifier.label)
}

// TestTrigger_SignalFailure verifies the notification still shows when
// the signal cannot start, and teardown still works.
func TestTrigger_SignalFailure(t *testing.T) {
	t.Parallel()

	signal := &fakeSignaler{startErr: errors.New("audio blocked")}
	notifier := new(fakeNotifier)
	m := NewManager(signal, notifier)

	require.True(t, m.Trigger(context.Background(), &alarm.Alarm{ID: "a1", Time: "07:00"}))
	require.Equal(t, 1, notifier.shown)
	require.NotNil(t, m.Active())

	require.True(t, m.Dismiss(context.Background()))
	require.Equal(t, 1, signal.stops)
	require.Nil(t, m.Active())
}

// TestDismiss verifies teardown and idempotency.
func TestDismiss(t *testing.T) {
	t.Parallel()

	m, signal, notifier := ringingManager(t)

	require.True(t, m.Dismiss(context.Background()))
	require.Equal(t, 1, signal.stops)
	require.Equal(t, 1, notifier.hidden)
	require.Nil(t, m.Active())

	// No session: no-op, signal not stopped again.
	require.False(t, m.Dismiss(context.Background()))
	require.Equal(t, 1, signal.stops)
}

// TestSnooze verifies the derived alarm and teardown.
func TestSnooze(t *testing.T) {
	t.Parallel()

	m, signal, notifier := ringingManager(t)

	now := time.Date(2024, time.March, 10, 7, 0, 30, 0, time.Local)
	snoozed := m.Snooze(context.Background(), now)

	require.NotNil(t, snoozed)
	require.Equal(t, "07:05", snoozed.Time)
	require.Equal(t, "Wake up", snoozed.Label)
	require.Equal(t, alarm.RepeatOnce, snoozed.Repeat)
	require.True(t, snoozed.Enabled)
	require.Empty(t, snoozed.LastTriggered)
	require.NotEqual(t, "a1", snoozed.ID)

	require.Equal(t, 1, signal.stops)
	require.Equal(t, 1, notifier.hidden)
	require.Nil(t, m.Active())

	// No session: no-op.
	require.Nil(t, m.Snooze(context.Background(), now))
}

// TestSnooze_DayRollover checks the 23:58 to 00:03 boundary.
func TestSnooze_DayRollover(t *testing.T) {
	t.Parallel()

	m, _, _ := ringingManager(t)

	now := time.Date(2024, time.March, 10, 23, 58, 0, 0, time.Local)
	snoozed := m.Snooze(context.Background(), now)

	require.NotNil(t, snoozed)
	require.Equal(t, "00:03", snoozed.Time)
}
