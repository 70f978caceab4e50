// Package engine contains the alarm scheduling core: a polling loop that
// evaluates every persisted alarm once per tick, fires matching ones into
// the ring session, and serves the user-facing alarm operations.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/ring"
)

// ErrAlarmNotFound is returned when an operation references an unknown alarm id.
var ErrAlarmNotFound = errors.New("alarm not found")

// Engine owns the alarm collection and drives scheduling. A single mutex
// serializes tick passes and user operations, so evaluation, persistence,
// and mutation never interleave.
type Engine struct {
	// repo persists the alarm collection.
	repo alarms.Repository
	// ring is the session manager fired alarms are handed to.
	ring *ring.Manager
	// now supplies the current moment; replaceable in tests.
	now func() time.Time
	// tick is the polling cadence of Run.
	tick time.Duration

	// mu protects alarms.
	mu sync.Mutex
	// alarms is the in-memory collection, kept sorted by (time, id)
	// so evaluation order is deterministic across runs.
	alarms []*alarm.Alarm
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall-clock source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTickInterval replaces the polling cadence used by Run.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tick = d
	}
}

// New creates an engine over the given repository and ring manager and
// loads the persisted collection. A failing load degrades to an empty
// collection; the clock keeps running either way.
func New(ctx context.Context, repository alarms.Repository, ringManager *ring.Manager, opts ...Option) *Engine {
	e := &Engine{
		repo: repository,
		ring: ringManager,
		now:  time.Now,
		tick: config.DefaultTickInterval,
	}

	for _, opt := range opts {
		opt(e)
	}

	loaded, err := repository.Load(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Failed to load alarms, starting empty", "error", err)
	} else {
		e.alarms = loaded
	}

	alarm.Sort(e.alarms)
	logger.InfoKV(ctx, "Alarm engine ready", "alarms", len(e.alarms))

	return e
}

// Run polls until the context is canceled, evaluating all alarms once
// per tick.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runTick(ctx)
		}
	}
}

// runTick executes one evaluation pass. Fired alarms are mutated and
// persisted before the ring transition is invoked, so a crash mid-ring
// cannot leave an alarm able to re-fire for the same minute.
func (e *Engine) runTick(ctx context.Context) {
	nowMinute := alarm.Minute(e.now())

	e.mu.Lock()

	var (
		fired []*alarm.Alarm
		dirty bool
	)

	for _, a := range e.alarms {
		if staleMarker(a, nowMinute) {
			// The matched minute has passed; make the alarm eligible
			// again (daily alarms re-fire a day later through this).
			a.LastTriggered = ""
			dirty = true
		}

		if Decide(a, nowMinute) != Fire {
			continue
		}

		a.LastTriggered = nowMinute
		if a.Repeat == alarm.RepeatOnce {
			a.Enabled = false
		}

		dirty = true

		fired = append(fired, a.Clone())
	}

	if dirty {
		e.persist(ctx)
	}

	e.mu.Unlock()

	// Ring outside the lock: the session's dismiss/snooze affordances
	// call back into the engine.
	for _, a := range fired {
		logger.InfoKV(ctx, "Alarm fired", "alarm_id", a.ID, "time", a.Time, "label", a.DisplayLabel())
		e.ring.Trigger(ctx, a)
	}
}

// AddAlarm validates and persists a new alarm, returning a copy of it.
// Invalid input is rejected before touching the collection.
func (e *Engine) AddAlarm(ctx context.Context, timeOfDay, label string, repeat alarm.Repeat) (*alarm.Alarm, error) {
	created, err := alarm.New(timeOfDay, label, repeat)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.alarms = append(e.alarms, created)
	alarm.Sort(e.alarms)
	e.persist(ctx)

	logger.InfoKV(ctx, "Alarm added", "alarm_id", created.ID, "time", created.Time, "repeat", created.Repeat)

	return created.Clone(), nil
}

// QuickAlarm adds a one-shot alarm for the next minute, the engine's
// rendition of the "quick alarm" prefill.
func (e *Engine) QuickAlarm(ctx context.Context) (*alarm.Alarm, error) {
	return e.AddAlarm(ctx, alarm.Minute(e.now().Add(alarm.QuickDelay)), alarm.QuickLabel, alarm.RepeatOnce)
}

// ToggleAlarm flips the enabled state of the alarm with the given id and
// clears its trigger marker so a re-enabled alarm may fire again at the
// same time-of-day.
func (e *Engine) ToggleAlarm(ctx context.Context, id string) (*alarm.Alarm, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, a := range e.alarms {
		if a.ID != id {
			continue
		}

		a.Enabled = !a.Enabled
		a.LastTriggered = ""
		e.persist(ctx)

		logger.InfoKV(ctx, "Alarm toggled", "alarm_id", a.ID, "enabled", a.Enabled)

		return a.Clone(), nil
	}

	return nil, ErrAlarmNotFound
}

// DeleteAlarm removes the alarm with the given id permanently.
func (e *Engine) DeleteAlarm(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, a := range e.alarms {
		if a.ID != id {
			continue
		}

		e.alarms = append(e.alarms[:i], e.alarms[i+1:]...)
		e.persist(ctx)

		logger.InfoKV(ctx, "Alarm deleted", "alarm_id", id)

		return nil
	}

	return ErrAlarmNotFound
}

// Alarms returns copies of all alarms in deterministic (time, id) order.
func (e *Engine) Alarms() []*alarm.Alarm {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*alarm.Alarm, 0, len(e.alarms))
	for _, a := range e.alarms {
		result = append(result, a.Clone())
	}

	return result
}

// Dismiss ends the active ring session, if any.
func (e *Engine) Dismiss(ctx context.Context) bool {
	return e.ring.Dismiss(ctx)
}

// Snooze ends the active ring session and persists the derived one-shot
// alarm five minutes out. It returns nil when no session is active.
func (e *Engine) Snooze(ctx context.Context) *alarm.Alarm {
	snoozed := e.ring.Snooze(ctx, e.now())
	if snoozed == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.alarms = append(e.alarms, snoozed)
	alarm.Sort(e.alarms)
	e.persist(ctx)

	logger.InfoKV(ctx, "Snooze alarm scheduled", "alarm_id", snoozed.ID, "time", snoozed.Time)

	return snoozed.Clone()
}

// Ringing returns a copy of the currently ringing alarm, or nil.
func (e *Engine) Ringing() *alarm.Alarm {
	return e.ring.Active()
}

// persist saves the collection, logging instead of failing: the
// in-memory state stays authoritative for the current run. Callers hold mu.
func (e *Engine) persist(ctx context.Context) {
	if err := e.repo.Save(ctx, e.alarms); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms", "error", err)
	}
}
