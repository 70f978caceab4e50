// Package alarms persists the alarm collection in a local key-value store.
//
// Two interchangeable backends are provided: a JSON document file and a
// sqlite kv table. Both keep the serialized alarm slice under StorageKey
// and treat an absent or malformed payload as an empty collection, never
// as a fatal condition.
package alarms

import (
	"context"
	"encoding/json"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// StorageKey is the fixed namespace key the alarm collection lives under.
const StorageKey = "my_clock_alarms_v1"

// Repository defines persistence operations for the alarm collection.
type Repository interface {
	// Load returns the persisted alarms. Absent or corrupt state loads
	// as an empty collection and a nil error.
	Load(ctx context.Context) ([]*alarm.Alarm, error)
	// Save replaces the persisted collection.
	Save(ctx context.Context, alarms []*alarm.Alarm) error
}

// decodeAlarms unmarshals a persisted payload, degrading malformed
// content to an empty collection.
func decodeAlarms(ctx context.Context, data []byte) []*alarm.Alarm {
	if len(data) == 0 {
		return nil
	}

	var records []*alarm.Alarm
	if err := json.Unmarshal(data, &records); err != nil {
		logger.WarnKV(ctx, "Ignoring malformed alarm state", "error", err)

		return nil
	}

	return records
}
