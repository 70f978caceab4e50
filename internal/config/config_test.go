package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks backend validation and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Defaults are filled in for an empty config.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, BackendFile, cfg.Backend)
	require.Equal(t, DefaultStateFilename, cfg.StateFile)
	require.Equal(t, DefaultTickInterval, cfg.TickInterval)
	require.InDelta(t, DefaultToneFrequency, cfg.ToneFrequency, 0.01)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)

	// Unknown backend.
	cfg = &Config{Backend: "redis"}
	require.Error(t, Validate(cfg))

	// Negative tick interval.
	cfg = &Config{TickInterval: -time.Second}
	require.Error(t, Validate(cfg))

	// Nil config.
	require.Error(t, Validate(nil))
}

// TestLoad_MissingFile ensures a missing settings file yields defaults.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		Backend:       BackendSQLite,
		DatabaseFile:  "clock.db",
		TickInterval:  250 * time.Millisecond,
		ToneFrequency: 440,
		LogLevel:      "debug",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Backend, loaded.Backend)
	require.Equal(t, cfg.DatabaseFile, loaded.DatabaseFile)
	require.Equal(t, cfg.TickInterval, loaded.TickInterval)
	require.InDelta(t, cfg.ToneFrequency, loaded.ToneFrequency, 0.01)
	require.Equal(t, cfg.LogLevel, loaded.LogLevel)
}
