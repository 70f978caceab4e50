package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects where the alarm collection is persisted.
type Backend string

const (
	// BackendFile stores the collection in a JSON document file.
	BackendFile Backend = "file"
	// BackendSQLite stores the collection in a sqlite kv table.
	BackendSQLite Backend = "sqlite"
)

// Config holds settings for the alarm clock shell and engine.
type Config struct {
	// Backend is the persistence backend for the alarm collection.
	Backend Backend `yaml:"backend"`
	// StateFile is the path to the JSON state file (file backend).
	StateFile string `yaml:"state_file"`
	// DatabaseFile is the path to the sqlite database (sqlite backend).
	DatabaseFile string `yaml:"database_file"`
	// TickInterval is the scheduler polling cadence. One second is
	// sufficient for minute-resolution alarms; finer only lowers latency.
	TickInterval time.Duration `yaml:"tick_interval"`
	// ToneFrequency is the ring tone frequency in hertz.
	ToneFrequency float64 `yaml:"tone_frequency"`
	// LogLevel is the minimum level for log output.
	LogLevel string `yaml:"log_level"`
	// LogFile enables rotating file logging when non-empty.
	LogFile string `yaml:"log_file"`
}

const (
	// DefaultConfigFilename is the default filename for clock settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultStateFilename is the default filename for the alarm state JSON.
	DefaultStateFilename = "alarm-clock-state.json"

	// DefaultDatabaseFilename is the default sqlite database filename.
	DefaultDatabaseFilename = "alarm-clock.db"

	// DefaultTickInterval is the default scheduler polling cadence.
	DefaultTickInterval = time.Second

	// DefaultToneFrequency is the default ring tone frequency in hertz.
	DefaultToneFrequency = 880

	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for state and config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned for a backend other than file or sqlite.
	errUnknownBackend = errors.New("backend must be file or sqlite")
	// errNegativeTick is returned when the tick interval is negative.
	errNegativeTick = errors.New("tick interval must be positive")
)

// Default returns the configuration used when no settings file exists.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file yields the defaults so the clock runs out of the box.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for
// unset fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if cfg.Backend != BackendFile && cfg.Backend != BackendSQLite {
		return fmt.Errorf("invalid backend %q: %w", cfg.Backend, errUnknownBackend)
	}

	if cfg.TickInterval < 0 {
		return errNegativeTick
	}

	return nil
}

// applyDefaults fills zero-valued fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = DefaultDatabaseFilename
	}

	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.ToneFrequency <= 0 {
		cfg.ToneFrequency = DefaultToneFrequency
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}
