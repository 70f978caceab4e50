// Package config defines the alarm clock settings and provides helpers to
// load, validate and save them in YAML format.
//
// Config selects the persistence backend, the scheduler tick cadence, the
// ring tone frequency and the logging setup; every field has a default so
// the clock runs without a settings file.
package config
