// Package alarm contains the core domain model of the clock: the persisted
// Alarm record with its repeat policy and minute-resolution time keys,
// validation, snooze derivation, and the deterministic collection order.
package alarm
