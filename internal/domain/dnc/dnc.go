// Package dnc provides the domain model for scrubbing phone lists against Do Not Call (DNC)
// registries: the per-line PhoneRecord, the Verdict produced by a lookup source, the
// CheckSession a driver walks, and the Events it emits while doing so.
package dnc

// This file serves as the main entry point for the DNC domain.
// All core types are defined in their respective files:
// - record.go: PhoneRecord and list intake
// - verdict.go: Verdict and lookup sources
// - session.go: CheckSession run state
// - event.go: progress and terminal events
