// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Time
// ═══════════════════════════════════════════════════════════════════════════

// Clock supplies the current instant. Pure domain functions take an explicit
// time; services hold a Clock so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// ═══════════════════════════════════════════════════════════════════════════
// Identifiers
// ═══════════════════════════════════════════════════════════════════════════

// IDGenerator produces unique identifiers for new aggregates.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to the IDGenerator interface.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string { return f() }

// EntityID is an opaque, non-empty identifier for a student, mentor or course.
type EntityID string

// IsEmpty reports whether the ID is blank.
func (id EntityID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// String returns the string representation.
func (id EntityID) String() string {
	return string(id)
}

// NewEntityID trims the raw value and rejects blanks.
func NewEntityID(domain, raw string) (EntityID, error) {
	id := EntityID(strings.TrimSpace(raw))
	if id.IsEmpty() {
		return "", NewDomainError(domain, "NewEntityID", ErrInvalidID, "identifier cannot be empty")
	}
	return id, nil
}
