// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// PartyID represents a unique identifier of a matching party
// (seeker or candidate; UUID in string form).
type PartyID string

// IsValid checks that the PartyID is non-empty.
func (p PartyID) IsValid() bool {
	return len(strings.TrimSpace(string(p))) > 0
}

// String returns the string representation.
func (p PartyID) String() string {
	return string(p)
}

// IsEmpty reports whether the ID is empty.
func (p PartyID) IsEmpty() bool {
	return len(p) == 0
}

// NewPartyID creates a new PartyID with validation.
func NewPartyID(id string) (PartyID, error) {
	p := PartyID(strings.TrimSpace(id))
	if !p.IsValid() {
		return "", ErrInvalidPartyID
	}
	return p, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Percent represents a 0-100 score with two decimals of precision.
type Percent float64

// IsValid checks that the value is within the 0-100 range.
func (p Percent) IsValid() bool {
	return p >= 0 && p <= 100
}

// Float64 returns the underlying float64 value.
func (p Percent) Float64() float64 {
	return float64(p)
}

// String returns a fixed two-decimal representation.
func (p Percent) String() string {
	return fmt.Sprintf("%.2f", float64(p))
}

// NewPercent creates a Percent with range validation.
func NewPercent(v float64) (Percent, error) {
	p := Percent(v)
	if !p.IsValid() {
		return 0, ErrValueOutOfRange
	}
	return p, nil
}
