package values

import (
	"fmt"
	"strings"
)

// Severity represents how serious a rule failure is. It enforces the
// severity vocabulary and orders levels so runs can be filtered by a
// minimum severity.
type Severity struct {
	value SeverityLevel
}

// SeverityLevel is the numeric rank backing a Severity
type SeverityLevel int

const (
	SeverityUnknown  SeverityLevel = 0
	SeverityLow      SeverityLevel = 1
	SeverityMedium   SeverityLevel = 2
	SeverityHigh     SeverityLevel = 3
	SeverityCritical SeverityLevel = 4
)

// Predefined severity values
var (
	SevUnknown  = Severity{SeverityUnknown}
	SevLow      = Severity{SeverityLow}
	SevMedium   = Severity{SeverityMedium}
	SevHigh     = Severity{SeverityHigh}
	SevCritical = Severity{SeverityCritical}
)

// NewSeverity creates a Severity from string
func NewSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "low":
		return SevLow, nil
	case "medium":
		return SevMedium, nil
	case "high":
		return SevHigh, nil
	case "critical":
		return SevCritical, nil
	case "":
		return SevUnknown, nil
	default:
		return Severity{}, fmt.Errorf("invalid severity: %s", s)
	}
}

// String returns the string representation
func (s Severity) String() string {
	switch s.value {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return ""
	}
}

// Level returns the numeric severity level (for ordering)
func (s Severity) Level() int {
	return int(s.value)
}

// IsHigherThan returns true if this severity is higher than the other
func (s Severity) IsHigherThan(other Severity) bool {
	return s.value > other.value
}

// IsHigherOrEqual returns true if this severity is higher or equal to the other
func (s Severity) IsHigherOrEqual(other Severity) bool {
	return s.value >= other.value
}

// Equals checks if two severities are equal
func (s Severity) Equals(other Severity) bool {
	return s.value == other.value
}
