// Package values defines the core value types shared across uicheck:
// rule identifiers, severities, and outcome statuses.
package values

import "fmt"

// Status represents the terminal state of a rule outcome.
type Status string

const (
	// StatusPass indicates the rule and all of its descendants passed
	StatusPass Status = "pass"
	// StatusFail indicates the rule failed (cardinality violation, failing
	// assertion, or a configuration error isolated to its subtree)
	StatusFail Status = "fail"
	// StatusPartialPass indicates the rule itself passed but at least one
	// descendant rule failed
	StatusPartialPass Status = "partial"
	// StatusNotApplicable indicates the rule was not evaluated: zero matches
	// under a zero-tolerant cardinality, a non-passing parent, or a filter
	StatusNotApplicable Status = "not_applicable"
	// StatusCancelled indicates the run was cancelled before the rule ran
	StatusCancelled Status = "cancelled"
)

// Precedence returns the numeric precedence of this status.
// Higher values win when outcomes for the same rule are merged
// across several parent scopes.
//
// Precedence: Fail (4) > Cancelled (3) > PartialPass (2) > Pass (1) > NotApplicable (0)
func (s Status) Precedence() int {
	switch s {
	case StatusFail:
		return 4
	case StatusCancelled:
		return 3
	case StatusPartialPass:
		return 2
	case StatusPass:
		return 1
	case StatusNotApplicable:
		return 0
	default:
		return -1
	}
}

// IsFailure returns true if this status represents a failure.
// PartialPass counts: it implies a failing descendant.
func (s Status) IsFailure() bool {
	return s == StatusFail || s == StatusPartialPass
}

// IsSuccess returns true if this status represents an unqualified pass
func (s Status) IsSuccess() bool {
	return s == StatusPass
}

// Validate returns an error if the status value is invalid
func (s Status) Validate() error {
	switch s {
	case StatusPass, StatusFail, StatusPartialPass, StatusNotApplicable, StatusCancelled:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}

// Merge returns the higher-precedence of two statuses.
func (s Status) Merge(other Status) Status {
	if other.Precedence() > s.Precedence() {
		return other
	}
	return s
}
