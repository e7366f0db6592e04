// Package engine implements the uicheck validation engine. It resolves each
// rule's selector against a snapshot, evaluates assertions under the rule's
// cardinality policy, and aggregates outcomes into a report mirroring the
// manual's rule tree.
package engine

import (
	"time"

	"github.com/uicheck-dev/uicheck/internal/values"
)

// Reason classifies why a rule did not pass.
type Reason string

const (
	// ReasonNoMatch indicates zero matches under a cardinality requiring at least one
	ReasonNoMatch Reason = "no-matching-element"
	// ReasonExpectedExactlyOne indicates more than one match under exactly-one
	ReasonExpectedExactlyOne Reason = "expected-exactly-one"
	// ReasonUnexpectedMatch indicates matches under cardinality none
	ReasonUnexpectedMatch Reason = "unexpected-match"
	// ReasonAssertionFailed indicates one or more elements failed an assertion
	ReasonAssertionFailed Reason = "assertion-failed"
	// ReasonConfigError indicates the rule itself is malformed (bad selector,
	// bad assertion, conflicting cardinality); isolated to the rule's subtree
	ReasonConfigError Reason = "configuration-error"
	// ReasonParentNotPassed indicates the parent rule did not pass, so this
	// rule was never evaluated
	ReasonParentNotPassed Reason = "parent-not-passed"
	// ReasonFiltered indicates the rule was excluded by run filters
	ReasonFiltered Reason = "filtered"
	// ReasonDescendantFailed indicates the rule passed its own policy but a
	// descendant rule failed
	ReasonDescendantFailed Reason = "descendant-failed"
	// ReasonCancelled indicates the run was cancelled before evaluation
	ReasonCancelled Reason = "cancelled"
)

// ElementFailure records the first failing assertion for one matched element.
type ElementFailure struct {
	ElementID string `json:"element_id" yaml:"element_id"`
	Assertion string `json:"assertion" yaml:"assertion"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Outcome is the result of evaluating a single rule. The outcome tree has
// exactly the shape of the manual's rule tree: one outcome per rule, in
// document order.
type Outcome struct {
	RuleID      string           `json:"rule_id" yaml:"rule_id"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Selector    string           `json:"selector" yaml:"selector"`
	Severity    string           `json:"severity,omitempty" yaml:"severity,omitempty"`
	Tags        []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	Status      values.Status    `json:"status" yaml:"status"`
	Reason      Reason           `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message     string           `json:"message,omitempty" yaml:"message,omitempty"`
	Matched     []string         `json:"matched,omitempty" yaml:"matched,omitempty"`
	Failures    []ElementFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Children    []Outcome        `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Summary provides aggregate rule counts for one validation run.
type Summary struct {
	TotalRules     int `json:"total_rules" yaml:"total_rules"`
	PassedRules    int `json:"passed_rules" yaml:"passed_rules"`
	FailedRules    int `json:"failed_rules" yaml:"failed_rules"`
	PartialRules   int `json:"partial_rules" yaml:"partial_rules"`
	SkippedRules   int `json:"skipped_rules" yaml:"skipped_rules"`
	CancelledRules int `json:"cancelled_rules" yaml:"cancelled_rules"`
}

// Report is the complete, structured outcome of one validation run.
// Immutable after Finalize. The outcome tree and summary are deterministic
// functions of (manual, snapshot, config); the run ID and timestamps are run
// metadata and carry no outcome information.
type Report struct {
	RunID         string        `json:"run_id" yaml:"run_id"`
	ReviewedBy    string        `json:"reviewed_by,omitempty" yaml:"reviewed_by,omitempty"`
	ManualName    string        `json:"manual_name" yaml:"manual_name"`
	ManualVersion string        `json:"manual_version" yaml:"manual_version"`
	SnapshotURL   string        `json:"snapshot_url,omitempty" yaml:"snapshot_url,omitempty"`
	SnapshotTitle string        `json:"snapshot_title,omitempty" yaml:"snapshot_title,omitempty"`
	StartTime     time.Time     `json:"start_time" yaml:"start_time"`
	EndTime       time.Time     `json:"end_time" yaml:"end_time"`
	// Duration is kept for in-process consumers; the serialized field is
	// DurationMS because time.Duration marshals as nanoseconds.
	Duration   time.Duration `json:"-" yaml:"-"`
	DurationMS int64         `json:"duration_ms" yaml:"duration_ms"`
	Outcomes      []Outcome     `json:"outcomes" yaml:"outcomes"`
	Summary       Summary       `json:"summary" yaml:"summary"`
}

// Finalize completes the report and calculates the summary.
func (r *Report) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.DurationMS = r.Duration.Milliseconds()
	r.Summary = Summarize(r.Outcomes)
}

// HasFailures returns true if any rule failed or partially passed.
func (r *Report) HasFailures() bool {
	return r.Summary.FailedRules > 0 || r.Summary.PartialRules > 0
}

// WasCancelled returns true if any rule was cancelled.
func (r *Report) WasCancelled() bool {
	return r.Summary.CancelledRules > 0
}

// Summarize counts outcome statuses across the whole tree.
func Summarize(outcomes []Outcome) Summary {
	var s Summary

	var count func(outcomes []Outcome)
	count = func(outcomes []Outcome) {
		for i := range outcomes {
			s.TotalRules++
			switch outcomes[i].Status {
			case values.StatusPass:
				s.PassedRules++
			case values.StatusFail:
				s.FailedRules++
			case values.StatusPartialPass:
				s.PartialRules++
			case values.StatusNotApplicable:
				s.SkippedRules++
			case values.StatusCancelled:
				s.CancelledRules++
			}
			count(outcomes[i].Children)
		}
	}
	count(outcomes)
	return s
}
