package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/uicheck-dev/uicheck/internal/manual"
	"github.com/uicheck-dev/uicheck/internal/snapshot"
	"github.com/uicheck-dev/uicheck/internal/values"
	"golang.org/x/sync/errgroup"
)

// Engine validates manuals against snapshots. It is pure over its immutable
// inputs: the same manual, snapshot, and config always produce the same
// outcome tree.
type Engine struct {
	config Config
}

// New creates an engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{config: cfg}
}

// NewDefault creates an engine with the default configuration.
func NewDefault() *Engine {
	return New(DefaultConfig())
}

// Validate runs every rule in the manual against the snapshot and returns
// the report. Rule-level configuration errors are isolated to their subtree;
// only structurally unusable inputs return an error.
func (e *Engine) Validate(ctx context.Context, m *manual.Manual, snap *snapshot.Snapshot) (*Report, error) {
	if m == nil {
		return nil, fmt.Errorf("manual is nil")
	}
	if snap == nil || snap.Root == nil {
		return nil, &snapshot.Error{Message: "snapshot has no root element"}
	}

	report := &Report{
		RunID:         uuid.NewString(),
		ManualName:    m.Name,
		ManualVersion: m.Version,
		SnapshotURL:   snap.URL,
		SnapshotTitle: snap.Title,
		StartTime:     time.Now(),
	}

	report.Outcomes = e.evaluateRules(ctx, m.Rules, []*snapshot.Element{snap.Root})
	report.Finalize()

	return report, nil
}

// evaluateRules evaluates sibling rules against the given scopes. Outcome
// order always equals rule order; with parallelism enabled each goroutine
// writes to its own index in the pre-allocated slice, so no locking is
// needed and outcome subtrees merge trivially at the parent.
func (e *Engine) evaluateRules(ctx context.Context, rules []manual.Rule, scopes []*snapshot.Element) []Outcome {
	if len(rules) == 0 {
		return nil
	}

	outcomes := make([]Outcome, len(rules))

	if e.config.Parallel && len(rules) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		if e.config.MaxConcurrentRules > 0 {
			g.SetLimit(e.config.MaxConcurrentRules)
		}
		for i := range rules {
			g.Go(func() error {
				outcomes[i] = e.evaluateRule(gctx, &rules[i], scopes)
				return nil // individual rule failures are report data, not errors
			})
		}
		_ = g.Wait()
	} else {
		for i := range rules {
			outcomes[i] = e.evaluateRule(ctx, &rules[i], scopes)
		}
	}

	return outcomes
}

// evaluateRule evaluates a single rule against every scope and merges the
// per-scope results into one outcome, then recurses into child rules using
// the passing elements as new scopes.
func (e *Engine) evaluateRule(ctx context.Context, rule *manual.Rule, scopes []*snapshot.Element) Outcome {
	// Cancellation is cooperative: checked between rule evaluations,
	// never mid-assertion
	if ctx.Err() != nil {
		return markSubtree(rule, values.StatusCancelled, ReasonCancelled, "run cancelled")
	}

	if skip, why := e.shouldSkip(rule); skip {
		return markSubtree(rule, values.StatusNotApplicable, ReasonFiltered, why)
	}

	out := skeleton(rule)

	cr, err := compileRule(rule, e.config.DefaultCardinality)
	if err != nil {
		out.Status = values.StatusFail
		out.Reason = ReasonConfigError
		out.Message = err.Error()
		out.Children = markRules(rule.Children, values.StatusNotApplicable, ReasonParentNotPassed, "parent rule did not pass")
		return out
	}

	status := values.StatusNotApplicable
	reasonRank := -1
	seen := make(map[string]bool)
	var passing []*snapshot.Element

	for _, scope := range scopes {
		res := e.evaluateScope(cr, scope)

		status = status.Merge(res.status)

		for _, el := range res.matched {
			if !seen[el.ID] {
				seen[el.ID] = true
				out.Matched = append(out.Matched, el.ID)
			}
		}
		out.Failures = append(out.Failures, res.failures...)

		for _, el := range res.passing {
			passing = append(passing, el)
		}

		// The reported reason follows the scope that decided the merged
		// status, not the first non-passing scope
		if res.status != values.StatusPass && res.status.Precedence() > reasonRank {
			reasonRank = res.status.Precedence()
			out.Reason = res.reason
			out.Message = res.message
		}
	}

	out.Status = status

	if len(rule.Children) == 0 {
		return out
	}

	if out.Status != values.StatusPass {
		out.Children = markRules(rule.Children, values.StatusNotApplicable, ReasonParentNotPassed, "parent rule did not pass")
		return out
	}

	if len(passing) == 0 {
		// A passing "none" rule matched nothing, so children have no scope
		out.Children = markRules(rule.Children, values.StatusNotApplicable, ReasonParentNotPassed, "parent rule matched no elements")
		return out
	}

	out.Children = e.evaluateRules(ctx, rule.Children, dedupeElements(passing))

	failedChildren := 0
	for i := range out.Children {
		if out.Children[i].Status.IsFailure() {
			failedChildren++
		}
	}
	if failedChildren > 0 {
		out.Status = values.StatusPartialPass
		out.Reason = ReasonDescendantFailed
		out.Message = fmt.Sprintf("%d of %d child rules failed", failedChildren, len(out.Children))
	}

	return out
}

// scopeResult is the evaluation of one rule against one scope element.
type scopeResult struct {
	status   values.Status
	reason   Reason
	message  string
	matched  []*snapshot.Element
	passing  []*snapshot.Element
	failures []ElementFailure
}

// evaluateScope applies the rule's state machine within one scope subtree:
// match, cardinality gate, per-element assertions, aggregate.
func (e *Engine) evaluateScope(cr *compiledRule, scope *snapshot.Element) scopeResult {
	res := scopeResult{matched: cr.sel.Match(scope)}

	if cr.cardinality == manual.CardinalityNone {
		if len(res.matched) == 0 {
			res.status = values.StatusPass
			return res
		}
		res.status = values.StatusFail
		res.reason = ReasonUnexpectedMatch
		res.message = fmt.Sprintf("expected no matching elements, found %d", len(res.matched))
		return res
	}

	if len(res.matched) == 0 {
		// all-match is vacuously satisfiable, so zero matches is not a failure
		if cr.cardinality == manual.CardinalityAllMatch {
			res.status = values.StatusNotApplicable
		} else {
			res.status = values.StatusFail
		}
		res.reason = ReasonNoMatch
		res.message = "no matching element"
		return res
	}

	// Evaluate every matched element; short-circuit per element only, so the
	// report lists every failing element
	for _, el := range res.matched {
		if ok, failure := cr.evaluateElement(el); ok {
			res.passing = append(res.passing, el)
		} else {
			res.failures = append(res.failures, *failure)
		}
	}

	switch cr.cardinality {
	case manual.CardinalityExactlyOne:
		if len(res.matched) > 1 {
			res.status = values.StatusFail
			res.reason = ReasonExpectedExactlyOne
			res.message = fmt.Sprintf("expected exactly one match, found %d", len(res.matched))
			return res
		}
		if len(res.failures) > 0 {
			res.status = values.StatusFail
			res.reason = ReasonAssertionFailed
			res.message = "the matched element failed assertions"
			return res
		}
		res.status = values.StatusPass

	case manual.CardinalityAtLeastOne:
		if len(res.passing) == 0 {
			res.status = values.StatusFail
			res.reason = ReasonAssertionFailed
			res.message = fmt.Sprintf("none of %d matched elements passed assertions", len(res.matched))
			return res
		}
		res.status = values.StatusPass

	case manual.CardinalityAllMatch:
		if len(res.failures) > 0 {
			res.status = values.StatusFail
			res.reason = ReasonAssertionFailed
			res.message = fmt.Sprintf("%d of %d matched elements failed assertions", len(res.failures), len(res.matched))
			return res
		}
		res.status = values.StatusPass
	}

	return res
}

// shouldSkip determines if a rule is excluded by the configured filters.
// A skipped rule's subtree is skipped with it.
func (e *Engine) shouldSkip(rule *manual.Rule) (bool, string) {
	// Exclusive mode: explicit rule selection overrides all other filters
	if len(e.config.IncludeRuleIDs) > 0 {
		if contains(e.config.IncludeRuleIDs, rule.ID) {
			return false, ""
		}
		return true, "excluded by rule filter"
	}

	if contains(e.config.ExcludeRuleIDs, rule.ID) {
		return true, "excluded by exclude-rule filter"
	}

	if len(e.config.ExcludeTags) > 0 && rule.HasAnyTag(e.config.ExcludeTags) {
		return true, "excluded by exclude-tags filter"
	}

	if len(e.config.IncludeSeverities) > 0 && !contains(e.config.IncludeSeverities, rule.Severity) {
		return true, "excluded by severity filter"
	}

	if e.config.MinSeverity.Level() > 0 {
		sev, err := values.NewSeverity(rule.Severity)
		if err != nil || e.config.MinSeverity.IsHigherThan(sev) {
			return true, "excluded by min-severity filter"
		}
	}

	if len(e.config.IncludeTags) > 0 && !rule.HasAnyTag(e.config.IncludeTags) {
		return true, "excluded by tags filter"
	}

	if e.config.FilterProgram != nil {
		env := RuleEnv{
			ID:          rule.ID,
			Description: rule.Description,
			Severity:    rule.Severity,
			Cardinality: string(rule.Cardinality),
			Tags:        []string(rule.Tags),
		}
		output, err := expr.Run(e.config.FilterProgram, env)
		if err != nil {
			return true, fmt.Sprintf("filter expression error: %v", err)
		}
		if keep, ok := output.(bool); !ok || !keep {
			return true, "excluded by filter expression"
		}
	}

	return false, ""
}

// skeleton builds an outcome carrying the rule's identity fields.
func skeleton(rule *manual.Rule) Outcome {
	return Outcome{
		RuleID:      rule.ID,
		Description: rule.Description,
		Selector:    rule.Selector,
		Severity:    rule.Severity,
		Tags:        []string(rule.Tags),
	}
}

// markSubtree marks a rule and all of its descendants with one status.
func markSubtree(rule *manual.Rule, status values.Status, reason Reason, message string) Outcome {
	out := skeleton(rule)
	out.Status = status
	out.Reason = reason
	out.Message = message
	out.Children = markRules(rule.Children, status, reason, message)
	return out
}

// markRules marks a rule list and all descendants with one status.
func markRules(rules []manual.Rule, status values.Status, reason Reason, message string) []Outcome {
	if len(rules) == 0 {
		return nil
	}
	outcomes := make([]Outcome, len(rules))
	for i := range rules {
		outcomes[i] = markSubtree(&rules[i], status, reason, message)
	}
	return outcomes
}

// dedupeElements drops duplicate elements by ID, preserving first-seen order.
// Overlapping parent scopes can otherwise hand the same element to a child
// rule twice.
func dedupeElements(els []*snapshot.Element) []*snapshot.Element {
	seen := make(map[string]bool, len(els))
	out := els[:0:0]
	for _, el := range els {
		if !seen[el.ID] {
			seen[el.ID] = true
			out = append(out, el)
		}
	}
	return out
}

// contains checks if a string is present in a slice.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
