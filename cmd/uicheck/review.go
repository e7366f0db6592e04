package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/uicheck-dev/uicheck/internal/engine"
	"github.com/uicheck-dev/uicheck/internal/manual"
	"github.com/uicheck-dev/uicheck/internal/values"
)

var (
	reviewFormat    string
	reviewOut       string
	reviewValidator string
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <manual.xml>",
	Short: "Walk through a manual's rules interactively",
	Long: `Step through every rule in a manual and record pass/fail/skip verdicts
by hand. Rules carrying test steps show them alongside the expected result.
The recorded verdicts produce the same report as automated validation and
render through the same formatters.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runReviewAction(args[0])
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewFormat, "format", "text", "Output format: text, json, yaml, junit, sarif")
	reviewCmd.Flags().StringVarP(&reviewOut, "output", "o", "", "Output file path (default: stdout)")
	reviewCmd.Flags().StringVar(&reviewValidator, "validator", "", "Name of the person performing the review")
}

func runReviewAction(manualPath string) error {
	m, err := manual.Load(manualPath)
	if err != nil {
		return fmt.Errorf("failed to load manual: %w", err)
	}

	if reviewValidator == "" {
		err := huh.NewInput().
			Title("Your name").
			Description("Recorded in the report as the reviewer").
			Value(&reviewValidator).
			Run()
		if err != nil {
			return err
		}
	}

	fmt.Printf("Reviewing %s (v%s), %d rules\n\n", m.Name, m.Version, m.CountRules())

	report := &engine.Report{
		RunID:         uuid.NewString(),
		ReviewedBy:    reviewValidator,
		ManualName:    m.Name,
		ManualVersion: m.Version,
		StartTime:     time.Now(),
	}

	outcomes, aborted := reviewRules(m.Rules)
	report.Outcomes = outcomes
	report.Finalize()

	// Reuse validate's writer so both commands render identically
	format = reviewFormat
	outFile = reviewOut
	if err := writeReport(report, ""); err != nil {
		return err
	}

	if aborted {
		return fmt.Errorf("review aborted: %d rules not reviewed", report.Summary.CancelledRules)
	}

	if report.HasFailures() {
		return fmt.Errorf("%w: %d passed, %d failed, %d partial",
			errValidationFailed,
			report.Summary.PassedRules,
			report.Summary.FailedRules,
			report.Summary.PartialRules)
	}

	return nil
}

// reviewRules collects verdicts for sibling rules in document order. Nested
// rules are only reviewed when their parent passed, matching automated
// validation semantics. Returns true if the reviewer aborted.
func reviewRules(rules []manual.Rule) ([]engine.Outcome, bool) {
	if len(rules) == 0 {
		return nil, false
	}

	outcomes := make([]engine.Outcome, 0, len(rules))

	for i := range rules {
		rule := &rules[i]

		out, aborted := reviewRule(rule)
		if aborted {
			outcomes = append(outcomes, markCancelled(rules[i:])...)
			return outcomes, true
		}

		if out.Status == values.StatusPass && len(rule.Children) > 0 {
			children, aborted := reviewRules(rule.Children)
			out.Children = children

			failedChildren := 0
			for j := range out.Children {
				if out.Children[j].Status.IsFailure() {
					failedChildren++
				}
			}
			if failedChildren > 0 {
				out.Status = values.StatusPartialPass
				out.Reason = engine.ReasonDescendantFailed
				out.Message = fmt.Sprintf("%d of %d child rules failed", failedChildren, len(out.Children))
			}

			if aborted {
				outcomes = append(outcomes, out)
				outcomes = append(outcomes, markCancelled(rules[i+1:])...)
				return outcomes, true
			}
		} else if len(rule.Children) > 0 {
			out.Children = markCancelledStatus(rule.Children, values.StatusNotApplicable, engine.ReasonParentNotPassed, "parent rule did not pass")
		}

		outcomes = append(outcomes, out)
	}

	return outcomes, false
}

// reviewRule prompts for one rule's verdict.
func reviewRule(rule *manual.Rule) (engine.Outcome, bool) {
	out := engine.Outcome{
		RuleID:      rule.ID,
		Description: rule.Description,
		Selector:    rule.Selector,
		Severity:    rule.Severity,
		Tags:        []string(rule.Tags),
	}

	var verdict string
	err := huh.NewSelect[string]().
		Title(ruleTitle(rule)).
		Description(ruleInstructions(rule)).
		Options(
			huh.NewOption("Pass", string(values.StatusPass)),
			huh.NewOption("Fail", string(values.StatusFail)),
			huh.NewOption("Skip", string(values.StatusNotApplicable)),
		).
		Value(&verdict).
		Run()
	if err != nil {
		return out, true
	}

	out.Status = values.Status(verdict)

	switch out.Status {
	case values.StatusFail:
		var note string
		if err := huh.NewInput().Title("What went wrong?").Value(&note).Run(); err != nil {
			return out, true
		}
		out.Reason = engine.ReasonAssertionFailed
		out.Message = note
	case values.StatusNotApplicable:
		out.Message = "skipped by reviewer"
	}

	return out, false
}

func ruleTitle(rule *manual.Rule) string {
	if rule.Description != "" {
		return fmt.Sprintf("%s: %s", rule.ID, rule.Description)
	}
	return rule.ID
}

// ruleInstructions renders a rule's manual steps and expected result.
func ruleInstructions(rule *manual.Rule) string {
	var b strings.Builder

	if rule.HasSteps() {
		b.WriteString("Steps:\n")
		for i, step := range rule.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}
	if rule.Expected != "" {
		fmt.Fprintf(&b, "Expected: %s\n", rule.Expected)
	}
	if b.Len() == 0 {
		fmt.Fprintf(&b, "Check: %s (%s)\n", rule.Selector, rule.Cardinality)
	}

	return b.String()
}

// markCancelled marks unreviewed rules and their descendants cancelled.
func markCancelled(rules []manual.Rule) []engine.Outcome {
	return markCancelledStatus(rules, values.StatusCancelled, engine.ReasonCancelled, "review aborted")
}

func markCancelledStatus(rules []manual.Rule, status values.Status, reason engine.Reason, message string) []engine.Outcome {
	if len(rules) == 0 {
		return nil
	}
	outcomes := make([]engine.Outcome, len(rules))
	for i := range rules {
		outcomes[i] = engine.Outcome{
			RuleID:      rules[i].ID,
			Description: rules[i].Description,
			Selector:    rules[i].Selector,
			Severity:    rules[i].Severity,
			Tags:        []string(rules[i].Tags),
			Status:      status,
			Reason:      reason,
			Message:     message,
			Children:    markCancelledStatus(rules[i].Children, status, reason, message),
		}
	}
	return outcomes
}
