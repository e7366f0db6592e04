package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uicheck-dev/uicheck/internal/engine"
	"github.com/uicheck-dev/uicheck/internal/values"
)

// TableFormatter formats validation reports as a human-readable table.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Format writes the validation report as a table.
func (f *TableFormatter) Format(report *engine.Report) error {
	fmt.Fprintf(f.writer, "Manual: %s (v%s)\n", report.ManualName, report.ManualVersion)
	if report.SnapshotURL != "" {
		fmt.Fprintf(f.writer, "Snapshot: %s\n", report.SnapshotURL)
	}
	if report.SnapshotTitle != "" {
		fmt.Fprintf(f.writer, "Page: %s\n", report.SnapshotTitle)
	}
	fmt.Fprintf(f.writer, "Executed: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(report.Outcomes) == 0 {
		fmt.Fprintln(f.writer, "No rules evaluated.")
		return nil
	}

	fmt.Fprintln(f.writer, "Rules:")
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))

	for i := range report.Outcomes {
		f.formatOutcome(&report.Outcomes[i], 0)
	}

	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	fmt.Fprintln(f.writer)

	f.formatSummary(report.Summary)

	return nil
}

// formatOutcome formats one outcome and recurses into its children, indenting
// each nesting level.
func (f *TableFormatter) formatOutcome(out *engine.Outcome, depth int) {
	indent := strings.Repeat("  ", depth)
	statusSymbol := f.getStatusSymbol(out.Status)

	header := out.RuleID
	if out.Description != "" {
		header = fmt.Sprintf("%s: %s", out.RuleID, out.Description)
	}
	fmt.Fprintf(f.writer, "%s%s %s\n", indent, statusSymbol, header)

	fmt.Fprintf(f.writer, "%s  Selector: %s\n", indent, out.Selector)
	if out.Severity != "" {
		fmt.Fprintf(f.writer, "%s  Severity: %s\n", indent, out.Severity)
	}
	if len(out.Tags) > 0 {
		fmt.Fprintf(f.writer, "%s  Tags: %s\n", indent, strings.Join(out.Tags, ", "))
	}

	fmt.Fprintf(f.writer, "%s  Status: %s\n", indent, strings.ToUpper(string(out.Status)))
	if out.Message != "" {
		fmt.Fprintf(f.writer, "%s  Message: %s\n", indent, out.Message)
	}
	if len(out.Matched) > 0 {
		fmt.Fprintf(f.writer, "%s  Matched: %s\n", indent, strings.Join(out.Matched, ", "))
	}

	if len(out.Failures) > 0 {
		fmt.Fprintf(f.writer, "%s  Failing elements:\n", indent)
		for i, failure := range out.Failures {
			fmt.Fprintf(f.writer, "%s    %d. %s: %s", indent, i+1, failure.ElementID, failure.Assertion)
			if failure.Detail != "" {
				fmt.Fprintf(f.writer, " (%s)", failure.Detail)
			}
			fmt.Fprintln(f.writer)
		}
	}

	fmt.Fprintln(f.writer)

	for i := range out.Children {
		f.formatOutcome(&out.Children[i], depth+1)
	}
}

// formatSummary formats the summary statistics.
func (f *TableFormatter) formatSummary(summary engine.Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))

	fmt.Fprintf(f.writer, "Rules:        %d total\n", summary.TotalRules)
	fmt.Fprintf(f.writer, "  ✓ Passed:   %d\n", summary.PassedRules)
	fmt.Fprintf(f.writer, "  ✗ Failed:   %d\n", summary.FailedRules)
	fmt.Fprintf(f.writer, "  ◐ Partial:  %d\n", summary.PartialRules)
	fmt.Fprintf(f.writer, "  - Skipped:  %d\n", summary.SkippedRules)
	if summary.CancelledRules > 0 {
		fmt.Fprintf(f.writer, "  ⊘ Cancelled: %d\n", summary.CancelledRules)
	}

	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
}

// getStatusSymbol returns a symbol for the given status.
func (f *TableFormatter) getStatusSymbol(status values.Status) string {
	switch status {
	case values.StatusPass:
		return "✓"
	case values.StatusFail:
		return "✗"
	case values.StatusPartialPass:
		return "◐"
	case values.StatusNotApplicable:
		return "-"
	case values.StatusCancelled:
		return "⊘"
	default:
		return "?"
	}
}
