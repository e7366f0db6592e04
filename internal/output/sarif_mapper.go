package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/uicheck-dev/uicheck/internal/engine"
	"github.com/uicheck-dev/uicheck/internal/values"
)

type sarifMapper struct {
	report       *engine.Report
	snapshotPath string
	cwd          string
}

func newSARIFMapper(report *engine.Report, snapshotPath string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		report:       report,
		snapshotPath: snapshotPath,
		cwd:          cwd,
	}
}

// mapToRun populates the SARIF run with rules, results, and invocation data.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run, m.report.Outcomes)
	m.addResults(run, m.report.Outcomes)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules converts the rule tree to flat SARIF rules.
func (m *sarifMapper) addRules(run *sarif.Run, outcomes []engine.Outcome) {
	for i := range outcomes {
		out := &outcomes[i]

		rule := sarif.NewReportingDescriptor().WithID(out.RuleID)
		rule.WithName(out.RuleID)

		desc := out.Description
		if desc == "" {
			desc = out.RuleID
		}
		rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
		rule.WithFullDescription(&sarif.MultiformatMessageString{Text: &desc})

		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: m.mapSeverityToLevel(out.Severity),
		})

		props := sarif.NewPropertyBag()
		props.Add("selector", out.Selector)
		if len(out.Tags) > 0 {
			props.WithTags(out.Tags)
		}
		if out.Severity != "" {
			props.Add("severity", out.Severity)
		}
		rule.WithProperties(props)

		run.Tool.Driver.AddRule(rule)

		m.addRules(run, out.Children)
	}
}

// addResults converts the outcome tree to flat SARIF results.
func (m *sarifMapper) addResults(run *sarif.Run, outcomes []engine.Outcome) {
	for i := range outcomes {
		run.AddResult(m.mapOutcome(&outcomes[i]))
		m.addResults(run, outcomes[i].Children)
	}
}

// mapOutcome converts a single outcome to a SARIF result.
func (m *sarifMapper) mapOutcome(out *engine.Outcome) *sarif.Result {
	result := sarif.NewRuleResult(out.RuleID)

	result.Level = m.mapStatusToLevel(out.Status, out.Severity)
	result.Kind = m.mapStatusToKind(out.Status)

	msg := out.Message
	if msg == "" {
		msg = m.defaultMessage(out)
	}
	result.Message = sarif.NewTextMessage(msg)

	if loc := m.snapshotLocation(); loc != nil {
		result.Locations = []*sarif.Location{loc}
	}

	props := sarif.NewPropertyBag()
	props.Add("selector", out.Selector)
	if out.Reason != "" {
		props.Add("reason", string(out.Reason))
	}
	if len(out.Matched) > 0 {
		props.Add("matchedElements", out.Matched)
	}
	if len(out.Failures) > 0 {
		props.Add("failingElements", out.Failures)
	}
	if len(out.Tags) > 0 {
		props.WithTags(out.Tags)
	}
	result.WithProperties(props)

	return result
}

// mapStatusToLevel converts outcome status + severity to SARIF level.
func (m *sarifMapper) mapStatusToLevel(status values.Status, severity string) string {
	switch status {
	case values.StatusPass:
		return "note"
	case values.StatusFail, values.StatusPartialPass:
		return m.mapSeverityToLevel(severity)
	case values.StatusNotApplicable, values.StatusCancelled:
		return "none"
	default:
		return "warning"
	}
}

// mapStatusToKind converts outcome status to SARIF kind.
func (m *sarifMapper) mapStatusToKind(status values.Status) string {
	switch status {
	case values.StatusPass:
		return "pass"
	case values.StatusFail, values.StatusPartialPass:
		return "fail"
	case values.StatusNotApplicable:
		return "notApplicable"
	case values.StatusCancelled:
		return "informational"
	default:
		return "fail"
	}
}

// mapSeverityToLevel converts severity alone to SARIF level.
// High and critical map to error; everything else, including unknown
// severities, maps to warning.
func (m *sarifMapper) mapSeverityToLevel(severity string) string {
	sev, err := values.NewSeverity(severity)
	if err == nil && sev.IsHigherOrEqual(values.SevHigh) {
		return "error"
	}
	return "warning"
}

// snapshotLocation points results at the snapshot file, when known.
func (m *sarifMapper) snapshotLocation() *sarif.Location {
	if m.snapshotPath == "" {
		return nil
	}

	uri := m.normalizeURI(m.snapshotPath)
	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))
	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// addInvocation adds run metadata to the SARIF invocation.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	invocation.ExecutionSuccessful = ptrBool(!m.report.WasCancelled())

	startTime := m.report.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := m.report.EndTime.UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	props.Add("manualName", m.report.ManualName)
	props.Add("manualVersion", m.report.ManualVersion)
	props.Add("runId", m.report.RunID)
	if m.report.SnapshotURL != "" {
		props.Add("snapshotUrl", m.report.SnapshotURL)
	}
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds summary statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("summary", m.report.Summary)
	run.WithProperties(props)
}

// defaultMessage generates a message for outcomes without one.
func (m *sarifMapper) defaultMessage(out *engine.Outcome) string {
	switch out.Status {
	case values.StatusPass:
		return fmt.Sprintf("Rule %s passed", out.RuleID)
	case values.StatusFail:
		return fmt.Sprintf("Rule %s failed", out.RuleID)
	case values.StatusPartialPass:
		return fmt.Sprintf("Rule %s passed but a nested rule failed", out.RuleID)
	case values.StatusNotApplicable:
		return fmt.Sprintf("Rule %s was not applicable", out.RuleID)
	case values.StatusCancelled:
		return fmt.Sprintf("Rule %s was cancelled", out.RuleID)
	default:
		return fmt.Sprintf("Rule %s completed with status %s", out.RuleID, out.Status)
	}
}

func ptrBool(b bool) *bool {
	return &b
}
