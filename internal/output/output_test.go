package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uicheck-dev/uicheck/internal/engine"
	"github.com/uicheck-dev/uicheck/internal/values"
)

// createTestReport creates a sample validation report for testing.
func createTestReport() *engine.Report {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	report := &engine.Report{
		RunID:         "11111111-2222-3333-4444-555555555555",
		ManualName:    "checkout-flow",
		ManualVersion: "1.2.0",
		SnapshotURL:   "https://shop.example/checkout",
		SnapshotTitle: "Checkout",
		StartTime:     start,
		EndTime:       start.Add(1500 * time.Millisecond),
		Duration:      1500 * time.Millisecond,
		DurationMS:    1500,
		Outcomes: []engine.Outcome{
			{
				RuleID:      "submit-button",
				Description: "The submit button is present and enabled",
				Selector:    `button[label="Submit"]`,
				Severity:    "high",
				Tags:        []string{"forms", "checkout"},
				Status:      values.StatusPass,
				Matched:     []string{"btn-submit"},
				Children: []engine.Outcome{
					{
						RuleID:   "submit-icon",
						Selector: "icon",
						Status:   values.StatusNotApplicable,
						Reason:   engine.ReasonNoMatch,
						Message:  "no matching element",
					},
				},
			},
			{
				RuleID:      "inputs-labelled",
				Description: "Every input carries an accessible label",
				Selector:    "input",
				Severity:    "medium",
				Status:      values.StatusFail,
				Reason:      engine.ReasonAssertionFailed,
				Message:     "1 of 2 matched elements failed assertions",
				Matched:     []string{"in-1", "in-2"},
				Failures: []engine.ElementFailure{
					{ElementID: "in-2", Assertion: "present(aria-label)", Detail: `attribute "aria-label" is missing`},
				},
			},
			{
				RuleID:   "broken-rule",
				Selector: "???",
				Severity: "low",
				Status:   values.StatusFail,
				Reason:   engine.ReasonConfigError,
				Message:  `invalid selector "???": unexpected character '?'`,
			},
		},
	}
	report.Summary = engine.Summarize(report.Outcomes)
	return report
}

func TestJSONFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatter := NewJSONFormatter(&buf, false)
	require.NoError(t, formatter.Format(createTestReport()))

	var decoded engine.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "checkout-flow", decoded.ManualName)
	require.Len(t, decoded.Outcomes, 3)
	assert.Equal(t, values.StatusPass, decoded.Outcomes[0].Status)
	require.Len(t, decoded.Outcomes[0].Children, 1)
	assert.Equal(t, "submit-icon", decoded.Outcomes[0].Children[0].RuleID)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	// duration_ms carries milliseconds, not raw time.Duration nanoseconds
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, float64(1500), raw["duration_ms"])
}

func TestJSONFormatter_Indent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatter := NewJSONFormatter(&buf, true)
	require.NoError(t, formatter.Format(createTestReport()))

	assert.Contains(t, buf.String(), "\n  \"run_id\"")
}

func TestYAMLFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatter := NewYAMLFormatter(&buf)
	require.NoError(t, formatter.Format(createTestReport()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "checkout-flow", decoded["manual_name"])
	assert.Contains(t, decoded, "outcomes")
	assert.Contains(t, decoded, "summary")
}

func TestTableFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatter := NewTableFormatter(&buf)
	require.NoError(t, formatter.Format(createTestReport()))

	output := buf.String()

	assert.Contains(t, output, "Manual: checkout-flow (v1.2.0)")
	assert.Contains(t, output, "Snapshot: https://shop.example/checkout")
	assert.Contains(t, output, "✓ submit-button")
	assert.Contains(t, output, "✗ inputs-labelled")
	assert.Contains(t, output, "in-2: present(aria-label)")
	assert.Contains(t, output, "Matched: in-1, in-2")
	assert.Contains(t, output, "Summary:")
	assert.Contains(t, output, "✓ Passed:   1")
	assert.Contains(t, output, "✗ Failed:   2")
}

func TestTableFormatter_EmptyReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatter := NewTableFormatter(&buf)
	require.NoError(t, formatter.Format(&engine.Report{ManualName: "empty"}))

	assert.Contains(t, buf.String(), "No rules evaluated.")
}

func TestNew_Formats(t *testing.T) {
	t.Parallel()

	for _, format := range SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := New(format, &buf, Options{})
			require.NoError(t, err)
			require.NotNil(t, formatter)
			require.NoError(t, formatter.Format(createTestReport()))
			assert.NotEmpty(t, buf.String())
		})
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := New("csv", &bytes.Buffer{}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format: csv")
}
