package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/uicheck-dev/uicheck/internal/engine"
	"github.com/uicheck-dev/uicheck/internal/values"
)

// JUnitFormatter formats validation reports as JUnit XML.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the validation report as JUnit XML. The rule tree is
// flattened into one test case per rule; a nested rule's classname carries
// its ancestor path.
func (f *JUnitFormatter) Format(report *engine.Report) error {
	errors := countConfigErrors(report.Outcomes)
	suite := JUnitTestSuite{
		Name:     report.ManualName,
		Tests:    report.Summary.TotalRules,
		Failures: report.Summary.FailedRules + report.Summary.PartialRules - errors,
		Errors:   errors,
		Skipped:  report.Summary.SkippedRules + report.Summary.CancelledRules,
		Time:     report.Duration.Seconds(),
	}

	addTestCases(&suite, report.Outcomes, report.ManualName)

	suites := JUnitTestSuites{
		Name:       "uicheck",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func addTestCases(suite *JUnitTestSuite, outcomes []engine.Outcome, classPath string) {
	for i := range outcomes {
		out := &outcomes[i]

		c := JUnitTestCase{
			Name:      out.RuleID,
			ClassName: classPath,
		}

		switch {
		case out.Status == values.StatusFail && out.Reason == engine.ReasonConfigError:
			c.Error = &JUnitError{
				Message: out.Message,
				Content: fmt.Sprintf("selector: %s", out.Selector),
			}
		case out.Status == values.StatusFail, out.Status == values.StatusPartialPass:
			c.Failure = &JUnitFailure{
				Message: out.Message,
				Content: formatFailures(out),
			}
		case out.Status == values.StatusNotApplicable:
			c.Skipped = &JUnitSkipped{Message: out.Message}
		case out.Status == values.StatusCancelled:
			c.Skipped = &JUnitSkipped{Message: "cancelled"}
		}

		suite.TestCases = append(suite.TestCases, c)

		addTestCases(suite, out.Children, classPath+"."+out.RuleID)
	}
}

// formatFailures renders an outcome's failing elements as testcase content.
func formatFailures(out *engine.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "selector: %s\n", out.Selector)
	for _, failure := range out.Failures {
		fmt.Fprintf(&b, "element %s: %s", failure.ElementID, failure.Assertion)
		if failure.Detail != "" {
			fmt.Fprintf(&b, " (%s)", failure.Detail)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// countConfigErrors counts outcomes failed by rule misconfiguration across
// the whole tree.
func countConfigErrors(outcomes []engine.Outcome) int {
	n := 0
	for i := range outcomes {
		if outcomes[i].Status == values.StatusFail && outcomes[i].Reason == engine.ReasonConfigError {
			n++
		}
		n += countConfigErrors(outcomes[i].Children)
	}
	return n
}
