package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/uicheck-dev/uicheck/internal/engine"
)

// SARIFFormatter formats validation reports as SARIF 2.1.0 JSON.
// It maps manual rules to SARIF rules and outcomes to results; failing
// outcomes point at the snapshot file as the analyzed artifact.
type SARIFFormatter struct {
	writer       io.Writer
	snapshotPath string
	toolVersion  string
}

// NewSARIFFormatter creates a new SARIF formatter.
// snapshotPath is embedded as the artifact location of all results.
func NewSARIFFormatter(w io.Writer, snapshotPath, toolVersion string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:       w,
		snapshotPath: snapshotPath,
		toolVersion:  toolVersion,
	}
}

// Format writes the validation report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *engine.Report) error {
	doc := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("uicheck", "https://github.com/uicheck-dev/uicheck")
	if f.toolVersion != "" {
		run.Tool.Driver.Version = &f.toolVersion
	}

	mapper := newSARIFMapper(report, f.snapshotPath)
	mapper.mapToRun(run)

	doc.AddRun(run)

	if err := doc.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}
