// Package output provides formatters for uicheck validation reports.
package output

import (
	"fmt"
	"io"

	"github.com/uicheck-dev/uicheck/internal/engine"
)

// Formatter renders a validation report to its writer.
type Formatter interface {
	Format(report *engine.Report) error
}

// Options carries formatter-specific settings.
type Options struct {
	// Indent pretty-prints JSON output
	Indent bool
	// SnapshotPath locates the snapshot file in SARIF output
	SnapshotPath string
	// ToolVersion is embedded in SARIF tool metadata
	ToolVersion string
}

// New returns a formatter for the given format name.
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case "text", "table":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w, opts.Indent), nil
	case "yaml":
		return NewYAMLFormatter(w), nil
	case "junit":
		return NewJUnitFormatter(w), nil
	case "sarif":
		return NewSARIFFormatter(w, opts.SnapshotPath, opts.ToolVersion), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %v)", format, SupportedFormats())
	}
}

// SupportedFormats returns the list of available format names.
func SupportedFormats() []string {
	return []string{"text", "json", "yaml", "junit", "sarif"}
}
