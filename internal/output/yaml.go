package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/uicheck-dev/uicheck/internal/engine"
)

// YAMLFormatter formats validation reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the validation report as YAML.
func (f *YAMLFormatter) Format(report *engine.Report) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(report); err != nil {
		return err
	}

	return encoder.Close()
}
