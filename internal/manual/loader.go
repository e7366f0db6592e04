package manual

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load loads and parses a manual from an XML file.
// It applies rule defaults and validates the document structure.
func Load(path string) (*Manual, error) {
	// Use os.OpenRoot to prevent path traversal through symlinks
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, &ParseError{Path: path, Message: "failed to open manual directory", Err: err}
	}
	defer root.Close()

	file, err := root.Open(base)
	if err != nil {
		return nil, &ParseError{Path: path, Message: "failed to open manual", Err: err}
	}
	defer file.Close()

	m, err := LoadFromReader(file)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return m, nil
}

// LoadFromReader loads and parses a manual from an io.Reader.
// This is useful for testing with in-memory XML data.
func LoadFromReader(r io.Reader) (*Manual, error) {
	var m Manual

	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&m); err != nil {
		return nil, wrapDecodeError(err)
	}

	if m.XMLName.Local != "manual" {
		return nil, &ParseError{Message: fmt.Sprintf("root element must be <manual>, got <%s>", m.XMLName.Local)}
	}

	normalize(&m)
	applyDefaults(&m)

	if err := Validate(&m); err != nil {
		return nil, err
	}

	return &m, nil
}

// wrapDecodeError converts encoding/xml errors into a ParseError,
// preserving line information when the decoder provides it.
func wrapDecodeError(err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{
			Line:    syntaxErr.Line,
			Message: syntaxErr.Msg,
			Err:     err,
		}
	}
	return &ParseError{Message: err.Error(), Err: err}
}

// normalize canonicalizes severity values to lowercase so filters and report
// mappings can compare them exactly. Runs before defaults are applied.
func normalize(m *Manual) {
	if m.Defaults != nil {
		m.Defaults.Severity = strings.ToLower(strings.TrimSpace(m.Defaults.Severity))
	}
	m.Walk(func(r *Rule, _ int) {
		r.Severity = strings.ToLower(strings.TrimSpace(r.Severity))
	})
}

// applyDefaults applies manual-level defaults to every rule that omits the
// corresponding value. Individual rule values take precedence.
func applyDefaults(m *Manual) {
	if m.Defaults == nil {
		return
	}

	var apply func(rules []Rule)
	apply = func(rules []Rule) {
		for i := range rules {
			r := &rules[i]

			if r.Cardinality == "" && m.Defaults.Cardinality != "" {
				r.Cardinality = m.Defaults.Cardinality
			}

			if r.Severity == "" && m.Defaults.Severity != "" {
				r.Severity = m.Defaults.Severity
			}

			if len(m.Defaults.Tags) > 0 {
				r.Tags = mergeTags(m.Defaults.Tags, r.Tags)
			}

			apply(r.Children)
		}
	}
	apply(m.Rules)
}

// mergeTags combines default and rule tags, deduplicated, defaults first.
func mergeTags(defaults, own TagList) TagList {
	seen := make(map[string]bool, len(defaults)+len(own))
	merged := make(TagList, 0, len(defaults)+len(own))

	for _, t := range defaults {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	for _, t := range own {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}
