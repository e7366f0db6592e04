package manual

import "fmt"

// ParseError indicates a manual document could not be parsed or failed
// document-level validation. It is fatal: no validation run is attempted.
type ParseError struct {
	Path    string // File path, if loaded from a file
	Line    int    // 1-based line of the offending element (0 if unknown)
	Column  int    // 1-based column (0 if unknown)
	RuleID  string // Offending rule, for semantic violations
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Path != "":
		return fmt.Sprintf("manual parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("manual parse error: line %d: %s", e.Line, e.Message)
	case e.RuleID != "":
		return fmt.Sprintf("manual parse error: rule %s: %s", e.RuleID, e.Message)
	case e.Path != "":
		return fmt.Sprintf("manual parse error: %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("manual parse error: %s", e.Message)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
