package values

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule IDs are alphanumeric with dashes and underscores
var ruleIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// RuleID uniquely identifies a rule within a manual.
// Enforces non-empty, trimmed, well-formed identifiers.
type RuleID struct {
	value string
}

// NewRuleID creates a new RuleID with validation
func NewRuleID(id string) (RuleID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RuleID{}, fmt.Errorf("rule ID cannot be empty")
	}
	if !ruleIDPattern.MatchString(id) {
		return RuleID{}, fmt.Errorf("rule ID %q is invalid (must be alphanumeric with dashes/underscores)", id)
	}
	return RuleID{value: id}, nil
}

// MustNewRuleID creates a RuleID or panics (for tests/constants)
func MustNewRuleID(id string) RuleID {
	rid, err := NewRuleID(id)
	if err != nil {
		panic(err)
	}
	return rid
}

// String returns the string representation
func (r RuleID) String() string {
	return r.value
}

// IsEmpty returns true if this is the zero value
func (r RuleID) IsEmpty() bool {
	return r.value == ""
}

// Equals checks if two RuleIDs are equal
func (r RuleID) Equals(other RuleID) bool {
	return r.value == other.value
}

// MarshalJSON implements json.Marshaler
func (r RuleID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *RuleID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid rule ID JSON")
	}
	s = s[1 : len(s)-1]

	id, err := NewRuleID(s)
	if err != nil {
		return err
	}
	*r = id
	return nil
}
