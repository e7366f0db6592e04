package manual

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/uicheck-dev/uicheck/internal/values"
)

// Validate performs document-level validation of a manual.
// Returns a *ParseError describing all violations found.
//
// Rule-level configuration problems that can be isolated to a single rule's
// subtree (an unparsable selector, a bad assertion pattern, a cardinality
// that conflicts with the rule's assertions) are deliberately NOT checked
// here. The engine records those as failing outcomes so one bad rule cannot
// hide the rest of the report.
func Validate(m *Manual) error {
	var errs []string

	if err := validateMetadata(m); err != nil {
		errs = append(errs, err.Error())
	}

	if len(m.Rules) == 0 {
		errs = append(errs, "at least one rule is required")
	}

	if m.Defaults != nil && m.Defaults.Cardinality != "" && !m.Defaults.Cardinality.Known() {
		errs = append(errs, fmt.Sprintf("defaults: unknown cardinality %q", m.Defaults.Cardinality))
	}

	// Track rule IDs to detect duplicates across the whole tree
	seen := make(map[string]bool)
	m.Walk(func(r *Rule, _ int) {
		if err := validateRule(r); err != nil {
			errs = append(errs, err.Error())
		}
		if r.ID != "" {
			if seen[r.ID] {
				errs = append(errs, fmt.Sprintf("duplicate rule ID: %s", r.ID))
			}
			seen[r.ID] = true
		}
	})

	if len(errs) > 0 {
		return &ParseError{
			Message: fmt.Sprintf("manual validation failed:\n  - %s", strings.Join(errs, "\n  - ")),
		}
	}

	return nil
}

// validateMetadata validates manual name and version.
func validateMetadata(m *Manual) error {
	var errs []string

	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, "manual name is required")
	}

	if m.Version == "" {
		errs = append(errs, "manual version is required")
	} else if _, err := semver.NewVersion(m.Version); err != nil {
		errs = append(errs, fmt.Sprintf("manual version %q is not valid semver: %v", m.Version, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("manual metadata: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateRule validates a single rule's identity and vocabulary.
func validateRule(r *Rule) error {
	var errs []string

	if _, err := values.NewRuleID(r.ID); err != nil {
		errs = append(errs, err.Error())
	}

	if strings.TrimSpace(r.Selector) == "" {
		errs = append(errs, "selector is required")
	}

	if r.Cardinality != "" && !r.Cardinality.Known() {
		errs = append(errs, fmt.Sprintf("unknown cardinality %q", r.Cardinality))
	}

	if r.Severity != "" {
		if _, err := values.NewSeverity(r.Severity); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		id := r.ID
		if id == "" {
			id = "(unnamed)"
		}
		return fmt.Errorf("rule %s: %s", id, strings.Join(errs, "; "))
	}

	return nil
}
