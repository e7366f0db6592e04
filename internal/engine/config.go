package engine

import (
	"github.com/expr-lang/expr/vm"
	"github.com/uicheck-dev/uicheck/internal/manual"
	"github.com/uicheck-dev/uicheck/internal/values"
)

// Config controls validation behavior. It is passed explicitly into the
// engine and never read from ambient state, so runs stay reproducible and
// parallel-safe.
type Config struct {
	// DefaultCardinality applies to rules that omit one
	DefaultCardinality manual.Cardinality

	// Parallel enables concurrent evaluation of sibling rules
	Parallel bool
	// MaxConcurrentRules limits parallel rule evaluation (0 = no limit)
	MaxConcurrentRules int

	// Include filters (OR within a slice, AND between kinds)
	IncludeRuleIDs    []string // Exclusive: if set, other include filters are ignored
	IncludeTags       []string
	IncludeSeverities []string

	// MinSeverity skips rules below this severity; the zero value disables it
	MinSeverity values.Severity

	// Exclude filters (take precedence over includes)
	ExcludeRuleIDs []string
	ExcludeTags    []string

	// FilterProgram is a compiled expression over RuleEnv
	FilterProgram *vm.Program
}

// RuleEnv exposes rule metadata for filter expression evaluation.
type RuleEnv struct {
	ID          string   `expr:"id"`
	Description string   `expr:"description"`
	Severity    string   `expr:"severity"`
	Cardinality string   `expr:"cardinality"`
	Tags        []string `expr:"tags"`
}

// DefaultConfig returns sensible defaults for parallel validation.
func DefaultConfig() Config {
	return Config{
		DefaultCardinality: manual.CardinalityAtLeastOne,
		Parallel:           true,
		MaxConcurrentRules: 8,
	}
}
