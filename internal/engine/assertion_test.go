package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uicheck-dev/uicheck/internal/manual"
	"github.com/uicheck-dev/uicheck/internal/snapshot"
)

func Test_CompiledAssertion_Evaluate(t *testing.T) {
	t.Parallel()

	el := &snapshot.Element{
		ID:  "btn-1",
		Tag: "button",
		Attributes: map[string]string{
			"label":   "Place order",
			"enabled": "true",
		},
		Text: "Place order",
	}

	tests := []struct {
		name      string
		assertion manual.Assertion
		ok        bool
		detail    string
	}{
		{
			name:      "equals matching",
			assertion: manual.Assertion{Kind: manual.AssertEquals, Attribute: "enabled", Value: "true"},
			ok:        true,
		},
		{
			name:      "equals mismatching",
			assertion: manual.Assertion{Kind: manual.AssertEquals, Attribute: "enabled", Value: "false"},
			detail:    `got "true"`,
		},
		{
			name:      "equals missing attribute",
			assertion: manual.Assertion{Kind: manual.AssertEquals, Attribute: "aria-label", Value: "x"},
			detail:    `attribute "aria-label" is missing`,
		},
		{
			name:      "contains substring",
			assertion: manual.Assertion{Kind: manual.AssertContains, Attribute: "label", Value: "order"},
			ok:        true,
		},
		{
			name:      "contains absent substring",
			assertion: manual.Assertion{Kind: manual.AssertContains, Attribute: "label", Value: "cancel"},
			detail:    `got "Place order"`,
		},
		{
			name:      "matches pattern",
			assertion: manual.Assertion{Kind: manual.AssertMatches, Attribute: "label", Pattern: `^Place`},
			ok:        true,
		},
		{
			name:      "matches non-matching pattern",
			assertion: manual.Assertion{Kind: manual.AssertMatches, Attribute: "label", Pattern: `^\d+$`},
			detail:    `got "Place order"`,
		},
		{
			name:      "present",
			assertion: manual.Assertion{Kind: manual.AssertPresent, Attribute: "label"},
			ok:        true,
		},
		{
			name:      "present missing",
			assertion: manual.Assertion{Kind: manual.AssertPresent, Attribute: "href"},
			detail:    `attribute "href" is missing`,
		},
		{
			name:      "absent",
			assertion: manual.Assertion{Kind: manual.AssertAbsent, Attribute: "disabled"},
			ok:        true,
		},
		{
			name:      "absent but present",
			assertion: manual.Assertion{Kind: manual.AssertAbsent, Attribute: "enabled"},
			detail:    `attribute "enabled" is present with value "true"`,
		},
		{
			name:      "expr true",
			assertion: manual.Assertion{Kind: manual.AssertExpr, Expr: `text == attrs["label"]`},
			ok:        true,
		},
		{
			name:      "expr false",
			assertion: manual.Assertion{Kind: manual.AssertExpr, Expr: `tag == "input"`},
			detail:    "expression evaluated to false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ca, err := compileAssertion(&tt.assertion)
			require.NoError(t, err)

			ok, detail := ca.evaluate(el)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.detail, detail)
		})
	}
}

func Test_CompileAssertion_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		assertion manual.Assertion
		wantErr   string
	}{
		{
			name:      "unknown kind",
			assertion: manual.Assertion{Kind: "startswith", Attribute: "label"},
			wantErr:   "unknown assertion kind",
		},
		{
			name:      "equals without attribute",
			assertion: manual.Assertion{Kind: manual.AssertEquals, Value: "x"},
			wantErr:   "requires an attribute",
		},
		{
			name:      "matches without pattern",
			assertion: manual.Assertion{Kind: manual.AssertMatches, Attribute: "label"},
			wantErr:   "requires a pattern",
		},
		{
			name:      "matches with invalid pattern",
			assertion: manual.Assertion{Kind: manual.AssertMatches, Attribute: "label", Pattern: "["},
			wantErr:   "invalid pattern",
		},
		{
			name:      "expr without expression",
			assertion: manual.Assertion{Kind: manual.AssertExpr},
			wantErr:   "requires an expression",
		},
		{
			name:      "expr with syntax error",
			assertion: manual.Assertion{Kind: manual.AssertExpr, Expr: "tag =="},
			wantErr:   "invalid expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileAssertion(&tt.assertion)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_CompiledAssertion_Describe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		assertion manual.Assertion
		expected  string
	}{
		{manual.Assertion{Kind: manual.AssertEquals, Attribute: "enabled", Value: "true"}, `equals(enabled, "true")`},
		{manual.Assertion{Kind: manual.AssertContains, Attribute: "label", Value: "order"}, `contains(label, "order")`},
		{manual.Assertion{Kind: manual.AssertMatches, Attribute: "label", Pattern: "^P"}, `matches(label, "^P")`},
		{manual.Assertion{Kind: manual.AssertPresent, Attribute: "href"}, `present(href)`},
		{manual.Assertion{Kind: manual.AssertAbsent, Attribute: "disabled"}, `absent(disabled)`},
		{manual.Assertion{Kind: manual.AssertExpr, Expr: `tag == "button"`}, `expr(tag == "button")`},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			ca, err := compileAssertion(&tt.assertion)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ca.describe())
		})
	}
}
