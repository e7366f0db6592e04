package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/uicheck-dev/uicheck/internal/manual"
	"github.com/uicheck-dev/uicheck/internal/selector"
	"github.com/uicheck-dev/uicheck/internal/snapshot"
)

// compiledRule is a rule whose selector and assertions have been parsed and
// compiled once for the run. Compilation errors are configuration errors
// isolated to the rule's subtree.
type compiledRule struct {
	rule        *manual.Rule
	cardinality manual.Cardinality
	sel         *selector.Selector
	assertions  []compiledAssertion
}

// compiledAssertion pairs an assertion with its compiled pattern or program.
type compiledAssertion struct {
	src manual.Assertion
	re  *regexp.Regexp // matches kind
	prg *vm.Program    // expr kind
}

// exprEnv builds the expression environment for one element.
func exprEnv(el *snapshot.Element) map[string]interface{} {
	attrs := el.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return map[string]interface{}{
		"id":    el.ID,
		"tag":   el.Tag,
		"text":  el.Text,
		"attrs": attrs,
	}
}

// compileRule resolves a rule's effective cardinality, parses its selector,
// and compiles its assertions. Any problem is a configuration error.
func compileRule(r *manual.Rule, defaultCardinality manual.Cardinality) (*compiledRule, error) {
	cardinality := r.Cardinality
	if cardinality == "" {
		cardinality = defaultCardinality
	}
	if !cardinality.Known() {
		return nil, fmt.Errorf("unknown cardinality %q", cardinality)
	}

	// A rule that forbids matches has no element to assert against
	if cardinality == manual.CardinalityNone && len(r.Assertions) > 0 {
		return nil, fmt.Errorf("cardinality %q conflicts with %d assertion(s)", cardinality, len(r.Assertions))
	}

	sel, err := selector.Parse(r.Selector)
	if err != nil {
		return nil, err
	}

	compiled := &compiledRule{
		rule:        r,
		cardinality: cardinality,
		sel:         sel,
		assertions:  make([]compiledAssertion, 0, len(r.Assertions)),
	}

	for i := range r.Assertions {
		ca, err := compileAssertion(&r.Assertions[i])
		if err != nil {
			return nil, fmt.Errorf("assertion %d: %w", i+1, err)
		}
		compiled.assertions = append(compiled.assertions, ca)
	}

	return compiled, nil
}

// compileAssertion validates an assertion's fields for its kind and compiles
// patterns and expressions.
func compileAssertion(a *manual.Assertion) (compiledAssertion, error) {
	ca := compiledAssertion{src: *a}

	if !a.Kind.Known() {
		return ca, fmt.Errorf("unknown assertion kind %q", a.Kind)
	}

	switch a.Kind {
	case manual.AssertEquals, manual.AssertContains:
		if a.Attribute == "" {
			return ca, fmt.Errorf("%s assertion requires an attribute", a.Kind)
		}

	case manual.AssertPresent, manual.AssertAbsent:
		if a.Attribute == "" {
			return ca, fmt.Errorf("%s assertion requires an attribute", a.Kind)
		}

	case manual.AssertMatches:
		if a.Attribute == "" {
			return ca, fmt.Errorf("matches assertion requires an attribute")
		}
		if a.Pattern == "" {
			return ca, fmt.Errorf("matches assertion requires a pattern")
		}
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return ca, fmt.Errorf("invalid pattern %q: %w", a.Pattern, err)
		}
		ca.re = re

	case manual.AssertExpr:
		if a.Expr == "" {
			return ca, fmt.Errorf("expr assertion requires an expression")
		}
		prg, err := expr.Compile(a.Expr,
			expr.Env(exprEnv(&snapshot.Element{})),
			expr.AsBool())
		if err != nil {
			return ca, fmt.Errorf("invalid expression %q: %w", a.Expr, err)
		}
		ca.prg = prg
	}

	return ca, nil
}

// evaluate applies the assertion to one element. Returns ok and, when the
// assertion fails, a detail describing the observed state. Pure: the element
// is never mutated.
func (ca *compiledAssertion) evaluate(el *snapshot.Element) (bool, string) {
	a := &ca.src

	switch a.Kind {
	case manual.AssertEquals:
		v, present := el.Attr(a.Attribute)
		if !present {
			return false, fmt.Sprintf("attribute %q is missing", a.Attribute)
		}
		if v != a.Value {
			return false, fmt.Sprintf("got %q", v)
		}
		return true, ""

	case manual.AssertContains:
		v, present := el.Attr(a.Attribute)
		if !present {
			return false, fmt.Sprintf("attribute %q is missing", a.Attribute)
		}
		if !strings.Contains(v, a.Value) {
			return false, fmt.Sprintf("got %q", v)
		}
		return true, ""

	case manual.AssertMatches:
		v, present := el.Attr(a.Attribute)
		if !present {
			return false, fmt.Sprintf("attribute %q is missing", a.Attribute)
		}
		if !ca.re.MatchString(v) {
			return false, fmt.Sprintf("got %q", v)
		}
		return true, ""

	case manual.AssertPresent:
		if _, present := el.Attr(a.Attribute); !present {
			return false, fmt.Sprintf("attribute %q is missing", a.Attribute)
		}
		return true, ""

	case manual.AssertAbsent:
		if v, present := el.Attr(a.Attribute); present {
			return false, fmt.Sprintf("attribute %q is present with value %q", a.Attribute, v)
		}
		return true, ""

	case manual.AssertExpr:
		out, err := expr.Run(ca.prg, exprEnv(el))
		if err != nil {
			return false, fmt.Sprintf("expression error: %v", err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return false, "expression did not return a boolean"
		}
		if !ok {
			return false, "expression evaluated to false"
		}
		return true, ""

	default:
		return false, fmt.Sprintf("unknown assertion kind %q", a.Kind)
	}
}

// describe renders the assertion for diagnostics.
func (ca *compiledAssertion) describe() string {
	a := &ca.src
	switch a.Kind {
	case manual.AssertEquals:
		return fmt.Sprintf("equals(%s, %q)", a.Attribute, a.Value)
	case manual.AssertContains:
		return fmt.Sprintf("contains(%s, %q)", a.Attribute, a.Value)
	case manual.AssertMatches:
		return fmt.Sprintf("matches(%s, %q)", a.Attribute, a.Pattern)
	case manual.AssertPresent:
		return fmt.Sprintf("present(%s)", a.Attribute)
	case manual.AssertAbsent:
		return fmt.Sprintf("absent(%s)", a.Attribute)
	case manual.AssertExpr:
		return fmt.Sprintf("expr(%s)", a.Expr)
	default:
		return string(a.Kind)
	}
}

// evaluateElement runs every assertion against one element, short-circuiting
// at the first failure for that element.
func (cr *compiledRule) evaluateElement(el *snapshot.Element) (bool, *ElementFailure) {
	for i := range cr.assertions {
		ca := &cr.assertions[i]
		if ok, detail := ca.evaluate(el); !ok {
			return false, &ElementFailure{
				ElementID: el.ID,
				Assertion: ca.describe(),
				Detail:    detail,
			}
		}
	}
	return true, nil
}
