// Package manual provides the rule model for uicheck manuals and the XML
// loading and validation that turns a manual document into it.
// A manual is a named, versioned tree of validation rules for a UI.
package manual

import (
	"encoding/xml"
	"strings"
)

// Cardinality describes how many matched elements a rule expects.
type Cardinality string

const (
	// CardinalityExactlyOne requires exactly one match, passing all assertions
	CardinalityExactlyOne Cardinality = "exactly-one"
	// CardinalityAtLeastOne requires at least one match passing all assertions
	CardinalityAtLeastOne Cardinality = "at-least-one"
	// CardinalityAllMatch requires every matched element to pass every assertion
	CardinalityAllMatch Cardinality = "all-match"
	// CardinalityNone requires zero matches
	CardinalityNone Cardinality = "none"
)

// Known returns true if the cardinality is a recognized value.
func (c Cardinality) Known() bool {
	switch c {
	case CardinalityExactlyOne, CardinalityAtLeastOne, CardinalityAllMatch, CardinalityNone:
		return true
	default:
		return false
	}
}

// AllowsZero returns true if zero matches is an acceptable outcome.
func (c Cardinality) AllowsZero() bool {
	return c == CardinalityNone
}

// AssertionKind identifies one of the closed set of assertion predicates.
type AssertionKind string

const (
	// AssertEquals checks an attribute equals a value exactly
	AssertEquals AssertionKind = "equals"
	// AssertContains checks an attribute contains a substring
	AssertContains AssertionKind = "contains"
	// AssertMatches checks an attribute against a regular expression
	AssertMatches AssertionKind = "matches"
	// AssertPresent checks an attribute exists, with any value
	AssertPresent AssertionKind = "present"
	// AssertAbsent checks an attribute does not exist
	AssertAbsent AssertionKind = "absent"
	// AssertExpr evaluates a boolean expression over the element
	AssertExpr AssertionKind = "expr"
)

// Known returns true if the kind is a recognized assertion kind.
func (k AssertionKind) Known() bool {
	switch k {
	case AssertEquals, AssertContains, AssertMatches, AssertPresent, AssertAbsent, AssertExpr:
		return true
	default:
		return false
	}
}

// Manual represents a complete parsed manual document.
// Manuals are immutable once loaded.
type Manual struct {
	XMLName  xml.Name      `xml:"manual" json:"-"`
	Name     string        `xml:"name,attr" json:"name"`
	Version  string        `xml:"version,attr" json:"version"`
	Metadata Metadata      `xml:"metadata" json:"metadata"`
	Defaults *RuleDefaults `xml:"defaults" json:"defaults,omitempty"`
	Rules    []Rule        `xml:"rules>rule" json:"rules"`
}

// Metadata contains descriptive information about the manual.
type Metadata struct {
	Description string   `xml:"description" json:"description,omitempty"`
	Author      string   `xml:"author" json:"author,omitempty"`
	Created     string   `xml:"created" json:"created,omitempty"`
	Tags        []string `xml:"tags>tag" json:"tags,omitempty"`
}

// RuleDefaults defines default values applied to rules that omit them.
// Individual rules take precedence over defaults.
type RuleDefaults struct {
	Cardinality Cardinality `xml:"cardinality,attr" json:"cardinality,omitempty"`
	Severity    string      `xml:"severity,attr" json:"severity,omitempty"`
	Tags        TagList     `xml:"tags,attr" json:"tags,omitempty"`
}

// Rule represents a single validation requirement. Rules nest: child rules
// are scoped to the elements their parent matched.
type Rule struct {
	ID          string      `xml:"id,attr" json:"id"`
	Description string      `xml:"description,attr" json:"description,omitempty"`
	Selector    string      `xml:"selector,attr" json:"selector"`
	Cardinality Cardinality `xml:"cardinality,attr" json:"cardinality"`
	Severity    string      `xml:"severity,attr" json:"severity,omitempty"`
	Tags        TagList     `xml:"tags,attr" json:"tags,omitempty"`
	Assertions  []Assertion `xml:"assert" json:"assertions,omitempty"`
	Steps       []string    `xml:"steps>step" json:"steps,omitempty"`
	Expected    string      `xml:"expected" json:"expected,omitempty"`
	Children    []Rule      `xml:"rule" json:"rules,omitempty"`
}

// Assertion is an atomic predicate over one element's attributes.
// Which fields are meaningful depends on Kind.
type Assertion struct {
	Kind      AssertionKind `xml:"kind,attr" json:"kind"`
	Attribute string        `xml:"attribute,attr" json:"attribute,omitempty"`
	Value     string        `xml:"value,attr" json:"value,omitempty"`
	Pattern   string        `xml:"pattern,attr" json:"pattern,omitempty"`
	Expr      string        `xml:"expr,attr" json:"expr,omitempty"`
}

// TagList is a comma-separated tag attribute.
type TagList []string

// UnmarshalXMLAttr implements xml.UnmarshalerAttr.
func (t *TagList) UnmarshalXMLAttr(attr xml.Attr) error {
	var tags []string
	for _, part := range strings.Split(attr.Value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	*t = tags
	return nil
}

// MarshalXMLAttr implements xml.MarshalerAttr.
func (t TagList) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	if len(t) == 0 {
		return xml.Attr{}, nil
	}
	return xml.Attr{Name: name, Value: strings.Join(t, ",")}, nil
}

// HasTag checks if the rule has a specific tag.
func (r *Rule) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag checks if the rule has any of the specified tags.
func (r *Rule) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if r.HasTag(t) {
			return true
		}
	}
	return false
}

// HasSteps returns true if the rule carries manual-review steps.
func (r *Rule) HasSteps() bool {
	return len(r.Steps) > 0
}

// Walk visits every rule in the manual in document order, depth-first,
// parents before children.
func (m *Manual) Walk(fn func(r *Rule, depth int)) {
	var walk func(rules []Rule, depth int)
	walk = func(rules []Rule, depth int) {
		for i := range rules {
			fn(&rules[i], depth)
			walk(rules[i].Children, depth+1)
		}
	}
	walk(m.Rules, 0)
}

// CountRules returns the total number of rules including nested ones.
func (m *Manual) CountRules() int {
	count := 0
	m.Walk(func(*Rule, int) { count++ })
	return count
}

// RuleIDs returns all rule IDs in document order.
func (m *Manual) RuleIDs() []string {
	ids := make([]string, 0, m.CountRules())
	m.Walk(func(r *Rule, _ int) { ids = append(ids, r.ID) })
	return ids
}
