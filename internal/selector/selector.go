// Package selector implements the rule selector grammar and its resolution
// against a snapshot element tree.
//
// Grammar:
//
//	selector  = tag *qualifier
//	tag       = name | "*"
//	qualifier = "[" name "]" | "[" name "=" quoted "]"
//
// A bare name qualifier asserts attribute presence; a valued qualifier
// asserts attribute equality. Qualifiers compose with AND.
package selector

import (
	"fmt"
	"strings"

	"github.com/uicheck-dev/uicheck/internal/snapshot"
)

// Error indicates a selector could not be parsed. It is isolated to the
// rule that owns the selector; the rest of a run continues.
type Error struct {
	Input   string
	Pos     int // 0-based offset of the offending character
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("selector error: %q at offset %d: %s", e.Input, e.Pos, e.Message)
}

// Qualifier is a single attribute condition.
type Qualifier struct {
	Attribute string
	Value     string
	HasValue  bool // false = presence check only
}

// Selector is a parsed, immutable selector.
type Selector struct {
	Tag        string // "" matches any tag
	Qualifiers []Qualifier
	raw        string
}

// String returns the original selector text.
func (s *Selector) String() string {
	return s.raw
}

// Parse parses a selector string.
func Parse(input string) (*Selector, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, &Error{Input: input, Pos: 0, Message: "selector is empty"}
	}

	p := &parser{input: trimmed}

	tag, err := p.parseTag()
	if err != nil {
		return nil, err
	}

	var quals []Qualifier
	for !p.done() {
		q, err := p.parseQualifier()
		if err != nil {
			return nil, err
		}
		quals = append(quals, q)
	}

	sel := &Selector{Qualifiers: quals, raw: trimmed}
	if tag != "*" {
		sel.Tag = tag
	}
	return sel, nil
}

// Matches reports whether a single element satisfies the selector.
func (s *Selector) Matches(el *snapshot.Element) bool {
	if s.Tag != "" && el.Tag != s.Tag {
		return false
	}
	for _, q := range s.Qualifiers {
		v, ok := el.Attr(q.Attribute)
		if !ok {
			return false
		}
		if q.HasValue && v != q.Value {
			return false
		}
	}
	return true
}

// Match resolves the selector against the subtree rooted at scope, the scope
// element included. Traversal is depth-first, pre-order, children in snapshot
// order, so results are reproducible across runs on identical input. The
// snapshot is never mutated; an empty result is valid.
func (s *Selector) Match(scope *snapshot.Element) []*snapshot.Element {
	var matched []*snapshot.Element

	var walk func(el *snapshot.Element)
	walk = func(el *snapshot.Element) {
		if s.Matches(el) {
			matched = append(matched, el)
		}
		for _, child := range el.Children {
			walk(child)
		}
	}
	if scope != nil {
		walk(scope)
	}
	return matched
}

// parser is a single-pass scanner over the selector text.
type parser struct {
	input string
	pos   int
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &Error{Input: p.input, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

// parseTag consumes the leading tag name or "*".
func (p *parser) parseTag() (string, error) {
	if p.done() {
		return "", p.errorf("expected tag name")
	}

	if p.input[p.pos] == '*' {
		p.pos++
		return "*", nil
	}

	name := p.scanName()
	if name == "" {
		return "", p.errorf("expected tag name or '*'")
	}
	return name, nil
}

// parseQualifier consumes one "[attr]" or "[attr=\"value\"]" block.
func (p *parser) parseQualifier() (Qualifier, error) {
	if p.input[p.pos] != '[' {
		return Qualifier{}, p.errorf("expected '['")
	}
	p.pos++

	attr := p.scanName()
	if attr == "" {
		return Qualifier{}, p.errorf("expected attribute name")
	}

	if p.done() {
		return Qualifier{}, p.errorf("unterminated qualifier")
	}

	// Presence-only form
	if p.input[p.pos] == ']' {
		p.pos++
		return Qualifier{Attribute: attr}, nil
	}

	if p.input[p.pos] != '=' {
		return Qualifier{}, p.errorf("expected '=' or ']'")
	}
	p.pos++

	value, err := p.scanQuoted()
	if err != nil {
		return Qualifier{}, err
	}

	if p.done() || p.input[p.pos] != ']' {
		return Qualifier{}, p.errorf("expected ']'")
	}
	p.pos++

	return Qualifier{Attribute: attr, Value: value, HasValue: true}, nil
}

// scanName consumes a run of name characters (letters, digits, '-', '_').
func (p *parser) scanName() string {
	start := p.pos
	for !p.done() && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

// scanQuoted consumes a double-quoted string. Backslash escapes '"' and '\'.
func (p *parser) scanQuoted() (string, error) {
	if p.done() || p.input[p.pos] != '"' {
		return "", p.errorf("expected quoted value")
	}
	p.pos++

	var b strings.Builder
	for !p.done() {
		c := p.input[p.pos]
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.done() {
				return "", p.errorf("unterminated escape")
			}
			b.WriteByte(p.input[p.pos])
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated quoted value")
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_'
}
