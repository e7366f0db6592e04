// Package snapshot provides the element tree model for scraped UI snapshots
// and the JSON loading that produces it. A snapshot is an immutable captured
// tree of UI elements at validation time; uicheck never scrapes a UI itself.
package snapshot

import "sort"

// Element is a single node in the scraped UI tree. Elements own their
// children; no parent or sibling pointers are ever stored, so the tree is
// acyclic by construction. Lookups by ID go through the snapshot's index.
type Element struct {
	ID         string            `json:"id"`
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Text       string            `json:"text,omitempty"`
	Children   []*Element        `json:"children,omitempty"`
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

// AttrNames returns the element's attribute names in sorted order,
// for deterministic rendering.
func (e *Element) AttrNames() []string {
	names := make([]string, 0, len(e.Attributes))
	for name := range e.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot represents a complete scraped UI tree.
// Snapshots are immutable once loaded.
type Snapshot struct {
	URL        string   `json:"url,omitempty"`
	Title      string   `json:"title,omitempty"`
	CapturedAt string   `json:"captured_at,omitempty"`
	Root       *Element `json:"root"`

	index map[string]*Element
}

// Lookup returns the element with the given ID, if it exists.
func (s *Snapshot) Lookup(id string) (*Element, bool) {
	el, ok := s.index[id]
	return el, ok
}

// Size returns the total number of elements in the tree.
func (s *Snapshot) Size() int {
	return len(s.index)
}

// Walk visits every element depth-first, pre-order, children in
// snapshot order, starting at the root.
func (s *Snapshot) Walk(fn func(el *Element, depth int)) {
	if s.Root == nil {
		return
	}
	var walk func(el *Element, depth int)
	walk = func(el *Element, depth int) {
		fn(el, depth)
		for _, child := range el.Children {
			walk(child, depth+1)
		}
	}
	walk(s.Root, 0)
}

// buildIndex populates the ID index. Returns the ID of the first duplicate
// encountered, or "" if the tree is well formed.
func (s *Snapshot) buildIndex() string {
	s.index = make(map[string]*Element)

	duplicate := ""
	s.Walk(func(el *Element, _ int) {
		if duplicate != "" {
			return
		}
		if _, exists := s.index[el.ID]; exists {
			duplicate = el.ID
			return
		}
		s.index[el.ID] = el
	})
	return duplicate
}
