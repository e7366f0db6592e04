package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSnapshotJSON = `{
  "url": "https://shop.example/checkout",
  "title": "Checkout",
  "captured_at": "2026-08-01T10:30:00Z",
  "root": {
    "id": "root",
    "tag": "page",
    "children": [
      {
        "id": "form-1",
        "tag": "form",
        "attributes": {"name": "checkout"},
        "children": [
          {"id": "btn-1", "tag": "button", "attributes": {"label": "Submit", "enabled": "true"}},
          {"id": "input-1", "tag": "input", "attributes": {"name": "email", "type": "email"}, "text": ""}
        ]
      }
    ]
  }
}`

func Test_LoadFromReader_ValidSnapshot(t *testing.T) {
	t.Parallel()

	s, err := LoadFromReader(strings.NewReader(validSnapshotJSON))
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example/checkout", s.URL)
	assert.Equal(t, 4, s.Size())

	btn, ok := s.Lookup("btn-1")
	require.True(t, ok)
	assert.Equal(t, "button", btn.Tag)

	label, ok := btn.Attr("label")
	require.True(t, ok)
	assert.Equal(t, "Submit", label)

	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

func Test_LoadFromReader_WalkOrder(t *testing.T) {
	t.Parallel()

	s, err := LoadFromReader(strings.NewReader(validSnapshotJSON))
	require.NoError(t, err)

	var ids []string
	s.Walk(func(el *Element, _ int) { ids = append(ids, el.ID) })

	// Depth-first, pre-order, children in snapshot order
	assert.Equal(t, []string{"root", "form-1", "btn-1", "input-1"}, ids)
}

func Test_LoadFromReader_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader("{not json"))
	require.Error(t, err)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Message, "invalid JSON")
}

func Test_LoadFromReader_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"missing root", `{"url": "https://example.com"}`},
		{"element without id", `{"root": {"tag": "page"}}`},
		{"element without tag", `{"root": {"id": "root"}}`},
		{"empty id", `{"root": {"id": "", "tag": "page"}}`},
		{"non-string attribute", `{"root": {"id": "root", "tag": "page", "attributes": {"width": 40}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.input))
			require.Error(t, err)

			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Contains(t, serr.Message, "schema validation failed")
		})
	}
}

func Test_LoadFromReader_DuplicateIDs(t *testing.T) {
	t.Parallel()

	input := `{
	  "root": {
	    "id": "root", "tag": "page",
	    "children": [
	      {"id": "dup", "tag": "button"},
	      {"id": "dup", "tag": "button"}
	    ]
	  }
	}`

	_, err := LoadFromReader(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate element ID: dup")
}

func Test_Load_FromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(validSnapshotJSON), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Checkout", s.Title)
}

func Test_Element_AttrNames_Sorted(t *testing.T) {
	t.Parallel()

	el := &Element{
		ID:  "x",
		Tag: "button",
		Attributes: map[string]string{
			"label":   "Go",
			"enabled": "true",
			"class":   "primary",
		},
	}

	assert.Equal(t, []string{"class", "enabled", "label"}, el.AttrNames())
}
