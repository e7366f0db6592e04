package manual

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManualXML = `<?xml version="1.0" encoding="UTF-8"?>
<manual name="checkout-flow" version="1.2.0">
  <metadata>
    <description>Checkout page validation</description>
    <author>QA team</author>
    <created>2026-08-01</created>
    <tags>
      <tag>checkout</tag>
      <tag>forms</tag>
    </tags>
  </metadata>
  <defaults cardinality="at-least-one" severity="medium" tags="ui"/>
  <rules>
    <rule id="submit-button" description="Submit button is usable"
          selector="button[label=&quot;Submit&quot;]" cardinality="exactly-one" severity="high" tags="forms,critical">
      <assert kind="equals" attribute="enabled" value="true"/>
      <assert kind="present" attribute="id"/>
      <rule id="submit-icon" description="Submit button shows an icon" selector="icon">
        <assert kind="present" attribute="name"/>
      </rule>
    </rule>
    <rule id="no-error-banner" description="No error banner is shown" selector="banner[kind=&quot;error&quot;]" cardinality="none"/>
  </rules>
</manual>`

func Test_LoadFromReader_ValidManual(t *testing.T) {
	t.Parallel()

	m, err := LoadFromReader(strings.NewReader(validManualXML))
	require.NoError(t, err)

	assert.Equal(t, "checkout-flow", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, "QA team", m.Metadata.Author)
	assert.Equal(t, []string{"checkout", "forms"}, m.Metadata.Tags)

	require.Len(t, m.Rules, 2)
	assert.Equal(t, 3, m.CountRules())

	submit := m.Rules[0]
	assert.Equal(t, "submit-button", submit.ID)
	assert.Equal(t, CardinalityExactlyOne, submit.Cardinality)
	assert.Equal(t, `button[label="Submit"]`, submit.Selector)
	require.Len(t, submit.Assertions, 2)
	assert.Equal(t, AssertEquals, submit.Assertions[0].Kind)
	assert.Equal(t, "enabled", submit.Assertions[0].Attribute)
	assert.Equal(t, "true", submit.Assertions[0].Value)

	require.Len(t, submit.Children, 1)
	assert.Equal(t, "submit-icon", submit.Children[0].ID)
}

func Test_LoadFromReader_AppliesDefaults(t *testing.T) {
	t.Parallel()

	m, err := LoadFromReader(strings.NewReader(validManualXML))
	require.NoError(t, err)

	// Nested rule omits cardinality and severity, so defaults apply
	child := m.Rules[0].Children[0]
	assert.Equal(t, CardinalityAtLeastOne, child.Cardinality)
	assert.Equal(t, "medium", child.Severity)
	assert.Equal(t, TagList{"ui"}, child.Tags)

	// Explicit values win over defaults; default tags are merged in first
	submit := m.Rules[0]
	assert.Equal(t, CardinalityExactlyOne, submit.Cardinality)
	assert.Equal(t, "high", submit.Severity)
	assert.Equal(t, TagList{"ui", "forms", "critical"}, submit.Tags)
}

func Test_LoadFromReader_RejectsUnknownCardinality(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader(`<manual name="x" version="1.0.0">
  <rules>
    <rule id="a" selector="button" cardinality="sometimes"/>
  </rules>
</manual>`))
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), `unknown cardinality "sometimes"`)
}

func Test_LoadFromReader_NormalizesSeverity(t *testing.T) {
	t.Parallel()

	m, err := LoadFromReader(strings.NewReader(`<manual name="x" version="1.0.0">
  <defaults severity=" Medium "/>
  <rules>
    <rule id="a" selector="button" severity="High"/>
    <rule id="b" selector="input"/>
  </rules>
</manual>`))
	require.NoError(t, err)

	assert.Equal(t, "high", m.Rules[0].Severity)
	assert.Equal(t, "medium", m.Rules[1].Severity)
}

func Test_LoadFromReader_MalformedXML(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader("<manual name=\"x\" version=\"1.0.0\">\n<rules>\n<rule id=\"a\">"))
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Greater(t, perr.Line, 0, "syntax errors should carry a line number")
}

func Test_LoadFromReader_WrongRootElement(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader(`<checklist name="x" version="1.0.0"></checklist>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root element must be <manual>")
}

func Test_Load_FromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "manual.xml")
	require.NoError(t, os.WriteFile(path, []byte(validManualXML), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "checkout-flow", m.Name)
}

func Test_Load_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.xml"))
	require.Error(t, err)

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func Test_Manual_Walk_DocumentOrder(t *testing.T) {
	t.Parallel()

	m, err := LoadFromReader(strings.NewReader(validManualXML))
	require.NoError(t, err)

	assert.Equal(t, []string{"submit-button", "submit-icon", "no-error-banner"}, m.RuleIDs())

	var depths []int
	m.Walk(func(_ *Rule, depth int) { depths = append(depths, depth) })
	assert.Equal(t, []int{0, 1, 0}, depths)
}
