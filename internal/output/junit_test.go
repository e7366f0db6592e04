package output

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJUnitFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatter := NewJUnitFormatter(&buf)
	require.NoError(t, formatter.Format(createTestReport()))

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, xml.Header))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))

	assert.Equal(t, "uicheck", suites.Name)
	require.Len(t, suites.TestSuites, 1)

	suite := suites.TestSuites[0]
	assert.Equal(t, "checkout-flow", suite.Name)
	assert.Equal(t, 4, suite.Tests)
	assert.Equal(t, 1, suite.Failures, "config errors are counted as errors, not failures")
	assert.Equal(t, 1, suite.Errors)
	assert.Equal(t, 1, suite.Skipped)
	require.Len(t, suite.TestCases, 4)
}

func TestJUnitFormatter_CaseMapping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewJUnitFormatter(&buf).Format(createTestReport()))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))

	cases := map[string]JUnitTestCase{}
	for _, c := range suites.TestSuites[0].TestCases {
		cases[c.Name] = c
	}

	passing := cases["submit-button"]
	assert.Equal(t, "checkout-flow", passing.ClassName)
	assert.Nil(t, passing.Failure)
	assert.Nil(t, passing.Error)
	assert.Nil(t, passing.Skipped)

	nested := cases["submit-icon"]
	assert.Equal(t, "checkout-flow.submit-button", nested.ClassName, "nested rule classname carries the ancestor path")
	require.NotNil(t, nested.Skipped)

	failing := cases["inputs-labelled"]
	require.NotNil(t, failing.Failure)
	assert.Equal(t, "1 of 2 matched elements failed assertions", failing.Failure.Message)
	assert.Contains(t, failing.Failure.Content, "element in-2: present(aria-label)")

	broken := cases["broken-rule"]
	require.NotNil(t, broken.Error)
	assert.Contains(t, broken.Error.Message, "invalid selector")
}
