package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsanders/scoped-search/internal/compiler"
)

const validCases = `cases:
  - name: plain
    query: "cats dogs"
    expect:
      - {value: cats, operator: like}
      - {value: dogs, operator: like}
  - name: dated
    query: ">=2024-01-01"
    expect:
      - {value: ">=2024-01-01", operator: greater_than_or_equal_to_date}
`

const validCUECases = `case: absent: {
	expect: []
}

case: ranged: {
	query: "01/01/2024 TO 12/31/2024"
	assertions: [{type: "count", count: 1}]
}
`

func TestValidateValidCases(t *testing.T) {
	dir := t.TempDir()
	writeCaseFile(t, dir, "words.yaml", validCases)
	writeCaseFile(t, dir, "dates.cue", validCUECases)

	out, _, err := execute(t, nil, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All cases valid (4 cases in 2 files)")
}

func TestValidateValidCasesJSON(t *testing.T) {
	dir := t.TempDir()
	writeCaseFile(t, dir, "words.yaml", validCases)

	out, _, err := execute(t, nil, "--format", "json", "validate", dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Cases)
}

func TestValidateRepositoryCases(t *testing.T) {
	out, _, err := execute(t, nil, "validate", filepath.Join("..", "harness", "testdata", "cases"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All cases valid")
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(t, nil, "validate", "/nonexistent/cases")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, _, err := execute(t, nil, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	writeCaseFile(t, dir, "a.yaml", validCases)
	writeCaseFile(t, dir, "b.yaml", `cases:
  - name: plain
    query: "x"
    expect: [{value: x, operator: like}]
  - name: no_expectation
    query: "y"
  - name: bad_count
    query: "z"
    assertions: [{type: count, count: -1}]
`)
	writeCaseFile(t, dir, "c.yaml", "cases:\n  - name: x\n    expects: []\n")

	out, _, err := execute(t, nil, "--format", "json", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)

	codes := make([]string, len(resp.Data.Errors))
	for i, e := range resp.Data.Errors {
		codes[i] = e.Code
	}
	assert.Equal(t, []string{
		ErrCodeLoadFailed,
		compiler.ErrDuplicateCase,
		compiler.ErrCaseNoExpectation,
		compiler.ErrInvalidAssertion,
	}, codes)
	assert.Equal(t, ErrCodeLoadFailed, resp.Error.Code)
}

func TestValidateCUEPosition(t *testing.T) {
	dir := t.TempDir()
	writeCaseFile(t, dir, "bad.cue", "case: x: {\n\tquery: \"a\"\n\texpect: [{value: \"a\", operator: \"equals\"}]\n}\n")

	out, _, err := execute(t, nil, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "bad.cue")
}

func TestValidateRejectsPathCaseName(t *testing.T) {
	dir := t.TempDir()
	writeCaseFile(t, dir, "escape.yaml", `cases:
  - name: ../../../escaped
    query: "cats"
    expect: [{value: cats, operator: like}]
`)

	out, _, err := execute(t, nil, "--format", "json", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, compiler.ErrCaseNameInvalid, resp.Data.Errors[0].Code)
	assert.Equal(t, "name", resp.Data.Errors[0].Field)
}
