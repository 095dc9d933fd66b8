package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsanders/scoped-search/internal/ir"
)

const emptyFingerprint = "715dd98173428304680a32420bbc49bdfcd85fdcbebd5d32277de0d3dc9aa98a"

type parseJSON struct {
	Status string      `json:"status"`
	Data   ParseOutput `json:"data"`
}

type parseManyJSON struct {
	Status string        `json:"status"`
	Data   []ParseOutput `json:"data"`
}

func TestParseCommand_Text(t *testing.T) {
	out, _, err := execute(t, nil, "parse", `cats -"big dogs"`)
	require.NoError(t, err)

	want := ir.Conditions{
		{Value: "cats", Operator: ir.OpLike},
		{Value: "big dogs", Operator: ir.OpNot},
	}
	assert.Contains(t, out, `query: "cats -\"big dogs\""`)
	assert.Contains(t, out, "1.  like  cats")
	assert.Contains(t, out, "2.  not   big dogs")
	assert.Contains(t, out, "fingerprint: "+ir.MustFingerprint(want))
	assert.NotContains(t, out, "truncated")
}

func TestParseCommand_Absent(t *testing.T) {
	out, _, err := execute(t, nil, "parse")
	require.NoError(t, err)

	assert.Contains(t, out, "query: <absent>")
	assert.Contains(t, out, "no conditions")
	assert.Contains(t, out, "fingerprint: "+emptyFingerprint)
}

func TestParseCommand_JSON(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "parse", "01/01/2024 TO 12/31/2024")
	require.NoError(t, err)

	var resp parseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data.Query)
	assert.Equal(t, "01/01/2024 TO 12/31/2024", *resp.Data.Query)
	assert.Equal(t, ir.Conditions{{Value: "01/01/2024 TO 12/31/2024", Operator: ir.OpBetweenDates}}, resp.Data.Conditions)
	assert.False(t, resp.Data.Truncated)
}

func TestParseCommand_JSONAbsent(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "parse")
	require.NoError(t, err)

	assert.Contains(t, out, `"query": null`)
	assert.Contains(t, out, `"conditions": []`)
}

func TestParseCommand_Truncated(t *testing.T) {
	out, _, err := execute(t, nil, "parse", strings.Repeat("ab ", 150))
	require.NoError(t, err)
	assert.Contains(t, out, "truncated to 300 characters")
}

func TestParseCommand_File(t *testing.T) {
	path := writeCaseFile(t, t.TempDir(), "queries.txt", "cats\n\n20240101\r\n")

	out, _, err := execute(t, nil, "--format", "json", "parse", "--file", path, "--workers", "2")
	require.NoError(t, err)

	var resp parseManyJSON
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)

	assert.Equal(t, ir.Conditions{{Value: "cats", Operator: ir.OpLike}}, resp.Data[0].Conditions)

	require.NotNil(t, resp.Data[1].Query, "an empty line is an empty query, not absent input")
	assert.Equal(t, "", *resp.Data[1].Query)
	assert.Empty(t, resp.Data[1].Conditions)
	assert.Equal(t, emptyFingerprint, resp.Data[1].Fingerprint)

	assert.Equal(t, "20240101", *resp.Data[2].Query)
	assert.Equal(t, ir.Conditions{{Value: "20240101", Operator: ir.OpAsOfDate}}, resp.Data[2].Conditions)
}

func TestParseCommand_Stdin(t *testing.T) {
	out, _, err := execute(t, strings.NewReader("a OR b\n-c\n"), "parse", "--file", "-")
	require.NoError(t, err)

	assert.Contains(t, out, `query: "a OR b"`)
	assert.Contains(t, out, "or  a OR b")
	assert.Contains(t, out, `query: "-c"`)
	assert.Contains(t, out, "not  c")
}

func TestParseCommand_Errors(t *testing.T) {
	t.Run("file and argument", func(t *testing.T) {
		_, _, err := execute(t, nil, "parse", "--file", "-", "cats")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("missing file", func(t *testing.T) {
		out, _, err := execute(t, nil, "parse", "--file", filepath.Join(t.TempDir(), "nope.txt"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error ["+ErrCodeReadFailed+"]")
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, _, err := execute(t, nil, "parse", "a", "b")
		require.Error(t, err)
	})
}

func TestTokensCommand(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "tokens", `-"new york" cats`)
	require.NoError(t, err)

	var resp struct {
		Data TokensOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []TokenOutput{
		{Kind: "negation"},
		{Kind: "literal", Text: "new york", Category: "quoted_string"},
		{Kind: "literal", Text: "cats", Category: "word"},
	}, resp.Data.Tokens)
}

func TestTokensCommand_Text(t *testing.T) {
	out, _, err := execute(t, nil, "tokens", "!!!")
	require.NoError(t, err)
	assert.Equal(t, "no tokens\n", out)

	out, _, err = execute(t, nil, "tokens", "-cats")
	require.NoError(t, err)
	assert.Contains(t, out, "1.  negation")
	assert.Contains(t, out, "literal   word  cats")
}

func TestPatternsCommand(t *testing.T) {
	out, _, err := execute(t, nil, "patterns")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, lines[0], "CATEGORY")
	assert.Contains(t, lines[1], "between_dates")
	assert.Contains(t, lines[8], "word")
	assert.Contains(t, lines[8], "like/not")
	assert.Contains(t, lines[9], "quoted_string")
}

func TestPatternsCommand_JSON(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "patterns")
	require.NoError(t, err)

	var resp struct {
		Data PatternsOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Categories, 9)
	assert.Equal(t, "1", resp.Data.GrammarVersion)
	assert.Equal(t, ir.OpOr, resp.Data.Categories[6].Operator)
	assert.NotEmpty(t, resp.Data.Categories[6].Pattern)
}

func TestParseCommand_VerboseLogsDebug(t *testing.T) {
	out, errOut, err := execute(t, nil, "-v", "parse", "cats dogs")
	require.NoError(t, err)
	assert.Contains(t, out, "1.  like  cats")
	assert.Contains(t, errOut, "level=DEBUG")
	assert.Contains(t, errOut, `msg="query parsed"`)
	assert.Contains(t, errOut, "tokens=2")
	assert.Contains(t, errOut, "conditions=2")
	assert.Contains(t, errOut, "truncated=false")
	assert.NotContains(t, errOut, "query truncated")

	_, errOut, err = execute(t, nil, "--verbose", "parse", strings.Repeat("ab ", 150))
	require.NoError(t, err)
	assert.Contains(t, errOut, `msg="query truncated"`)
	assert.Contains(t, errOut, "max_length=300")
	assert.Contains(t, errOut, "truncated=true")
}

func TestParseCommand_QuietWithoutVerbose(t *testing.T) {
	_, errOut, err := execute(t, nil, "parse", "cats dogs")
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestTokensCommand_VerboseLogsDebug(t *testing.T) {
	_, errOut, err := execute(t, nil, "-v", "tokens", "-cats")
	require.NoError(t, err)
	assert.Contains(t, errOut, `msg="query parsed"`)
	assert.Contains(t, errOut, "tokens=2")
	assert.Contains(t, errOut, "conditions=1")
}
