package harness

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsanders/scoped-search/internal/ir"
)

func strPtr(s string) *string { return &s }

func TestRun_Pass(t *testing.T) {
	c := &ir.Case{
		Name:   "pass",
		Query:  strPtr("hello -world"),
		Expect: ir.Conditions{{Value: "hello", Operator: ir.OpLike}, {Value: "world", Operator: ir.OpNot}},
		Assertions: []ir.Assertion{
			{Type: ir.AssertCount, Count: 2},
			{Type: ir.AssertOperators, Operators: []ir.Operator{ir.OpLike, ir.OpNot}},
			{Type: ir.AssertContains, Condition: &ir.Condition{Value: "world", Operator: ir.OpNot}},
			{Type: ir.AssertIdempotent},
		},
	}

	result, err := Run(c)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "pass", result.Case)
	assert.Len(t, result.Conditions, 2)
	assert.Equal(t, ir.MustFingerprint(result.Conditions), result.Fingerprint)
	assert.False(t, result.Truncated)
}

func TestRun_ExpectMismatch(t *testing.T) {
	c := &ir.Case{
		Name:   "mismatch",
		Query:  strPtr("cats"),
		Expect: ir.Conditions{{Value: "cats", Operator: ir.OpNot}},
	}

	result, err := Run(c)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: expect")
	assert.Contains(t, result.Errors[0], `not("cats")`)
	assert.Contains(t, result.Errors[0], `like("cats")`)
	assert.Contains(t, result.Errors[0], `Query: "cats"`)
}

func TestRun_AssertionFailures(t *testing.T) {
	tests := []struct {
		name      string
		assertion ir.Assertion
		wantType  string
	}{
		{"count", ir.Assertion{Type: ir.AssertCount, Count: 5}, ir.AssertCount},
		{"operators", ir.Assertion{Type: ir.AssertOperators, Operators: []ir.Operator{ir.OpNot}}, ir.AssertOperators},
		{"operators length", ir.Assertion{Type: ir.AssertOperators, Operators: []ir.Operator{ir.OpLike, ir.OpLike}}, ir.AssertOperators},
		{
			"contains",
			ir.Assertion{Type: ir.AssertContains, Condition: &ir.Condition{Value: "dogs", Operator: ir.OpLike}},
			ir.AssertContains,
		},
		{"truncation", ir.Assertion{Type: ir.AssertTruncation}, ir.AssertTruncation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ir.Case{Name: tt.name, Query: strPtr("cats"), Assertions: []ir.Assertion{tt.assertion}}
			result, err := Run(c)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "assertions[0]: Assertion failed: "+tt.wantType)
		})
	}
}

func TestRun_MalformedAssertionFails(t *testing.T) {
	tests := []struct {
		name      string
		assertion ir.Assertion
		wantErr   string
	}{
		{"contains without condition", ir.Assertion{Type: ir.AssertContains}, "condition is required"},
		{"negative count", ir.Assertion{Type: ir.AssertCount, Count: -1}, "non-negative"},
		{"unknown type", ir.Assertion{Type: "trace_order"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ir.Case{Name: "malformed", Query: strPtr("cats"), Assertions: []ir.Assertion{tt.assertion}}
			var result *Result
			require.NotPanics(t, func() {
				var err error
				result, err = Run(c)
				require.NoError(t, err)
			})
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "assertions[0]: invalid assertion")
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestRun_Absent(t *testing.T) {
	c := &ir.Case{Name: "absent", Expect: ir.Conditions{}}
	result, err := Run(c)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.NotNil(t, result.Conditions)
	assert.Empty(t, result.Conditions)
}

func TestRun_AbsentFailureMessage(t *testing.T) {
	c := &ir.Case{Name: "absent", Assertions: []ir.Assertion{{Type: ir.AssertCount, Count: 1}}}
	result, err := Run(c)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Query: <absent>")
}

func TestRun_Truncation(t *testing.T) {
	q := strings.Repeat("a ", 150) + "tail"
	c := &ir.Case{Name: "long", Query: &q, Assertions: []ir.Assertion{
		{Type: ir.AssertTruncation},
		{Type: ir.AssertCount, Count: 150},
	}}

	result, err := Run(c)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.True(t, result.Truncated)
}

func TestRun_NilCase(t *testing.T) {
	_, err := Run(nil)
	assert.Error(t, err)
}

func TestRunAll(t *testing.T) {
	cases := []ir.Case{
		{Name: "a", Query: strPtr("a"), Expect: ir.Conditions{{Value: "a", Operator: ir.OpLike}}},
		{Name: "b", Query: strPtr("b"), Expect: ir.Conditions{{Value: "x", Operator: ir.OpLike}}},
	}
	results, err := RunAll(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Pass)
	assert.False(t, results[1].Pass)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult("x")
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
