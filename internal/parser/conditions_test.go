package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsanders/scoped-search/internal/ir"
)

func TestFold(t *testing.T) {
	r := defaultRegistry

	state, _, emit := r.fold(stateClear, Token{Kind: TokenNegation})
	assert.Equal(t, statePendingNegation, state)
	assert.False(t, emit)

	state, c, emit := r.fold(statePendingNegation, Token{Kind: TokenLiteral, Text: "20240101"})
	assert.True(t, emit)
	assert.Equal(t, statePendingNegation, state, "date tokens leave negation pending")
	assert.Equal(t, ir.OpAsOfDate, c.Operator)

	state, c, emit = r.fold(statePendingNegation, Token{Kind: TokenLiteral, Text: "foo"})
	assert.True(t, emit)
	assert.Equal(t, stateClear, state)
	assert.Equal(t, ir.OpNot, c.Operator)

	state, c, _ = r.fold(stateClear, Token{Kind: TokenLiteral, Text: "foo"})
	assert.Equal(t, stateClear, state)
	assert.Equal(t, ir.OpLike, c.Operator)
}

func TestBuildConditions_ClassifyOrder(t *testing.T) {
	// A cleaned token holding both OR and a date range is an OR pair.
	tokens := []Token{{Kind: TokenLiteral, Text: "20240101 OR 20241231"}}
	assert.Equal(t, ir.Conditions{{Value: "20240101 OR 20241231", Operator: ir.OpOr}}, BuildConditions(tokens))
}

func TestBuildConditions_Empty(t *testing.T) {
	got := BuildConditions(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
