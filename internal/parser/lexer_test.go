package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanToken(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"a"`, "a"},
		{"-foo", "foo"},
		{`"a -b"`, "a b"},
		{`"foo -bar"`, "foo bar"},
		{`"a  b"`, "a b"},
		{"x-ray", "x-ray"},
		{`-"a   -b"`, "a b"},
		{`""`, ""},
		{"2024-01-01   TO  2024-12-31", "2024-01-01 TO 2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanToken(tt.raw))
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize(`hello -"new york" >=2024-01-01 !!`)
	assert.Equal(t, []Token{
		{Kind: TokenLiteral, Text: "hello", Category: CategoryWord},
		{Kind: TokenNegation},
		{Kind: TokenLiteral, Text: "new york", Category: CategoryQuotedString},
		{Kind: TokenLiteral, Text: ">=2024-01-01", Category: CategoryGreaterThanOrEqualToDate},
	}, got)
}

func TestTokenize_NegationMarkerSurvivesEmptyLiteral(t *testing.T) {
	assert.Equal(t, []Token{{Kind: TokenNegation}}, Tokenize(`-""`))
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("  ,,  "))
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "literal", TokenLiteral.String())
	assert.Equal(t, "negation", TokenNegation.String())
	assert.Equal(t, "unknown", TokenKind(9).String())
}
