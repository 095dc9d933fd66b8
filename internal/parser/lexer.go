package parser

import (
	"regexp"
	"strings"
)

// TokenKind distinguishes literal tokens from negation markers.
type TokenKind int

const (
	// TokenLiteral carries cleaned query text.
	TokenLiteral TokenKind = iota
	// TokenNegation precedes a literal whose raw match began with '-'.
	TokenNegation
)

func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "literal"
	case TokenNegation:
		return "negation"
	default:
		return "unknown"
	}
}

// Token is one lexer output element.
type Token struct {
	Kind TokenKind `json:"kind"`
	// Text is the cleaned literal; empty for negation markers.
	Text string `json:"text,omitempty"`
	// Category names the registry category that produced the raw match.
	Category string `json:"category,omitempty"`
}

var (
	negationHyphen = regexp.MustCompile(`(^|[ ])-`)
	spaceRun       = regexp.MustCompile(` {2,}`)
)

// cleanToken strips double quotes and negation hyphens and collapses runs
// of spaces. A hyphen after a space is dropped but the space is kept.
func cleanToken(raw string) string {
	s := strings.ReplaceAll(raw, `"`, "")
	s = negationHyphen.ReplaceAllString(s, "$1")
	return spaceRun.ReplaceAllString(s, " ")
}

func (r *Registry) tokenize(query string) []Token {
	var tokens []Token
	for _, m := range r.scan(query) {
		if strings.HasPrefix(m.text, "-") {
			tokens = append(tokens, Token{Kind: TokenNegation})
		}
		if cleaned := cleanToken(m.text); cleaned != "" {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: cleaned, Category: m.category.Name})
		}
	}
	return tokens
}

// Tokenize truncates query and returns its token stream.
func Tokenize(query string) []Token {
	q, _ := Truncate(query)
	return defaultRegistry.tokenize(q)
}
