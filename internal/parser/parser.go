package parser

import "github.com/rsanders/scoped-search/internal/ir"

// MaxQueryLength is the number of characters (runes) considered per query.
const MaxQueryLength = 300

// Analysis exposes every stage of one parse.
type Analysis struct {
	// Absent is true when no input was supplied at all.
	Absent bool `json:"absent"`
	// Truncated is true when the input exceeded MaxQueryLength.
	Truncated bool `json:"truncated"`
	// Query is the text actually lexed.
	Query      string        `json:"query"`
	Tokens     []Token       `json:"tokens"`
	Conditions ir.Conditions `json:"conditions"`
}

// Truncate keeps the first MaxQueryLength runes of query.
func Truncate(query string) (string, bool) {
	n := 0
	for i := range query {
		if n == MaxQueryLength {
			return query[:i], true
		}
		n++
	}
	return query, false
}

// Analyze parses query and reports intermediate results.
// A nil query is absent input and yields an empty, non-nil condition list.
func Analyze(query *string) Analysis {
	if query == nil {
		return Analysis{Absent: true, Tokens: []Token{}, Conditions: ir.Conditions{}}
	}
	q, truncated := Truncate(*query)
	tokens := defaultRegistry.tokenize(q)
	if tokens == nil {
		tokens = []Token{}
	}
	return Analysis{
		Truncated:  truncated,
		Query:      q,
		Tokens:     tokens,
		Conditions: defaultRegistry.buildConditions(tokens),
	}
}

// Parse compiles query into its ordered conditions.
func Parse(query string) ir.Conditions {
	return Analyze(&query).Conditions
}

// ParseOptional is Parse for possibly absent input.
func ParseOptional(query *string) ir.Conditions {
	return Analyze(query).Conditions
}
