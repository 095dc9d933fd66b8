package parser

import "github.com/rsanders/scoped-search/internal/ir"

// negationState is the classifier's only state.
type negationState uint8

const (
	stateClear negationState = iota
	statePendingNegation
)

// fold consumes one token. emit is false for negation markers.
// Pattern-classified literals neither consult nor clear a pending negation;
// only the like/not fallback does.
func (r *Registry) fold(state negationState, tok Token) (next negationState, c ir.Condition, emit bool) {
	if tok.Kind == TokenNegation {
		return statePendingNegation, ir.Condition{}, false
	}
	if op, ok := r.classify(tok.Text); ok {
		return state, ir.Condition{Value: tok.Text, Operator: op}, true
	}
	op := ir.OpLike
	if state == statePendingNegation {
		op = ir.OpNot
	}
	return stateClear, ir.Condition{Value: tok.Text, Operator: op}, true
}

func (r *Registry) buildConditions(tokens []Token) ir.Conditions {
	conds := make(ir.Conditions, 0, len(tokens))
	state := stateClear
	for _, tok := range tokens {
		var (
			c    ir.Condition
			emit bool
		)
		state, c, emit = r.fold(state, tok)
		if emit {
			conds = append(conds, c)
		}
	}
	return conds
}

// BuildConditions classifies an already lexed token stream.
func BuildConditions(tokens []Token) ir.Conditions {
	return defaultRegistry.buildConditions(tokens)
}
