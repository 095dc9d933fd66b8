package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/rsanders/scoped-search/internal/ir"
)

//go:embed schema.cue
var schemaSource []byte

// CompileSource compiles a CUE case file into conformance cases.
//
// The file declares cases under a top-level "case" struct keyed by name:
//
//	case: negated_word: {
//		query: "-urgent"
//		expect: [{value: "urgent", operator: "not"}]
//	}
//
// The source is unified with the embedded #Case schema first, so unknown
// fields and unknown operators are reported with their file position.
func CompileSource(filename string, src []byte) ([]ir.Case, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	merged := schema.Unify(v)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := merged.LookupPath(cue.ParsePath("case")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cases []ir.Case
	for iter.Next() {
		c, err := CompileCase(iter.Value())
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	if len(cases) == 0 {
		return nil, &CompileError{
			Field:   "case",
			Message: "no cases declared",
			Pos:     v.Pos(),
		}
	}
	return cases, nil
}

// CompileCase parses a single CUE case value. The case name is taken from
// the value's struct label.
func CompileCase(v cue.Value) (*ir.Case, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &ir.Case{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		c.Name = labels[len(labels)-1].Unquoted()
	}

	if descVal := v.LookupPath(cue.ParsePath("description")); descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		c.Description = desc
	}

	// A missing query and an explicit null both mean absent input.
	if queryVal := v.LookupPath(cue.ParsePath("query")); queryVal.Exists() && queryVal.Kind() != cue.NullKind {
		q, err := queryVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		c.Query = &q
	}

	if expectVal := v.LookupPath(cue.ParsePath("expect")); expectVal.Exists() {
		expect, err := parseConditions(expectVal)
		if err != nil {
			return nil, err
		}
		c.Expect = expect
	}

	if assertVal := v.LookupPath(cue.ParsePath("assertions")); assertVal.Exists() {
		iter, err := assertVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			a, err := parseAssertion(iter.Value())
			if err != nil {
				return nil, err
			}
			c.Assertions = append(c.Assertions, a)
		}
	}

	if c.Expect == nil && len(c.Assertions) == 0 {
		return nil, &CompileError{
			Field:   "expect",
			Message: fmt.Sprintf("case %s needs expect or at least one assertion", c.Name),
			Pos:     v.Pos(),
		}
	}

	return c, nil
}

// parseConditions parses a list of {value, operator} structs. An empty
// list yields a non-nil empty Conditions.
func parseConditions(v cue.Value) (ir.Conditions, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	conds := ir.Conditions{}
	for iter.Next() {
		cond, err := parseCondition(iter.Value())
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func parseCondition(v cue.Value) (ir.Condition, error) {
	value, err := v.LookupPath(cue.ParsePath("value")).String()
	if err != nil {
		return ir.Condition{}, formatCUEError(err)
	}
	opStr, err := v.LookupPath(cue.ParsePath("operator")).String()
	if err != nil {
		return ir.Condition{}, formatCUEError(err)
	}
	op, err := ir.ParseOperator(opStr)
	if err != nil {
		return ir.Condition{}, &CompileError{Field: "operator", Message: err.Error(), Pos: v.Pos()}
	}
	return ir.Condition{Value: value, Operator: op}, nil
}

func parseAssertion(v cue.Value) (ir.Assertion, error) {
	var a ir.Assertion

	typ, err := v.LookupPath(cue.ParsePath("type")).String()
	if err != nil {
		return a, formatCUEError(err)
	}
	a.Type = typ

	if countVal := v.LookupPath(cue.ParsePath("count")); countVal.Exists() {
		n, err := countVal.Int64()
		if err != nil {
			return a, formatCUEError(err)
		}
		a.Count = int(n)
	}

	if opsVal := v.LookupPath(cue.ParsePath("operators")); opsVal.Exists() {
		iter, err := opsVal.List()
		if err != nil {
			return a, formatCUEError(err)
		}
		a.Operators = []ir.Operator{}
		for iter.Next() {
			s, err := iter.Value().String()
			if err != nil {
				return a, formatCUEError(err)
			}
			a.Operators = append(a.Operators, ir.Operator(s))
		}
	}

	if condVal := v.LookupPath(cue.ParsePath("condition")); condVal.Exists() {
		cond, err := parseCondition(condVal)
		if err != nil {
			return a, err
		}
		a.Condition = &cond
	}

	if err := a.Validate(); err != nil {
		return a, &CompileError{Field: "assertions", Message: err.Error(), Pos: v.Pos()}
	}
	return a, nil
}

// CompileError is a case compilation failure with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with a position wins.
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
