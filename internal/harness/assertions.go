package harness

import (
	"fmt"
	"strings"

	"github.com/rsanders/scoped-search/internal/ir"
	"github.com/rsanders/scoped-search/internal/parser"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Type     string  // Assertion type, or "expect" for the exact list
	Expected string  // Human-readable expected outcome
	Actual   string  // Human-readable actual outcome
	Query    *string // Query under test; nil when absent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Query != nil {
		fmt.Fprintf(&buf, "  Query: %q", *e.Query)
	} else {
		buf.WriteString("  Query: <absent>")
	}

	return buf.String()
}

// formatConditions renders conditions as like("a"), not("b").
func formatConditions(cs ir.Conditions) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatOperators(ops []ir.Operator) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = string(op)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// assertExpect checks the exact condition list.
func assertExpect(c *ir.Case, a parser.Analysis) error {
	if c.Expect.Equal(a.Conditions) {
		return nil
	}
	return &AssertionError{
		Type:     "expect",
		Expected: formatConditions(c.Expect),
		Actual:   formatConditions(a.Conditions),
		Query:    c.Query,
	}
}

// evaluateAssertion dispatches one assertion by type. Malformed assertions
// fail instead of running, since cases from ReadCases are unvalidated.
func evaluateAssertion(c *ir.Case, a parser.Analysis, assertion ir.Assertion) error {
	if err := assertion.Validate(); err != nil {
		return fmt.Errorf("invalid assertion: %w", err)
	}
	switch assertion.Type {
	case ir.AssertCount:
		return assertCount(c, a, assertion)
	case ir.AssertOperators:
		return assertOperators(c, a, assertion)
	case ir.AssertContains:
		return assertContains(c, a, assertion)
	case ir.AssertIdempotent:
		return assertIdempotent(c, a)
	case ir.AssertTruncation:
		return assertTruncation(c, a)
	default:
		return fmt.Errorf("unknown assertion type %q", assertion.Type)
	}
}

func assertCount(c *ir.Case, a parser.Analysis, assertion ir.Assertion) error {
	if len(a.Conditions) == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     ir.AssertCount,
		Expected: fmt.Sprintf("%d conditions", assertion.Count),
		Actual:   fmt.Sprintf("%d conditions %s", len(a.Conditions), formatConditions(a.Conditions)),
		Query:    c.Query,
	}
}

func assertOperators(c *ir.Case, a parser.Analysis, assertion ir.Assertion) error {
	got := a.Conditions.Operators()
	match := len(got) == len(assertion.Operators)
	for i := 0; match && i < len(got); i++ {
		match = got[i] == assertion.Operators[i]
	}
	if match {
		return nil
	}
	return &AssertionError{
		Type:     ir.AssertOperators,
		Expected: formatOperators(assertion.Operators),
		Actual:   formatOperators(got),
		Query:    c.Query,
	}
}

func assertContains(c *ir.Case, a parser.Analysis, assertion ir.Assertion) error {
	if a.Conditions.Contains(*assertion.Condition) {
		return nil
	}
	return &AssertionError{
		Type:     ir.AssertContains,
		Expected: assertion.Condition.String(),
		Actual:   "not found in " + formatConditions(a.Conditions),
		Query:    c.Query,
	}
}

func assertIdempotent(c *ir.Case, a parser.Analysis) error {
	again := parser.ParseOptional(c.Query)
	if again.Equal(a.Conditions) {
		return nil
	}
	return &AssertionError{
		Type:     ir.AssertIdempotent,
		Expected: formatConditions(a.Conditions),
		Actual:   formatConditions(again),
		Query:    c.Query,
	}
}

// assertTruncation checks that the query was cut and that the conditions
// equal those of the kept prefix alone.
func assertTruncation(c *ir.Case, a parser.Analysis) error {
	if !a.Truncated {
		return &AssertionError{
			Type:     ir.AssertTruncation,
			Expected: fmt.Sprintf("query longer than %d characters", parser.MaxQueryLength),
			Actual:   "query was not truncated",
			Query:    c.Query,
		}
	}
	prefix := parser.Parse(a.Query)
	if prefix.Equal(a.Conditions) {
		return nil
	}
	return &AssertionError{
		Type:     ir.AssertTruncation,
		Expected: formatConditions(prefix),
		Actual:   formatConditions(a.Conditions),
		Query:    c.Query,
	}
}
