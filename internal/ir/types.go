package ir

import (
	"fmt"
	"regexp"
)

// Operator is the semantic comparison kind attached to a condition.
type Operator string

// The closed operator set.
const (
	OpLike                     Operator = "like"
	OpNot                      Operator = "not"
	OpOr                       Operator = "or"
	OpBetweenDates             Operator = "between_dates"
	OpGreaterThanDate          Operator = "greater_than_date"
	OpLessThanDate             Operator = "less_than_date"
	OpGreaterThanOrEqualToDate Operator = "greater_than_or_equal_to_date"
	OpLessThanOrEqualToDate    Operator = "less_than_or_equal_to_date"
	OpAsOfDate                 Operator = "as_of_date"
)

// Operators lists every valid operator in a stable order.
var Operators = []Operator{
	OpLike,
	OpNot,
	OpOr,
	OpBetweenDates,
	OpGreaterThanDate,
	OpLessThanDate,
	OpGreaterThanOrEqualToDate,
	OpLessThanOrEqualToDate,
	OpAsOfDate,
}

// Valid reports whether o is one of the closed operator set.
func (o Operator) Valid() bool {
	for _, op := range Operators {
		if op == o {
			return true
		}
	}
	return false
}

// IsDate reports whether o compares against a date.
func (o Operator) IsDate() bool {
	switch o {
	case OpBetweenDates, OpGreaterThanDate, OpLessThanDate,
		OpGreaterThanOrEqualToDate, OpLessThanOrEqualToDate, OpAsOfDate:
		return true
	}
	return false
}

func (o Operator) String() string {
	return string(o)
}

// ParseOperator converts a wire name into an Operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", fmt.Errorf("unknown operator %q", s)
	}
	return op, nil
}

// Condition is one predicate descriptor extracted from a query.
//
// The downstream query builder maps each condition to a concrete filter
// using its own field knowledge. For OpOr the value still contains the OR
// connective; splitting it is the consumer's job.
type Condition struct {
	Value    string   `json:"value" yaml:"value"`
	Operator Operator `json:"operator" yaml:"operator"`
}

func (c Condition) String() string {
	return fmt.Sprintf("%s(%q)", c.Operator, c.Value)
}

// Conditions is the ordered predicate list produced for one query.
// An empty list means "no constraints".
type Conditions []Condition

// Operators returns the operator of every condition, in order.
func (cs Conditions) Operators() []Operator {
	ops := make([]Operator, len(cs))
	for i, c := range cs {
		ops[i] = c.Operator
	}
	return ops
}

// Equal reports whether both lists hold the same conditions in the same order.
func (cs Conditions) Equal(other Conditions) bool {
	if len(cs) != len(other) {
		return false
	}
	for i := range cs {
		if cs[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether c appears anywhere in the list.
func (cs Conditions) Contains(c Condition) bool {
	for _, existing := range cs {
		if existing == c {
			return true
		}
	}
	return false
}

// Case is a conformance case: one query and what parsing it must produce.
//
// A nil Query means the input is absent, which must yield no conditions.
type Case struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Query       *string     `json:"query,omitempty" yaml:"query,omitempty"`
	Expect      Conditions  `json:"expect,omitempty" yaml:"expect,omitempty"`
	Assertions  []Assertion `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

var caseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidCaseName reports whether name can key a golden file: one path
// segment, never "." or "..".
func ValidCaseName(name string) bool {
	return name != "." && name != ".." && caseNamePattern.MatchString(name)
}

// Assertion is a property checked against the conditions of a Case.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `json:"type" yaml:"type"`

	// Count is the expected number of conditions (count).
	Count int `json:"count,omitempty" yaml:"count,omitempty"`

	// Operators is the expected operator sequence (operators).
	Operators []Operator `json:"operators,omitempty" yaml:"operators,omitempty"`

	// Condition must appear in the output (contains).
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Assertion type constants.
const (
	AssertCount      = "count"
	AssertOperators  = "operators"
	AssertContains   = "contains"
	AssertIdempotent = "idempotent"
	AssertTruncation = "truncation"
)

// Validate checks that required fields are present and operators are known.
func (c *Case) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidCaseName(c.Name) {
		return fmt.Errorf("name %q must be a single path segment of letters, digits, '_', '.' or '-'", c.Name)
	}
	for i, cond := range c.Expect {
		if !cond.Operator.Valid() {
			return fmt.Errorf("expect[%d]: unknown operator %q", i, cond.Operator)
		}
		if cond.Value == "" {
			return fmt.Errorf("expect[%d]: value is required", i)
		}
	}
	if c.Expect == nil && len(c.Assertions) == 0 {
		return fmt.Errorf("case needs expect or at least one assertion")
	}
	for i := range c.Assertions {
		if err := c.Assertions[i].Validate(); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate checks that the fields required by the assertion type are set.
func (a *Assertion) Validate() error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative")
		}
	case AssertOperators:
		for i, op := range a.Operators {
			if !op.Valid() {
				return fmt.Errorf("operators[%d]: unknown operator %q", i, op)
			}
		}
	case AssertContains:
		if a.Condition == nil {
			return fmt.Errorf("condition is required for contains")
		}
		if !a.Condition.Operator.Valid() {
			return fmt.Errorf("unknown operator %q", a.Condition.Operator)
		}
	case AssertIdempotent, AssertTruncation:
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
