package compiler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rsanders/scoped-search/internal/ir"
	"github.com/rsanders/scoped-search/internal/parser"
)

// Validation error codes (E100-E199)
const (
	ErrCaseNameEmpty     = "E101" // name is required
	ErrCaseNoExpectation = "E102" // expect or assertions required
	ErrUnknownOperator   = "E103" // operator outside the closed set
	ErrEmptyValue        = "E104" // condition value must be non-empty
	ErrInvalidAssertion  = "E105" // assertion fields do not fit its type
	ErrDuplicateCase     = "E106" // two cases share a name
	ErrTruncationUnfit   = "E107" // truncation assertion on a short query
	ErrCaseNameInvalid   = "E108" // name is not a single safe path segment
)

// ValidationError represents a case validation error.
type ValidationError struct {
	Case    string `json:"case"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Case != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Case, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a set of cases against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(cases []ir.Case) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(cases))

	for i := range cases {
		c := &cases[i]
		if c.Name != "" {
			if seen[c.Name] {
				errs = append(errs, ValidationError{
					Case:    c.Name,
					Field:   "name",
					Message: "duplicate case name",
					Code:    ErrDuplicateCase,
				})
			}
			seen[c.Name] = true
		}
		errs = append(errs, validateCase(c)...)
	}

	return errs
}

func validateCase(c *ir.Case) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Case:    c.Name,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if strings.TrimSpace(c.Name) == "" {
		add("name", ErrCaseNameEmpty, "name is required")
	} else if !ir.ValidCaseName(c.Name) {
		add("name", ErrCaseNameInvalid, "name must use only letters, digits, '_', '.' or '-'")
	}
	if c.Expect == nil && len(c.Assertions) == 0 {
		add("expect", ErrCaseNoExpectation, "case needs expect or at least one assertion")
	}

	for i, cond := range c.Expect {
		field := fmt.Sprintf("expect[%d]", i)
		if !cond.Operator.Valid() {
			add(field, ErrUnknownOperator, "unknown operator %q", cond.Operator)
		}
		if cond.Value == "" {
			add(field, ErrEmptyValue, "value is required")
		}
	}

	for i := range c.Assertions {
		a := &c.Assertions[i]
		field := fmt.Sprintf("assertions[%d]", i)
		if err := a.Validate(); err != nil {
			add(field, ErrInvalidAssertion, "%v", err)
			continue
		}
		if a.Type == ir.AssertTruncation {
			if c.Query == nil || utf8.RuneCountInString(*c.Query) <= parser.MaxQueryLength {
				add(field, ErrTruncationUnfit, "truncation needs a query longer than %d characters", parser.MaxQueryLength)
			}
		}
	}

	return errs
}
