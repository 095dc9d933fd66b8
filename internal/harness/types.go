package harness

import "github.com/rsanders/scoped-search/internal/ir"

// Result is the outcome of running one case.
type Result struct {
	// Case is the case name.
	Case string `json:"case"`

	// Pass is true when the expect list and every assertion hold.
	Pass bool `json:"pass"`

	// Conditions is what the parser produced.
	Conditions ir.Conditions `json:"conditions"`

	// Fingerprint identifies Conditions (see ir.Fingerprint).
	Fingerprint string `json:"fingerprint"`

	// Truncated reports whether the query exceeded the maximum length.
	Truncated bool `json:"truncated"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Case:       name,
		Pass:       true,
		Conditions: ir.Conditions{},
		Errors:     []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
