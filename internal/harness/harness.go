package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rsanders/scoped-search/internal/ir"
	"github.com/rsanders/scoped-search/internal/logger"
	"github.com/rsanders/scoped-search/internal/parser"
)

// Run parses the case query and checks every expectation.
// The returned error is reserved for cases that cannot run at all;
// failed expectations are reported in Result.Errors.
func Run(c *ir.Case) (*Result, error) {
	return RunContext(context.Background(), c)
}

// RunContext is Run with a context carrying the logger.
func RunContext(ctx context.Context, c *ir.Case) (*Result, error) {
	if c == nil {
		return nil, fmt.Errorf("case is nil")
	}
	log := logger.FromContext(ctx).With(slog.String("case", c.Name))

	analysis := parser.Analyze(c.Query)
	fingerprint, err := ir.Fingerprint(analysis.Conditions)
	if err != nil {
		return nil, fmt.Errorf("fingerprint case %s: %w", c.Name, err)
	}

	result := NewResult(c.Name)
	result.Conditions = analysis.Conditions
	result.Fingerprint = fingerprint
	result.Truncated = analysis.Truncated

	if c.Expect != nil {
		if err := assertExpect(c, analysis); err != nil {
			result.AddError(err.Error())
		}
	}

	for i, assertion := range c.Assertions {
		if err := evaluateAssertion(c, analysis, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	log.Debug("case finished",
		slog.Bool("pass", result.Pass),
		slog.Int("conditions", len(result.Conditions)),
		slog.Bool("truncated", result.Truncated))

	return result, nil
}

// RunAll runs every case in order.
func RunAll(ctx context.Context, cases []ir.Case) ([]*Result, error) {
	results := make([]*Result, 0, len(cases))
	for i := range cases {
		r, err := RunContext(ctx, &cases[i])
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
