package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/compiler"
	"github.com/rsanders/scoped-search/internal/harness"
	"github.com/rsanders/scoped-search/internal/ir"
)

// Golden file states reported per case.
const (
	GoldenNone     = ""
	GoldenMatched  = "matched"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // case name filter (glob pattern)
}

// CaseResult holds the result of a single case.
type CaseResult struct {
	Name        string   `json:"name"`
	File        string   `json:"file"`
	Pass        bool     `json:"pass"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Golden      string   `json:"golden,omitempty"`
	Code        string   `json:"code,omitempty"` // E0xx code when Pass is false
	Errors      []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Cases  []CaseResult `json:"cases"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Total  int          `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <cases-dir>",
		Short: "Run conformance cases",
		Long: `Run every case in the YAML and CUE case files under a directory.

Each case's query is parsed and checked against its expected conditions
and assertions. When golden/<case>.golden exists next to the case file,
the canonical result must also match it byte for byte.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (invalid paths, invalid case files, etc.)

Examples:
  scoped-search test ./cases
  scoped-search test ./cases --filter "date_*"
  scoped-search test ./cases --update
  scoped-search test ./cases --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by name (glob pattern)")

	return cmd
}

func runTests(opts *TestOptions, casesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
	}

	loadResult, loadErrors := LoadCaseDir(casesDir, LoadModeFailFast)
	if loadResult == nil {
		loadErr := loadErrors[0]
		if le, ok := loadErr.(*LoadError); ok && le.Code == ErrCodeNoFiles {
			if formatter.IsJSON() {
				return formatter.Success(TestResult{Cases: []CaseResult{}})
			}
			fmt.Fprintln(formatter.Writer, "No cases found.")
			return nil
		}
		return WrapExitError(ExitCommandError, "failed to load cases", loadErr)
	}
	if len(loadErrors) > 0 {
		return WrapExitError(ExitCommandError, "failed to load cases", loadErrors[0])
	}

	if errs := compiler.Validate(loadResult.Cases()); len(errs) > 0 {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("invalid cases (%d error(s), run validate for all)", len(errs)), errs[0])
	}

	result := TestResult{Cases: []CaseResult{}}
	for _, f := range loadResult.Files {
		for i := range f.Cases {
			c := &f.Cases[i]
			if opts.Filter != "" {
				if matched, _ := filepath.Match(opts.Filter, c.Name); !matched {
					continue
				}
			}

			cr := runCase(cmd.Context(), f.Path, c, opts.Update)
			if !formatter.IsJSON() {
				printCaseResult(formatter.Writer, cr)
			}

			result.Cases = append(result.Cases, cr)
			result.Total++
			if cr.Pass {
				result.Passed++
			} else {
				result.Failed++
			}
		}
	}

	if result.Total == 0 {
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No cases found.")
		return nil
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d case(s) failed", result.Failed)
		if err := formatter.Failure(result, result.failureCode(), msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(result)
}

// runCase executes one case and compares or rewrites its golden file.
func runCase(ctx context.Context, file string, c *ir.Case, update bool) CaseResult {
	cr := CaseResult{Name: c.Name, File: file, Pass: true}
	failWith := func(code string, msgs ...string) CaseResult {
		if cr.Pass {
			cr.Code = code
		}
		cr.Pass = false
		cr.Errors = append(cr.Errors, msgs...)
		return cr
	}
	fail := func(msgs ...string) CaseResult {
		return failWith(ErrCodeCaseFailed, msgs...)
	}

	res, err := harness.RunContext(ctx, c)
	if err != nil {
		return fail(fmt.Sprintf("execution failed: %v", err))
	}
	cr.Fingerprint = res.Fingerprint

	snapshot, err := harness.Snapshot(c, res)
	if err != nil {
		return fail(fmt.Sprintf("failed to build snapshot: %v", err))
	}
	goldenPath, err := harness.GoldenPath(file, c.Name)
	if err != nil {
		return fail(err.Error())
	}

	if update {
		if err := harness.WriteGolden(goldenPath, snapshot); err != nil {
			return failWith(ErrCodeWriteFailed, fmt.Sprintf("golden update error: %v", err))
		}
		cr.Golden = GoldenUpdated
	} else {
		match, exists, err := harness.CompareGolden(goldenPath, snapshot)
		switch {
		case err != nil:
			return failWith(ErrCodeReadFailed, fmt.Sprintf("golden comparison failed: %v", err))
		case exists && !match:
			cr.Golden = GoldenMismatch
			fail("golden file mismatch (run with --update to regenerate)")
		case exists:
			cr.Golden = GoldenMatched
		}
	}

	if !res.Pass {
		return fail(res.Errors...)
	}
	return cr
}

// failureCode is the code of the first failed case that could not touch
// its golden file, or ErrCodeCaseFailed when every failure is a mismatch.
func (r TestResult) failureCode() string {
	for _, c := range r.Cases {
		if !c.Pass && c.Code != ErrCodeCaseFailed && c.Code != "" {
			return c.Code
		}
	}
	return ErrCodeCaseFailed
}

func printCaseResult(w io.Writer, cr CaseResult) {
	if cr.Pass {
		if cr.Golden == GoldenUpdated {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", cr.Name)
			return
		}
		fmt.Fprintf(w, "✓ %s\n", cr.Name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", cr.Name)
	for _, e := range cr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func (r TestResult) renderText(w io.Writer) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	if r.Failed == 0 {
		fmt.Fprintln(w, "✓ All cases passed")
	}
	return nil
}
