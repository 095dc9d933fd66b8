package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Files  int                        `json:"files"`
	Cases  int                        `json:"cases"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <cases-dir>",
		Short: "Validate case files without running them",
		Long: `Validate YAML and CUE case files without running the parser.

Checks syntax, the case schema (unknown fields, unknown operators) and
consistency rules such as duplicate names and assertion arguments. All
problems are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, casesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := LoadCaseDir(casesDir, LoadModeCollectAll)

	// Directory not found, no files, etc.
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d case file(s) in %s", loadResult.FileCount, casesDir)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		code := ErrCodeGeneric
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code = loadErr.Code
		}
		validationErrors = append(validationErrors, compiler.ValidationError{
			Field:   "load",
			Message: err.Error(),
			Code:    code,
		})
	}

	for _, f := range loadResult.Files {
		formatter.VerboseLog("Validating %s (%d cases)", f.Path, len(f.Cases))
	}
	cases := loadResult.Cases()
	validationErrors = append(validationErrors, compiler.Validate(cases)...)

	result := ValidationResult{
		Valid:  len(validationErrors) == 0,
		Files:  loadResult.FileCount,
		Cases:  len(cases),
		Errors: validationErrors,
	}

	if !result.Valid {
		first := validationErrors[0]
		if err := formatter.Failure(result, first.Code, first.Message); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(validationErrors)))
	}

	return formatter.Success(result)
}

// outputValidateError outputs a command-level error (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func (r ValidationResult) renderText(w io.Writer) error {
	if r.Valid {
		_, err := fmt.Fprintf(w, "✓ All cases valid (%d cases in %d files)\n", r.Cases, r.Files)
		return err
	}

	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e.Error())
	}
	return nil
}
