package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/rsanders/scoped-search/internal/compiler"
	"github.com/rsanders/scoped-search/internal/harness"
	"github.com/rsanders/scoped-search/internal/ir"
)

// LoadMode controls how errors are handled during case loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadedFile is one case file and the cases it declares.
type LoadedFile struct {
	Path  string
	Cases []ir.Case
}

// LoadResult contains the case files found in a directory.
type LoadResult struct {
	Files     []LoadedFile
	FileCount int // Number of case files found, loaded or not
}

// Cases returns every loaded case in file order.
func (r *LoadResult) Cases() []ir.Case {
	var all []ir.Case
	for _, f := range r.Files {
		all = append(all, f.Cases...)
	}
	return all
}

// LoadError represents an error that occurred during case loading.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCaseDir reads every case file under dir. Cases are decoded but not
// validated; run compiler.Validate over LoadResult.Cases for that.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadCaseDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("cases directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing cases directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := harness.FindCaseFiles(dir, "")
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no case files found in %s", dir)}}
	}

	result := &LoadResult{FileCount: len(files)}
	var errs []error
	for _, path := range files {
		cases, err := harness.ReadCases(path)
		if err != nil {
			errs = append(errs, convertLoadError(path, err))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Files = append(result.Files, LoadedFile{Path: path, Cases: cases})
	}

	return result, errs
}

// convertLoadError converts a harness or compiler error to a LoadError
// with position info.
func convertLoadError(path string, err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Path:    path,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: err.Error(),
		Path:    path,
	}
}

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No case files found
	ErrCodeLoadFailed  = "E004" // Case file could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeReadFailed  = "E006" // Query input or golden file could not be read
	ErrCodeWriteFailed = "E007" // Golden file could not be written
	ErrCodeCaseFailed  = "E008" // One or more cases failed
	ErrCodeConfig      = "E009" // Configuration invalid
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "expect":
		return compiler.ErrCaseNoExpectation
	case "operator":
		return compiler.ErrUnknownOperator
	case "assertions":
		return compiler.ErrInvalidAssertion
	default:
		return ErrCodeLoadFailed
	}
}
