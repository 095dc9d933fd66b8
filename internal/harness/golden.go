package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/rsanders/scoped-search/internal/ir"
)

const goldenDir = "golden"

// Snapshot renders a case run as canonical JSON for golden comparison.
// The query key is omitted for absent input.
func Snapshot(c *ir.Case, r *Result) ([]byte, error) {
	snap := map[string]any{
		"case":        c.Name,
		"conditions":  r.Conditions,
		"fingerprint": r.Fingerprint,
		"truncated":   r.Truncated,
	}
	if c.Query != nil {
		snap["query"] = *c.Query
	}
	return ir.MarshalCanonical(snap)
}

// RunWithGolden runs a case and compares its snapshot against
// testdata/golden/{case.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, c *ir.Case) (*Result, error) {
	t.Helper()

	if c != nil && !ir.ValidCaseName(c.Name) {
		return nil, fmt.Errorf("case name %q cannot name a golden file", c.Name)
	}
	result, err := Run(c)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(c, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, c.Name, data)

	return result, nil
}

// GoldenPath returns the golden file for a case declared in caseFile.
// The case name must be a single path segment so the file stays inside
// the golden directory.
func GoldenPath(caseFile, caseName string) (string, error) {
	if filepath.Base(caseName) != caseName || !ir.ValidCaseName(caseName) {
		return "", fmt.Errorf("case name %q cannot name a golden file", caseName)
	}
	return filepath.Join(filepath.Dir(caseFile), goldenDir, caseName+".golden"), nil
}

// WriteGolden writes data to path, creating the golden directory.
func WriteGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the golden file at path holds exactly data.
// exists is false when there is no golden file yet.
func CompareGolden(path string, data []byte) (match, exists bool, err error) {
	golden, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(golden, data), true, nil
}
