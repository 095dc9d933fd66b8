package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rsanders/scoped-search/internal/compiler"
	"github.com/rsanders/scoped-search/internal/ir"
)

// caseFile is the YAML document layout.
type caseFile struct {
	Cases []ir.Case `yaml:"cases"`
}

// LoadCases reads a case file and validates every case in it.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or declares an invalid case.
func LoadCases(path string) ([]ir.Case, error) {
	cases, err := ReadCases(path)
	if err != nil {
		return nil, err
	}
	for i := range cases {
		if err := cases[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid case %d (%s): %w", i, cases[i].Name, err)
		}
	}
	return cases, nil
}

// ReadCases decodes a case file without validating the cases. The format
// is chosen by extension: .yaml and .yml are YAML, .cue is CUE.
func ReadCases(path string) ([]ir.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	var cases []ir.Case
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		cases, err = decodeYAML(data)
	case ".cue":
		cases, err = compiler.CompileSource(path, data)
	default:
		return nil, fmt.Errorf("unsupported case file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(cases) == 0 {
		return nil, fmt.Errorf("invalid case file: no cases declared")
	}
	return cases, nil
}

func decodeYAML(data []byte) ([]ir.Case, error) {
	var file caseFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return file.Cases, nil
}

// FindCaseFiles walks dir for .yaml, .yml and .cue case files.
// When filter is non-empty, only files whose base name (without extension)
// matches the glob are returned. Files under golden/ directories are skipped.
func FindCaseFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if info.Name() == goldenDir && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" && ext != ".cue" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}
