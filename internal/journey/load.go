package journey

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"gopkg.in/yaml.v3"
)

// Load reads a single journey file, dispatching on extension.
// Supported: .cue, .yaml, .yml.
func Load(path string) (*Journey, error) {
	switch filepath.Ext(path) {
	case ".cue":
		return loadCUEFile(path)
	case ".yaml", ".yml":
		return loadYAMLFile(path)
	default:
		return nil, &ParseError{Field: "file", Message: fmt.Sprintf("unsupported journey format: %s", path)}
	}
}

// LoadDir loads every journey file in a directory, sorted by filename for
// deterministic batch order. Errors are collected per journey: a malformed
// journey never aborts the rest of the batch.
func LoadDir(dir string) ([]*Journey, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("reading journeys directory: %w", err)}
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".cue", ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var journeys []*Journey
	var errs []error
	for _, p := range paths {
		j, err := Load(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		journeys = append(journeys, j)
	}
	if len(journeys) == 0 && len(errs) == 0 {
		errs = append(errs, fmt.Errorf("no journey files found in %s", dir))
	}
	return journeys, errs
}

// loadCUEFile compiles one .cue file and extracts the journey under the
// top-level "journey" struct. A file holding several journeys yields only
// the first in label order; author one journey per file.
func loadCUEFile(path string) (*Journey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading journey file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("journey"))
	if !root.Exists() {
		return nil, &ParseError{Field: "journey", Message: "no top-level journey struct", Pos: v.Pos()}
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if !iter.Next() {
		return nil, &ParseError{Field: "journey", Message: "journey struct is empty", Pos: root.Pos()}
	}
	return CompileCUE(iter.Value())
}

// loadYAMLFile parses one YAML journey with strict field validation, so a
// typo like "criterias:" fails loudly instead of silently dropping steps.
func loadYAMLFile(path string) (*Journey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading journey file: %w", err)
	}

	var j Journey
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&j); err != nil {
		return nil, &ParseError{Field: "yaml", Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if err := j.Validate(); err != nil {
		return nil, err
	}
	return &j, nil
}
