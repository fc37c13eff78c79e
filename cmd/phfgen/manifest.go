package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Manifest lists the tables phfgen builds. It is read from a JSON file that
// may contain comments and trailing commas.
type Manifest struct {
	Tables []TableSpec `json:"tables"`
}

// TableSpec describes one table.
type TableSpec struct {
	// Name identifies the table in output and prefixes generated Go
	// identifiers. It must be a valid Go identifier.
	Name string `json:"name"`

	// Input is the keyword file. Relative paths are resolved against the
	// manifest's directory.
	Input string `json:"input"`

	// Signature, when set, skips the signature search.
	Signature []int `json:"signature,omitempty"`

	MinSignatureLen int `json:"min_signature_len,omitempty"`
	RetryBudget     int `json:"retry_budget,omitempty"`

	Go  *GoOutput `json:"go,omitempty"`
	Bin string    `json:"bin,omitempty"`
}

// GoOutput configures Go source output.
type GoOutput struct {
	Path    string `json:"path"`
	Package string `json:"package"`
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(src)))
	dec.DisallowUnknownFields()
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	seen := make(map[string]bool, len(m.Tables))
	for i := range m.Tables {
		t := &m.Tables[i]
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("manifest %s: table %d: %w", path, i, err)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("manifest %s: duplicate table name %q", path, t.Name)
		}
		seen[t.Name] = true

		t.Input = resolve(t.Input)
		t.Bin = resolve(t.Bin)
		if t.Go != nil {
			t.Go.Path = resolve(t.Go.Path)
		}
	}
	return &m, nil
}

func (t *TableSpec) validate() error {
	switch {
	case !token.IsIdentifier(t.Name):
		return fmt.Errorf("name %q is not a Go identifier", t.Name)
	case t.Input == "":
		return errors.New("input is required")
	case t.Go == nil && t.Bin == "":
		return errors.New("at least one of go or bin output is required")
	}
	if t.Go != nil {
		if t.Go.Path == "" {
			return errors.New("go.path is required")
		}
		if !token.IsIdentifier(t.Go.Package) {
			return fmt.Errorf("go.package %q is not a Go identifier", t.Go.Package)
		}
	}
	return nil
}
