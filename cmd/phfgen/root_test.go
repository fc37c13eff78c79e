package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamirms/phfmap"
)

const testKeywords = `# control flow
if
else
for
while 100
return 0x20

# declarations
fn
let
mut
`

const testManifest = `{
  // Both outputs for one table.
  "tables": [
    {
      "name": "keywords",
      "input": "keywords.txt",
      "go": {"path": "gen/keywords_gen.go", "package": "lexer"},
      "bin": "gen/keywords.phf",
    },
  ],
}
`

func setupManifest(t *testing.T) (dir, manifest string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keywords.txt"), []byte(testKeywords), 0o644))
	manifest = filepath.Join(dir, "phfgen.jsonc")
	require.NoError(t, os.WriteFile(manifest, []byte(testManifest), 0o644))
	return dir, manifest
}

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rc := NewRootCommand(strings.NewReader(""), &out, &errOut)
	rc.SetArgs(args)
	err := rc.Execute()
	return out.String(), err
}

func TestParseKeys(t *testing.T) {
	entries, err := parseKeys(strings.NewReader(testKeywords))
	require.NoError(t, err)

	got := make(map[string]uint64, len(entries))
	for _, e := range entries {
		got[string(e.Key)] = e.Value
	}
	assert.Equal(t, map[string]uint64{
		"if": 1, "else": 2, "for": 3, "while": 100, "return": 32,
		"fn": 6, "let": 7, "mut": 8,
	}, got)

	_, err = parseKeys(strings.NewReader("a 1 2\n"))
	assert.ErrorContains(t, err, "line 1")
	_, err = parseKeys(strings.NewReader("a\nb xyz\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadManifest(t *testing.T) {
	dir, manifest := setupManifest(t)

	m, err := LoadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, m.Tables, 1)

	spec := m.Tables[0]
	assert.Equal(t, "keywords", spec.Name)
	assert.Equal(t, filepath.Join(dir, "keywords.txt"), spec.Input)
	assert.Equal(t, filepath.Join(dir, "gen", "keywords.phf"), spec.Bin)
	require.NotNil(t, spec.Go)
	assert.Equal(t, filepath.Join(dir, "gen", "keywords_gen.go"), spec.Go.Path)
	assert.Equal(t, "lexer", spec.Go.Package)
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{"unknown field", `{"tables": [], "extra": 1}`, "unknown field"},
		{"bad name", `{"tables": [{"name": "key-words", "input": "k", "bin": "b"}]}`, "not a Go identifier"},
		{"no input", `{"tables": [{"name": "k", "bin": "b"}]}`, "input is required"},
		{"no output", `{"tables": [{"name": "k", "input": "k"}]}`, "at least one"},
		{"bad package", `{"tables": [{"name": "k", "input": "k", "go": {"path": "k.go", "package": "1x"}}]}`, "go.package"},
		{"duplicate", `{"tables": [
			{"name": "k", "input": "k", "bin": "a"},
			{"name": "k", "input": "k", "bin": "b"},
		]}`, "duplicate table name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.jsonc")
			require.NoError(t, os.WriteFile(path, []byte(tt.manifest), 0o644))
			_, err := LoadManifest(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuild(t *testing.T) {
	dir, manifest := setupManifest(t)

	out, err := execRoot(t, "build", "-c", manifest, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "built")
	assert.Contains(t, out, "keywords: 8 keys")

	// The generated source parses and records the stamp.
	goPath := filepath.Join(dir, "gen", "keywords_gen.go")
	src, err := os.ReadFile(goPath)
	require.NoError(t, err)
	_, err = parser.ParseFile(token.NewFileSet(), goPath, src, parser.ParseComments)
	require.NoError(t, err, "generated source:\n%s", src)
	assert.Contains(t, string(src), "// Code generated by phfgen. DO NOT EDIT.")
	assert.Contains(t, string(src), "package lexer")
	assert.Contains(t, string(src), `{Key: []byte("while"), Value: 100}`)
	assert.Contains(t, string(src), "func NewKeywordsTable() (*phfmap.Table[uint64], error)")

	// The binary table answers lookups.
	idx, err := phfmap.Open(filepath.Join(dir, "gen", "keywords.phf"))
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.Verify())
	v, ok := idx.LookupString("return")
	require.True(t, ok)
	assert.Equal(t, uint64(32), v)
	_, ok = idx.LookupString("whoo")
	assert.False(t, ok)
}

func TestBuildSkipsUnchanged(t *testing.T) {
	dir, manifest := setupManifest(t)

	_, err := execRoot(t, "build", "-c", manifest, "--no-color")
	require.NoError(t, err)

	out, err := execRoot(t, "build", "-c", manifest, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
	assert.NotContains(t, out, "built")

	out, err = execRoot(t, "build", "-c", manifest, "--no-color", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")

	// Changing a value makes both outputs stale.
	keys := strings.Replace(testKeywords, "while 100", "while 101", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keywords.txt"), []byte(keys), 0o644))

	out, err = execRoot(t, "build", "-c", manifest, "--no-color", "--check")
	require.ErrorIs(t, err, errStale)
	assert.Contains(t, out, "stale")
	assert.Contains(t, out, "keywords_gen.go")
	assert.Contains(t, out, "keywords.phf")
	assert.Contains(t, out, "101", "patch should show the new value")

	// --check wrote nothing.
	idx, err := phfmap.Open(filepath.Join(dir, "gen", "keywords.phf"))
	require.NoError(t, err)
	v, _ := idx.LookupString("while")
	assert.Equal(t, uint64(100), v)
	require.NoError(t, idx.Close())

	out, err = execRoot(t, "build", "-c", manifest, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "built")
}

func TestBuildForce(t *testing.T) {
	_, manifest := setupManifest(t)

	_, err := execRoot(t, "build", "-c", manifest, "--no-color")
	require.NoError(t, err)

	out, err := execRoot(t, "build", "-c", manifest, "--no-color", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "built")
}

func TestBuildReportsTableError(t *testing.T) {
	dir, manifest := setupManifest(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keywords.txt"), []byte("abcdXefg\nabcdYefg\n"), 0o644))

	out, err := execRoot(t, "build", "-c", manifest, "--no-color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table keywords")
	assert.Contains(t, out, "error")
}

func TestInspectAndLookup(t *testing.T) {
	dir, manifest := setupManifest(t)
	_, err := execRoot(t, "build", "-c", manifest, "--no-color")
	require.NoError(t, err)
	bin := filepath.Join(dir, "gen", "keywords.phf")

	out, err := execRoot(t, "inspect", bin, "--no-color", "--keys")
	require.NoError(t, err)
	assert.Contains(t, out, "keys:")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, `"while"`)

	out, err = execRoot(t, "lookup", bin, "while", "if", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, `"while" 100`)
	assert.Contains(t, out, `"if" 1`)

	out, err = execRoot(t, "lookup", bin, "whoo", "--no-color")
	require.ErrorIs(t, err, errMiss)
	assert.Contains(t, out, "miss")

	// A corrupted table fails inspection.
	data, err := os.ReadFile(bin)
	require.NoError(t, err)
	data[len(data)-20] ^= 0xFF
	require.NoError(t, os.WriteFile(bin, data, 0o644))

	out, err = execRoot(t, "inspect", bin, "--no-color")
	require.Error(t, err)
	assert.Contains(t, out, "corrupt")
}
