package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tamirms/phfmap"
)

// errStale is returned by build --check when an output is out of date.
var errStale = errors.New("outputs are out of date")

// BuildCommand builds every table in a manifest.
type BuildCommand struct {
	Manifest string
	Jobs     int
	Force    bool
	Check    bool
	Verbose  bool
	NoColor  bool

	Stdout io.Writer
	Stderr io.Writer
}

type buildStatus int

const (
	statusBuilt buildStatus = iota
	statusUnchanged
	statusStale
)

type buildResult struct {
	status buildStatus
	stats  phfmap.Stats
	sig    []int
	stale  []string // out of date output paths
	diff   string   // patch for a stale Go output
}

func newBuildCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	bc := &BuildCommand{Stdout: stdout, Stderr: stderr}
	ccmd := &cobra.Command{
		Use:   "build",
		Short: "Build the tables listed in a manifest",
		Long: `
Builds every table listed in the manifest and writes its Go source and binary
outputs. Tables whose outputs already match their keyword file are skipped.
`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return bc.Run(c.Context())
		},
	}

	flags := ccmd.Flags()
	flags.StringVarP(&bc.Manifest, "config", "c", "phfgen.jsonc", "Manifest listing the tables to build.")
	flags.IntVarP(&bc.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of tables built concurrently.")
	flags.BoolVarP(&bc.Force, "force", "f", false, "Rebuild tables even when their outputs are current.")
	flags.BoolVar(&bc.Check, "check", false, "Report out of date outputs without writing them.")
	flags.BoolVarP(&bc.Verbose, "verbose", "v", false, "Log search progress to stderr.")
	flags.BoolVar(&bc.NoColor, "no-color", false, "Disable colored output.")
	return ccmd
}

// Run builds the tables concurrently and reports one status line per table
// in manifest order.
func (bc *BuildCommand) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := LoadManifest(bc.Manifest)
	if err != nil {
		return err
	}

	var logger phfmap.Logger = phfmap.NopLogger
	if bc.Verbose {
		logger = log.New(bc.Stderr, "phfgen: ", log.Lmicroseconds)
	}

	results := make([]*buildResult, len(m.Tables))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(bc.Jobs, 1))
	for i := range m.Tables {
		spec := &m.Tables[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := bc.buildTable(spec, logger)
			if err != nil {
				return fmt.Errorf("table %s: %w", spec.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	err = g.Wait()

	p := newPrinter(bc.Stdout, bc.NoColor)
	stale := false
	for i, res := range results {
		if res == nil {
			continue
		}
		name := m.Tables[i].Name
		switch res.status {
		case statusBuilt:
			p.ok("built", "%s: %d keys, signature %v, max hash %d, %d attempts",
				name, res.stats.NumKeys, res.sig, res.stats.MaxHash, res.stats.Attempts)
		case statusUnchanged:
			p.info("unchanged", "%s", name)
		case statusStale:
			stale = true
			for _, path := range res.stale {
				p.warn("stale", "%s: %s", name, path)
			}
			if res.diff != "" {
				fmt.Fprint(bc.Stdout, res.diff)
			}
		}
	}
	if err != nil {
		p.fail("error", "%v", err)
		return err
	}
	if stale {
		return errStale
	}
	return nil
}

func (bc *BuildCommand) buildTable(spec *TableSpec, logger phfmap.Logger) (*buildResult, error) {
	entries, err := readKeyFile(spec.Input)
	if err != nil {
		return nil, err
	}
	st := stamp(spec, entries)

	stale := staleOutputs(spec, entries, st)
	if len(stale) == 0 && (!bc.Force || bc.Check) {
		return &buildResult{status: statusUnchanged}, nil
	}

	opts := []phfmap.BuildOption{
		phfmap.WithMinSignatureLen(spec.MinSignatureLen),
		phfmap.WithRetryBudget(spec.RetryBudget),
		phfmap.WithLogger(logger),
	}
	if spec.Signature != nil {
		opts = append(opts, phfmap.WithSignature(spec.Signature))
	}
	table, err := phfmap.New(entries, opts...)
	if err != nil {
		return nil, err
	}

	var src []byte
	if spec.Go != nil {
		if src, err = renderGoSource(spec, st, table); err != nil {
			return nil, err
		}
	}

	if bc.Check {
		res := &buildResult{status: statusStale, stale: stale}
		if spec.Go != nil && slices.Contains(stale, spec.Go.Path) {
			old, _ := os.ReadFile(spec.Go.Path)
			res.diff = patch(string(old), string(src))
		}
		return res, nil
	}

	if spec.Go != nil {
		if err := writeFile(spec.Go.Path, src); err != nil {
			return nil, err
		}
	}
	if spec.Bin != "" {
		if err := os.MkdirAll(filepath.Dir(spec.Bin), 0o755); err != nil {
			return nil, err
		}
		if err := phfmap.WriteFile(spec.Bin, table); err != nil {
			return nil, err
		}
	}
	return &buildResult{status: statusBuilt, stats: table.Stats(), sig: table.Signature()}, nil
}

// stamp identifies everything a table's outputs depend on: keys, values and
// build options. It is recorded in Go output.
func stamp(spec *TableSpec, entries []phfmap.Entry[uint64]) phfmap.Digest {
	parts := make([][]byte, 0, 2*len(entries)+1)
	for _, e := range entries {
		parts = append(parts, e.Key)
	}
	for _, e := range entries {
		parts = append(parts, binary.LittleEndian.AppendUint64(nil, e.Value))
	}
	parts = append(parts, fmt.Appendf(nil, "signature=%v min=%d budget=%d",
		spec.Signature, spec.MinSignatureLen, spec.RetryBudget))
	return phfmap.KeySetDigest(parts)
}

// staleOutputs returns the outputs of spec that do not match entries.
func staleOutputs(spec *TableSpec, entries []phfmap.Entry[uint64], st phfmap.Digest) []string {
	var stale []string
	if spec.Go != nil && !goOutputCurrent(spec.Go.Path, st) {
		stale = append(stale, spec.Go.Path)
	}
	if spec.Bin != "" && !binOutputCurrent(spec, entries) {
		stale = append(stale, spec.Bin)
	}
	return stale
}

func goOutputCurrent(path string, st phfmap.Digest) bool {
	src, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.Contains(src, []byte(stampLine(st)))
}

// binOutputCurrent reports whether the table file at spec.Bin holds exactly
// entries. The header digest rules out a changed key set before any value
// is compared.
func binOutputCurrent(spec *TableSpec, entries []phfmap.Entry[uint64]) bool {
	idx, err := phfmap.Open(spec.Bin)
	if err != nil {
		return false
	}
	defer idx.Close()

	keys := make([][]byte, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if idx.Digest() != phfmap.KeySetDigest(keys) || idx.Verify() != nil {
		return false
	}
	if spec.Signature != nil && !slices.Equal(idx.Signature(), spec.Signature) {
		return false
	}
	for _, e := range entries {
		if v, ok := idx.Lookup(e.Key); !ok || v != e.Value {
			return false
		}
	}
	return true
}

// patch returns a textual patch turning before into after.
func patch(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.PatchToText(dmp.PatchMake(before, diffs))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
