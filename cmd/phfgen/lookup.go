package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/tamirms/phfmap"
)

var errMiss = errors.New("one or more keys were not found")

// LookupCommand looks keys up in a binary table file.
type LookupCommand struct {
	Path    string
	Keys    []string
	NoColor bool

	Stdout io.Writer
}

func newLookupCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	lc := &LookupCommand{Stdout: stdout}
	ccmd := &cobra.Command{
		Use:   "lookup FILE KEY...",
		Short: "Look keys up in a table file",
		Long: `
Prints one line per key: "hit" with the stored value, or "miss". Exits non-zero
if any key misses.
`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			lc.Path, lc.Keys = args[0], args[1:]
			return lc.Run()
		},
	}
	ccmd.Flags().BoolVar(&lc.NoColor, "no-color", false, "Disable colored output.")
	return ccmd
}

func (lc *LookupCommand) Run() error {
	idx, err := phfmap.Open(lc.Path)
	if err != nil {
		return err
	}
	defer idx.Close()

	p := newPrinter(lc.Stdout, lc.NoColor)
	missed := false
	for _, key := range lc.Keys {
		if v, ok := idx.LookupString(key); ok {
			p.ok("hit", "%q %d", key, v)
		} else {
			missed = true
			p.warn("miss", "%q", key)
		}
	}
	if missed {
		return errMiss
	}
	return nil
}
