package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tamirms/phfmap"
)

// InspectCommand prints the statistics of a binary table file and verifies
// its integrity.
type InspectCommand struct {
	Path     string
	ListKeys bool
	NoColor  bool

	Stdout io.Writer
}

func newInspectCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ic := &InspectCommand{Stdout: stdout}
	ccmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print statistics of a table file and verify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ic.Path = args[0]
			return ic.Run()
		},
	}

	flags := ccmd.Flags()
	flags.BoolVarP(&ic.ListKeys, "keys", "k", false, "List every key and its value.")
	flags.BoolVar(&ic.NoColor, "no-color", false, "Disable colored output.")
	return ccmd
}

// Run opens the table, prints its statistics and verifies it. A failed
// verification is printed and returned.
func (ic *InspectCommand) Run() error {
	idx, err := phfmap.Open(ic.Path)
	if err != nil {
		return err
	}
	defer idx.Close()

	stats := idx.Stats()
	tw := tabwriter.NewWriter(ic.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "path:\t%s\n", ic.Path)
	fmt.Fprintf(tw, "keys:\t%d\n", stats.NumKeys)
	fmt.Fprintf(tw, "signature:\t%v\n", idx.Signature())
	fmt.Fprintf(tw, "max hash:\t%d\n", stats.MaxHash)
	fmt.Fprintf(tw, "size:\t%d bytes\n", stats.IndexSize)
	fmt.Fprintf(tw, "digest:\t%s\n", stats.Digest)
	if err := tw.Flush(); err != nil {
		return err
	}

	p := newPrinter(ic.Stdout, ic.NoColor)
	if err := idx.Verify(); err != nil {
		p.fail("corrupt", "%s: %v", ic.Path, err)
		return err
	}
	p.ok("ok", "%s", ic.Path)

	if ic.ListKeys {
		table, err := idx.Table()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(ic.Stdout, 0, 8, 2, ' ', 0)
		for k, v := range table.All() {
			fmt.Fprintf(tw, "%q\t%d\tslot %d\n", k, v, table.Hash(k))
		}
		return tw.Flush()
	}
	return nil
}
