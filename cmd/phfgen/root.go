package main

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand returns the phfgen command tree.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "phfgen",
		Short: "phfgen generates perfect hash tables for fixed keyword sets.",
		Long: `phfgen generates perfect hash tables for fixed keyword sets.

It reads a manifest of keyword files and writes, for each, Go source that
rebuilds the table with a fixed signature and/or a binary table file that
phfmap.Open can memory-map. The inspect and lookup commands read binary
table files back.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rc.AddCommand(newBuildCommand(stdin, stdout, stderr))
	rc.AddCommand(newInspectCommand(stdin, stdout, stderr))
	rc.AddCommand(newLookupCommand(stdin, stdout, stderr))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}
