// Phfgen builds perfect hash tables for the keyword sets listed in a
// manifest and emits them as Go source and binary table files.
//
// Usage:
//
//	phfgen build -c phfgen.jsonc
//	phfgen build -c phfgen.jsonc --check
//	phfgen inspect keywords.phf
//	phfgen lookup keywords.phf while whoo
//
// A manifest is JSON with comments:
//
//	{
//	  "tables": [
//	    {
//	      "name": "keywords",
//	      "input": "keywords.txt",
//	      "go": {"path": "keywords_gen.go", "package": "lexer"},
//	      "bin": "keywords.phf", // optional
//	    },
//	  ],
//	}
package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
