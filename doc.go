// Package phfmap builds perfect hash tables for small, fixed sets of byte
// string keys, such as the keywords of a lexer.
//
// A table hashes a key by reading a handful of its bytes (the signature),
// summing a per-byte weight for each, and adding the key length. Build
// searches for a signature that tells apart every pair of equal-length keys,
// then for weights that send every key to its own slot. Lookups afterwards
// cost one pass over at most seven bytes, one slot read and one key compare,
// with no allocation.
//
// # Basic Usage
//
// Building a table:
//
//	table, err := phfmap.NewFromStrings([]phfmap.StringEntry[Token]{
//	    {"break", Break},
//	    {"case", Case},
//	    {"chan", Chan},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Looking up keys:
//
//	tok, ok := table.GetString("case")
//
// Build is deterministic. To skip the signature search on later builds, pass
// the signature of a previous build:
//
//	table, err := phfmap.New(entries, phfmap.WithSignature(prev.Signature()))
//
// # Persisted Tables
//
// A Table[uint64] can be written to disk and memory-mapped back:
//
//	if err := phfmap.WriteFile("keywords.phf", table); err != nil {
//	    log.Fatal(err)
//	}
//	idx, err := phfmap.Open("keywords.phf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//	v, ok := idx.LookupString("case")
//
// # Package Structure
//
//   - Public API: table.go (New, Get), builder_options.go (With* functions)
//   - Serialization: header.go, table_writer.go (WriteFile, AppendBinary),
//     index.go (Open, Lookup, Verify)
//   - Signature search: internal/keysig
//   - Weight search: internal/assoc
//   - Fixed-capacity storage: internal/bounded
//   - Platform: preallocate_*.go, advise_*.go
//   - Tools: cmd/phfgen (table generator), cmd/bench (lookup benchmarks)
package phfmap
