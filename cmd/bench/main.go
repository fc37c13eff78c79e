// Bench is a benchmarking tool for measuring phfmap build time and lookup
// latency against general-purpose hash baselines.
//
// Usage:
//
//	go run ./cmd/bench -set keywords -queries 1000000
//
// Flags:
//
//	-set       Key set: keywords, synthetic or file (default: keywords)
//	-file      Keyword file for -set file, one key per line
//	-synthetic Number of synthetic keys (default: 255)
//	-queries   Number of lookups per measurement (default: 1,000,000)
//	-misses    Fraction of lookups for absent keys (default: 0.5)
//	-rounds    Number of builds to average build time over (default: 20)
package main

import (
	"bufio"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"

	"github.com/tamirms/phfmap"
)

var keywords = []string{
	"as", "break", "const", "continue", "crate", "else", "enum", "extern",
	"false", "fn", "for", "if", "impl", "in", "let", "loop", "match", "mod",
	"move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct",
	"super", "trait", "true", "type", "unsafe", "use", "where", "while",
	"dyn", "await", "async",
	"abstract", "become", "box", "do", "final", "macro", "override", "priv",
	"typeof", "unsized", "virtual", "yield",
	"try",
}

func main() {
	setFlag := flag.String("set", "keywords", "key set: keywords, synthetic or file")
	fileFlag := flag.String("file", "", "keyword file for -set file")
	syntheticFlag := flag.Int("synthetic", phfmap.MaxKeys, "number of synthetic keys")
	queriesFlag := flag.Int("queries", 1_000_000, "number of lookups per measurement")
	missesFlag := flag.Float64("misses", 0.5, "fraction of lookups for absent keys")
	roundsFlag := flag.Int("rounds", 20, "number of builds to average build time over")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (query phase only)")
	flag.Parse()

	rng := mrand.New(mrand.NewPCG(0x1234567890ABCDEF, 0xFEDCBA9876543210))

	var keys []string
	switch *setFlag {
	case "keywords":
		keys = keywords
	case "synthetic":
		keys = syntheticKeys(rng, *syntheticFlag)
	case "file":
		var err error
		if keys, err = readKeys(*fileFlag); err != nil {
			fmt.Printf("Reading keys failed: %v\n", err)
			return
		}
	default:
		fmt.Printf("Unknown key set: %s (use 'keywords', 'synthetic' or 'file')\n", *setFlag)
		return
	}

	if len(keys) == 0 || *queriesFlag <= 0 {
		fmt.Println("Nothing to benchmark: need at least one key and one query")
		return
	}

	entries := make([]phfmap.StringEntry[uint64], len(keys))
	for i, k := range keys {
		entries[i] = phfmap.StringEntry[uint64]{Key: k, Value: uint64(i + 1)}
	}

	fmt.Printf("Building table over %d keys...\n", len(keys))
	rounds := max(*roundsFlag, 1)
	var table *phfmap.Table[uint64]
	buildStart := time.Now()
	for range rounds {
		var err error
		if table, err = phfmap.NewFromStrings(entries); err != nil {
			fmt.Printf("Build failed: %v\n", err)
			return
		}
	}
	buildDuration := time.Since(buildStart) / time.Duration(rounds)

	// Rebuilding with the found signature skips the search.
	frozenStart := time.Now()
	for range rounds {
		if _, err := phfmap.NewFromStrings(entries, phfmap.WithSignature(table.Signature())); err != nil {
			fmt.Printf("Build with signature failed: %v\n", err)
			return
		}
	}
	frozenDuration := time.Since(frozenStart) / time.Duration(rounds)

	tmpDir, err := os.MkdirTemp("", "bench-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	indexPath := filepath.Join(tmpDir, "table.phf")
	if err := phfmap.WriteFile(indexPath, table); err != nil {
		fmt.Printf("WriteFile failed: %v\n", err)
		return
	}
	idx, err := phfmap.Open(indexPath)
	if err != nil {
		fmt.Printf("Open failed: %v\n", err)
		return
	}
	defer func() { _ = idx.Close() }()

	fmt.Println("Generating queries...")
	queries := makeQueries(rng, keys, *queriesFlag, *missesFlag)

	// Baselines
	goMap := make(map[string]uint64, len(keys))
	xxMap := make(map[uint64]uint64, len(keys))
	for i, k := range keys {
		goMap[k] = uint64(i + 1)
		xxMap[xxhash.Sum64String(k)] = uint64(i + 1)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Println("Benchmarking queries...")
	var sink uint64
	results := []result{
		measure("phfmap Table.Get", queries, func(q string) (uint64, bool) {
			return table.GetString(q)
		}),
		measure("phfmap Index.Lookup", queries, func(q string) (uint64, bool) {
			return idx.LookupString(q)
		}),
		measure("Go map[string]", queries, func(q string) (uint64, bool) {
			v, ok := goMap[q]
			return v, ok
		}),
		measure("xxhash64 + map", queries, func(q string) (uint64, bool) {
			v, ok := xxMap[xxhash.Sum64String(q)]
			return v, ok
		}),
		measure("murmur3-128 only", queries, func(q string) (uint64, bool) {
			h1, h2 := murmur3.Sum128([]byte(q))
			sink ^= h1 ^ h2
			return 0, false
		}),
	}
	_ = sink

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	for _, q := range queries {
		_, _ = table.GetString(q)
	}
	runtime.ReadMemStats(&after)
	allocsPerGet := float64(after.Mallocs-before.Mallocs) / float64(len(queries))

	stats := table.Stats()
	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╦══════════════════╗\n")
	fmt.Printf("║ Set: %-15s║ Keys: %-8d ║                  ║\n", *setFlag, stats.NumKeys)
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Signature           ║ %-15s║ len %-13d║\n", fmt.Sprint(table.Signature()), stats.SignatureLen)
	fmt.Printf("║ Max hash            ║ %6d         ║ of %-14d║\n", stats.MaxHash, stats.TableLen)
	fmt.Printf("║ Load factor         ║ %6.3f         ║ -                ║\n", stats.LoadFactor)
	fmt.Printf("║ Weight attempts     ║ %6d         ║ -                ║\n", stats.Attempts)
	fmt.Printf("║ Build time          ║ %8.1f μs    ║ -                ║\n", float64(buildDuration.Nanoseconds())/1000)
	fmt.Printf("║ Build w/ signature  ║ %8.1f μs    ║ -                ║\n", float64(frozenDuration.Nanoseconds())/1000)
	fmt.Printf("║ Encoded size        ║ %6d bytes   ║ -                ║\n", phfmap.EncodedSize(table))
	fmt.Printf("║ Allocs per Get      ║ %6.2f         ║ 0                ║\n", allocsPerGet)
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Lookup              ║ Latency        ║ Hits             ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	for _, r := range results {
		fmt.Printf("║ %-20s║ %8.2f ns    ║ %-17d║\n", r.name, r.ns, r.hits)
	}
	fmt.Printf("╚═════════════════════╩════════════════╩══════════════════╝\n")
}

type result struct {
	name string
	ns   float64 // mean latency
	hits int
}

// measure runs lookup over queries after a warm-up pass and returns the mean
// latency and the number of hits.
func measure(name string, queries []string, lookup func(string) (uint64, bool)) result {
	for i := 0; i < min(len(queries), 10000); i++ {
		_, _ = lookup(queries[i])
	}
	hits := 0
	start := time.Now()
	for _, q := range queries {
		if _, ok := lookup(q); ok {
			hits++
		}
	}
	elapsed := time.Since(start)
	return result{name, float64(elapsed.Nanoseconds()) / float64(len(queries)), hits}
}

// syntheticKeys returns n distinct identifier-like keys of 2..10 bytes.
func syntheticKeys(rng *mrand.Rand, n int) []string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz_"
	seen := make(map[string]bool, n)
	keys := make([]string, 0, n)
	var sb strings.Builder
	for len(keys) < n {
		sb.Reset()
		for range 2 + rng.IntN(9) {
			sb.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		k := sb.String()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// makeQueries mixes members with mutated copies of members so that misses
// share length and most bytes with hits.
func makeQueries(rng *mrand.Rand, keys []string, n int, missRate float64) []string {
	member := make(map[string]bool, len(keys))
	for _, k := range keys {
		member[k] = true
	}
	queries := make([]string, n)
	for i := range queries {
		k := keys[rng.IntN(len(keys))]
		if rng.Float64() < missRate && len(k) > 0 {
			b := []byte(k)
			b[rng.IntN(len(b))] ^= 0x20
			if !member[string(b)] {
				k = string(b)
			}
		}
		queries[i] = k
	}
	return queries
}

func readKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var keys []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if k := strings.TrimSpace(sc.Text()); k != "" && !strings.HasPrefix(k, "#") {
			keys = append(keys, strings.Fields(k)[0])
		}
	}
	return keys, sc.Err()
}
