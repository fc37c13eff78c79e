package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tamirms/phfmap"
)

// readKeyFile parses a keyword file.
//
// Each non-blank line holds a key, optionally followed by whitespace and an
// unsigned integer value (decimal, or 0x-prefixed hex). A key without a value
// gets its 1-based entry number. Lines starting with '#' are comments.
func readKeyFile(path string) ([]phfmap.Entry[uint64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyword file: %w", err)
	}
	defer f.Close()

	entries, err := parseKeys(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func parseKeys(r io.Reader) ([]phfmap.Entry[uint64], error) {
	var entries []phfmap.Entry[uint64]
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}

		fields := strings.Fields(text)
		e := phfmap.Entry[uint64]{Key: []byte(fields[0]), Value: uint64(len(entries) + 1)}
		switch len(fields) {
		case 1:
		case 2:
			v, err := strconv.ParseUint(fields[1], 0, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: value %q: %w", line, fields[1], err)
			}
			e.Value = v
		default:
			return nil, fmt.Errorf("line %d: want \"key [value]\", got %d fields", line, len(fields))
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
