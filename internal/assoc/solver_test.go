package assoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	phferrors "github.com/tamirms/phfmap/errors"
	"github.com/tamirms/phfmap/internal/keysig"
)

func toKeys(ss ...string) [][]byte {
	keys := make([][]byte, len(ss))
	for i, s := range ss {
		keys[i] = []byte(s)
	}
	return keys
}

func mustSig(t *testing.T, positions ...int) keysig.Signature {
	t.Helper()
	sig, err := keysig.FromPositions(positions)
	if err != nil {
		t.Fatal(err)
	}
	return sig
}

// checkPlacement verifies that every key owns the slot it hashes to and that
// no other slot is claimed.
func checkPlacement(t *testing.T, keys [][]byte, sig keysig.Signature, res *Result) {
	t.Helper()
	claimed := 0
	for _, s := range res.Slots {
		if s != Sentinel {
			claimed++
		}
	}
	if claimed != len(keys) {
		t.Errorf("%d slots claimed, want %d", claimed, len(keys))
	}
	for i, key := range keys {
		h := Hash(key, &sig, &res.Weights)
		if h > res.MaxHash {
			t.Errorf("key %q hashes to %d above MaxHash %d", key, h, res.MaxHash)
			continue
		}
		if got := res.Slots[h]; int(got) != i {
			t.Errorf("key %q: slot %d holds %d, want %d", key, h, got, i)
		}
	}
}

func TestHash(t *testing.T) {
	var weights [256]uint16
	weights['h'] = 10
	weights['e'] = 100

	sig := mustSig(t, 1, -1, 9)
	// len 5 + w['h'] + w['e']; position 9 is past the end.
	if got := Hash([]byte("while"), &sig, &weights); got != 115 {
		t.Errorf("Hash = %d, want 115", got)
	}

	var empty keysig.Signature
	if got := Hash([]byte("while"), &empty, &weights); got != 5 {
		t.Errorf("Hash with empty signature = %d, want 5", got)
	}
	if got := Hash(nil, &sig, &weights); got != 0 {
		t.Errorf("Hash(nil) = %d, want 0", got)
	}
}

func TestSolveCollisionTrace(t *testing.T) {
	keys := toKeys("cat", "cot")
	sig := mustSig(t, 1)

	res, err := Solve(keys, sig, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Attempt 1: both hash to 3. 'o' (the incoming key's byte) is scanned
	// first and ties with 'a', so it is bumped by increments[1] = 3.
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	if res.MaxHash != 6 {
		t.Errorf("MaxHash = %d, want 6", res.MaxHash)
	}
	if res.Weights['a'] != 0 || res.Weights['o'] != 3 {
		t.Errorf("weights a=%d o=%d, want 0 and 3", res.Weights['a'], res.Weights['o'])
	}
	for c, w := range res.Weights {
		if c != 'a' && c != 'o' && w != 6 {
			t.Errorf("unused byte %#x has weight %d, want MaxHash 6", c, w)
		}
	}
	if res.Slots[3] != 0 || res.Slots[6] != 1 {
		t.Errorf("slots[3]=%d slots[6]=%d, want 0 and 1", res.Slots[3], res.Slots[6])
	}
	checkPlacement(t, keys, sig, res)
}

func TestSolveDistinctLengths(t *testing.T) {
	keys := make([][]byte, MaxKeys)
	for i := range keys {
		keys[i] = []byte(strings.Repeat("a", i))
	}

	var sig keysig.Signature
	res, err := Solve(keys, sig, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}
	if res.MaxHash != MaxKeys-1 {
		t.Errorf("MaxHash = %d, want %d", res.MaxHash, MaxKeys-1)
	}
	// No byte is ever selected, so every weight is pinned.
	for c, w := range res.Weights {
		if int(w) != res.MaxHash {
			t.Fatalf("weight[%#x] = %d, want %d", c, w, res.MaxHash)
		}
	}
	checkPlacement(t, keys, sig, res)
}

func TestSolveEmpty(t *testing.T) {
	res, err := Solve(nil, keysig.Signature{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.MaxHash != 0 || res.Attempts != 1 {
		t.Errorf("MaxHash = %d, Attempts = %d; want 0 and 1", res.MaxHash, res.Attempts)
	}
	for h, s := range res.Slots {
		if s != Sentinel {
			t.Fatalf("slot %d claimed in an empty table", h)
		}
	}
}

func TestSolveErrors(t *testing.T) {
	tooMany := make([][]byte, MaxKeys+1)
	for i := range tooMany {
		tooMany[i] = []byte(strings.Repeat("a", i))
	}

	tests := []struct {
		name    string
		keys    [][]byte
		sig     []int
		budget  int
		wantErr error
	}{
		{
			name:    "too many keys",
			keys:    tooMany,
			wantErr: phferrors.ErrInputTooLarge,
		},
		{
			name:    "anagrams under full signature",
			keys:    toKeys("ab", "ba"),
			sig:     []int{0, 1},
			wantErr: phferrors.ErrDuplicateKeysig,
		},
		{
			name:    "signature misses the differing byte",
			keys:    toKeys("cat", "cot"),
			sig:     []int{0},
			wantErr: phferrors.ErrDuplicateKeysig,
		},
		{
			name:    "length alone exceeds the table",
			keys:    [][]byte{make([]byte, 3000)},
			wantErr: phferrors.ErrHashOutOfRange,
		},
		{
			name:    "budget of one attempt",
			keys:    toKeys("cat", "cot"),
			sig:     []int{1},
			budget:  1,
			wantErr: phferrors.ErrRetryBudgetExhausted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Solve(tt.keys, mustSig(t, tt.sig...), tt.budget)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if res != nil {
				t.Error("expected nil result on error")
			}
		})
	}
}

func TestSolveKeywords(t *testing.T) {
	keys := toKeys(
		"as", "break", "const", "continue", "crate", "else", "enum", "extern",
		"false", "fn", "for", "if", "impl", "in", "let", "loop", "match", "mod",
		"move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct",
		"super", "trait", "true", "type", "unsafe", "use", "where", "while",
		"dyn", "await", "async",
		"abstract", "become", "box", "do", "final", "macro", "override", "priv",
		"typeof", "unsized", "virtual", "yield",
		"try",
	)
	sig, err := keysig.Search(keys, 0)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Solve(keys, sig, 0)
	if err != nil {
		t.Fatal(err)
	}
	checkPlacement(t, keys, sig, res)

	again, err := Solve(keys, sig, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res, again); diff != "" {
		t.Errorf("Solve is not deterministic (-first +second):\n%s", diff)
	}
}
