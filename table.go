package phfmap

import (
	"bytes"
	"fmt"
	"iter"
	"time"
	"unsafe"

	phferrors "github.com/tamirms/phfmap/errors"
	"github.com/tamirms/phfmap/internal/assoc"
	"github.com/tamirms/phfmap/internal/keysig"
)

const (
	// MaxKeys is the maximum number of entries in a Table.
	MaxKeys = assoc.MaxKeys

	// MaxSignatureLen is the maximum number of positions in a signature.
	MaxSignatureLen = keysig.MaxLen

	// TableLen is the slot count of every Table.
	TableLen = assoc.TableLen

	sentinel = assoc.Sentinel
)

// Entry is a key-value pair given to New.
type Entry[V any] struct {
	Key   []byte
	Value V
}

// StringEntry is a key-value pair with a string key, given to NewFromStrings.
type StringEntry[V any] struct {
	Key   string
	Value V
}

// Table is a frozen perfect hash table over a fixed key set.
//
// Thread Safety:
// A Table is immutable after New returns. Get and every other method are
// safe for concurrent use without synchronization.
type Table[V any] struct {
	entries []Entry[V]
	sig     keysig.Signature
	weights [256]uint16
	slots   [TableLen]uint8
	maxHash int

	attempts int
	digest   Digest
}

// Stats holds table statistics.
type Stats struct {
	NumKeys      int
	SignatureLen int
	MaxHash      int
	TableLen     int
	Attempts     int     // weight search attempts used at build time
	LoadFactor   float64 // NumKeys / (MaxHash+1)
}

// New builds a Table from entries.
//
// The signature is searched for unless WithSignature is given. Keys must be
// pairwise distinct and there may be at most MaxKeys of them. Keys are copied,
// so the caller may reuse the slices.
//
// Construction is all-or-nothing: on error the returned Table is nil.
func New[V any](entries []Entry[V], opts ...BuildOption) (*Table[V], error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if len(entries) > MaxKeys {
		return nil, fmt.Errorf("%w: got %d", phferrors.ErrInputTooLarge, len(entries))
	}
	if cfg.minSignatureLen > MaxSignatureLen {
		return nil, fmt.Errorf("%w: minimum length %d", phferrors.ErrSignatureTooLong, cfg.minSignatureLen)
	}

	t := &Table[V]{entries: make([]Entry[V], len(entries))}
	keys := make([][]byte, len(entries))
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if j, dup := seen[string(e.Key)]; dup {
			return nil, fmt.Errorf("%w: %q at %d and %d", phferrors.ErrDuplicateKey, e.Key, j, i)
		}
		seen[string(e.Key)] = i
		key := bytes.Clone(e.Key)
		if key == nil {
			key = []byte{}
		}
		t.entries[i] = Entry[V]{Key: key, Value: e.Value}
		keys[i] = key
	}

	start := time.Now()
	sig, err := resolveSignature(keys, cfg)
	if err != nil {
		return nil, err
	}
	cfg.logger.Printf("phfmap: %d keys, signature %v (%s)", len(keys), sig, time.Since(start))

	res, err := assoc.Solve(keys, sig, cfg.retryBudget)
	if err != nil {
		return nil, err
	}
	cfg.logger.Printf("phfmap: weights found after %d attempts, max hash %d (%s)",
		res.Attempts, res.MaxHash, time.Since(start))

	t.sig = sig
	t.weights = res.Weights
	t.slots = res.Slots
	t.maxHash = res.MaxHash
	t.attempts = res.Attempts
	t.digest = KeySetDigest(keys)
	return t, nil
}

// NewFromStrings is New for string keys.
func NewFromStrings[V any](entries []StringEntry[V], opts ...BuildOption) (*Table[V], error) {
	converted := make([]Entry[V], len(entries))
	for i, e := range entries {
		converted[i] = Entry[V]{Key: []byte(e.Key), Value: e.Value}
	}
	return New(converted, opts...)
}

func resolveSignature(keys [][]byte, cfg *buildConfig) (keysig.Signature, error) {
	if cfg.signature != nil {
		return keysig.FromPositions(cfg.signature)
	}
	return keysig.Search(keys, cfg.minSignatureLen)
}

// Get returns the value stored for key.
// A key outside the construction set is never reported as present, even when
// it hashes to an occupied slot.
func (t *Table[V]) Get(key []byte) (V, bool) {
	var zero V
	h := t.Hash(key)
	if h > t.maxHash {
		return zero, false
	}
	idx := t.slots[h]
	if idx == sentinel {
		return zero, false
	}
	e := &t.entries[idx]
	if !bytes.Equal(e.Key, key) {
		return zero, false
	}
	return e.Value, true
}

// GetString is Get for a string key. It does not allocate.
func (t *Table[V]) GetString(key string) (V, bool) {
	return t.Get(unsafe.Slice(unsafe.StringData(key), len(key)))
}

// Contains reports whether key is in the table.
func (t *Table[V]) Contains(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

// Hash returns the slot key maps to. Members map to distinct slots; other
// byte strings may map anywhere, including past MaxHash.
func (t *Table[V]) Hash(key []byte) int {
	return assoc.Hash(key, &t.sig, &t.weights)
}

// Len returns the number of entries.
func (t *Table[V]) Len() int { return len(t.entries) }

// Signature returns the byte positions the hash reads.
// Pass it to WithSignature to rebuild the same table without searching.
func (t *Table[V]) Signature() []int { return t.sig.Positions() }

// Weights returns the per-byte weights.
func (t *Table[V]) Weights() [256]uint16 { return t.weights }

// MaxHash returns the largest hash of any key.
func (t *Table[V]) MaxHash() int { return t.maxHash }

// Digest returns the key-set digest of the table's keys in input order.
func (t *Table[V]) Digest() Digest { return t.digest }

// All iterates over the entries in input order.
// The yielded key must not be modified.
func (t *Table[V]) All() iter.Seq2[[]byte, V] {
	return func(yield func([]byte, V) bool) {
		for _, e := range t.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Keys iterates over the keys in input order.
func (t *Table[V]) Keys() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for _, e := range t.entries {
			if !yield(e.Key) {
				return
			}
		}
	}
}

// Stats returns statistics for the table.
func (t *Table[V]) Stats() Stats {
	return Stats{
		NumKeys:      len(t.entries),
		SignatureLen: t.sig.Len(),
		MaxHash:      t.maxHash,
		TableLen:     TableLen,
		Attempts:     t.attempts,
		LoadFactor:   float64(len(t.entries)) / float64(t.maxHash+1),
	}
}

// frozenTable rebuilds a Table from previously solved parts without running
// any search. It checks every invariant lookup depends on and reports
// ErrCorruptedTable on violation.
func frozenTable[V any](entries []Entry[V], sig keysig.Signature, weights *[256]uint16, slots []uint8, maxHash int) (*Table[V], error) {
	if len(entries) > MaxKeys {
		return nil, fmt.Errorf("%w: %d keys", phferrors.ErrCorruptedTable, len(entries))
	}
	if maxHash >= TableLen || len(slots) > TableLen {
		return nil, fmt.Errorf("%w: max hash %d", phferrors.ErrCorruptedTable, maxHash)
	}

	t := &Table[V]{entries: entries, sig: sig, weights: *weights, maxHash: maxHash}
	for i := range t.slots {
		t.slots[i] = sentinel
	}
	copy(t.slots[:], slots)

	keys := make([][]byte, len(entries))
	claimed := 0
	for i, e := range entries {
		h := t.Hash(e.Key)
		if h > maxHash || t.slots[h] != uint8(i) {
			return nil, fmt.Errorf("%w: key %q does not own slot %d", phferrors.ErrCorruptedTable, e.Key, h)
		}
		keys[i] = e.Key
	}
	for _, s := range t.slots {
		if s != sentinel {
			claimed++
		}
	}
	if claimed != len(entries) {
		return nil, fmt.Errorf("%w: %d slots claimed for %d keys", phferrors.ErrCorruptedTable, claimed, len(entries))
	}
	t.digest = KeySetDigest(keys)
	return t, nil
}
