package phfmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	phferrors "github.com/tamirms/phfmap/errors"
	"github.com/tamirms/phfmap/internal/assoc"
	"github.com/tamirms/phfmap/internal/keysig"
)

// Index is a read-only table opened from its binary encoding.
//
// Thread Safety:
// - Lookup and other read methods are safe for concurrent use
// - Close is NOT safe to call concurrently with lookups
// - After Close returns, no methods may be called on the Index
type Index struct {
	// Memory map (nil for OpenBytes)
	mmap mmap.MMap
	data []byte

	header *header
	layout layout

	// Decoded once at open; lookups read these instead of the raw bytes.
	sig     keysig.Signature
	weights [256]uint16

	// Views into data
	slots      []byte
	keyOffsets []byte
	payloads   []byte
	keyBytes   []byte

	closed atomic.Bool
}

// IndexStats holds index statistics.
type IndexStats struct {
	NumKeys      int
	SignatureLen int
	MaxHash      int
	Digest       Digest
	IndexSize    int64
}

// Open opens a table file for lookups.
// It opens the file, memory-maps it, and closes the file descriptor.
func Open(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer file.Close()
	return OpenFile(file)
}

// OpenFile opens a table by memory-mapping the given file.
// The caller is responsible for closing f; it may be closed as soon as
// OpenFile returns.
func OpenFile(f *os.File) (*Index, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat table file: %w", err)
	}
	if stat.Size() < headerSize+footerSize {
		return nil, phferrors.ErrTruncatedFile
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap table file: %w", err)
	}

	// Tables are small and every lookup touches the weights; fault the whole
	// mapping in up front.
	adviseWillNeed(mm)

	idx := &Index{
		mmap: mm,
		data: []byte(mm),
	}
	if err := idx.initFromData(); err != nil {
		return nil, errors.Join(err, idx.Close())
	}
	return idx, nil
}

// OpenBytes creates an Index over an in-memory encoding such as the output
// of AppendBinary. No file is opened or memory-mapped; Close is a no-op.
// The caller must not modify data while the Index is in use.
func OpenBytes(data []byte) (*Index, error) {
	if len(data) < headerSize+footerSize {
		return nil, phferrors.ErrTruncatedFile
	}
	idx := &Index{data: data}
	if err := idx.initFromData(); err != nil {
		return nil, err
	}
	return idx, nil
}

// initFromData parses the header and sections of idx.data.
// The footer checksum is only checked by Verify.
func (idx *Index) initFromData() error {
	hdr, err := decodeHeader(idx.data[:headerSize])
	if err != nil {
		return err
	}
	idx.header = hdr

	l := hdr.layout()
	switch size := uint64(len(idx.data)); {
	case size < l.size:
		return phferrors.ErrTruncatedFile
	case size > l.size:
		return fmt.Errorf("%w: %d trailing bytes", phferrors.ErrCorruptedTable, size-l.size)
	}
	idx.layout = l

	sigBuf := idx.data[l.signature:l.weights]
	for i := 0; i < int(hdr.SigLen); i++ {
		idx.sig.Push(int(int8(sigBuf[i])))
	}
	for c := range idx.weights {
		idx.weights[c] = binary.LittleEndian.Uint16(idx.data[l.weights+uint64(c)*2:])
	}

	idx.slots = idx.data[l.slots:l.keyOffsets]
	idx.keyOffsets = idx.data[l.keyOffsets:l.payloads]
	idx.payloads = idx.data[l.payloads:l.keyBytes]
	idx.keyBytes = idx.data[l.keyBytes:l.footer]

	// Key offsets must be monotone and end at the key bytes length so that
	// key() never slices out of range.
	var prev uint32
	for i := 0; i <= int(hdr.NumKeys); i++ {
		off := binary.LittleEndian.Uint32(idx.keyOffsets[i*4:])
		if off < prev {
			return fmt.Errorf("%w: key offset %d decreases", phferrors.ErrCorruptedTable, i)
		}
		prev = off
	}
	if prev != hdr.KeyBytesLen {
		return fmt.Errorf("%w: key offsets end at %d, want %d", phferrors.ErrCorruptedTable, prev, hdr.KeyBytesLen)
	}
	for _, s := range idx.slots {
		if s != assoc.Sentinel && s >= hdr.NumKeys {
			return fmt.Errorf("%w: slot references key %d of %d", phferrors.ErrCorruptedTable, s, hdr.NumKeys)
		}
	}
	return nil
}

// Close releases the mapping.
func (idx *Index) Close() error {
	if idx.closed.Swap(true) {
		return nil // Already closed
	}
	if idx.mmap != nil {
		return idx.mmap.Unmap()
	}
	return nil
}

func (idx *Index) key(i int) []byte {
	start := binary.LittleEndian.Uint32(idx.keyOffsets[i*4:])
	end := binary.LittleEndian.Uint32(idx.keyOffsets[i*4+4:])
	return idx.keyBytes[start:end]
}

func (idx *Index) payload(i int) uint64 {
	return binary.LittleEndian.Uint64(idx.payloads[i*8:])
}

// Lookup returns the payload stored for key.
// It behaves exactly like Table.Get on the table that was encoded, and
// reports a miss once the Index is closed.
func (idx *Index) Lookup(key []byte) (uint64, bool) {
	if idx.closed.Load() {
		return 0, false
	}
	h := assoc.Hash(key, &idx.sig, &idx.weights)
	if h >= len(idx.slots) {
		return 0, false
	}
	i := idx.slots[h]
	if i == assoc.Sentinel {
		return 0, false
	}
	if !bytes.Equal(idx.key(int(i)), key) {
		return 0, false
	}
	return idx.payload(int(i)), true
}

// LookupString is Lookup for a string key. It does not allocate.
func (idx *Index) LookupString(key string) (uint64, bool) {
	return idx.Lookup(unsafe.Slice(unsafe.StringData(key), len(key)))
}

// Len returns the number of keys.
func (idx *Index) Len() int { return int(idx.header.NumKeys) }

// Signature returns the byte positions the hash reads.
func (idx *Index) Signature() []int { return idx.sig.Positions() }

// Digest returns the key-set digest recorded in the header.
func (idx *Index) Digest() Digest { return idx.header.Digest }

// Stats returns statistics for the index.
func (idx *Index) Stats() IndexStats {
	return IndexStats{
		NumKeys:      int(idx.header.NumKeys),
		SignatureLen: int(idx.header.SigLen),
		MaxHash:      int(idx.header.MaxHash),
		Digest:       idx.header.Digest,
		IndexSize:    int64(len(idx.data)),
	}
}

// GetStats returns statistics for a table file.
func GetStats(path string) (*IndexStats, error) {
	idx, err := Open(path)
	if err != nil {
		return nil, err
	}
	stats := idx.Stats()
	return &stats, idx.Close()
}

// Verify checks the integrity of the whole table:
//  1. the footer checksum over every preceding byte
//  2. every key owns the slot it hashes to, and no other slot is claimed
//  3. the key-set digest matches the header
func (idx *Index) Verify() error {
	if idx.closed.Load() {
		return phferrors.ErrIndexClosed
	}

	ft, err := decodeFooter(idx.data[idx.layout.footer:])
	if err != nil {
		return err
	}
	if xxhash.Sum64(idx.data[:idx.layout.footer]) != ft.Checksum {
		return phferrors.ErrChecksumFailed
	}

	t, err := idx.Table()
	if err != nil {
		return err
	}
	if t.Digest() != idx.header.Digest {
		return fmt.Errorf("%w: key-set digest %v, header has %v", phferrors.ErrCorruptedTable, t.Digest(), idx.header.Digest)
	}
	return nil
}

// Table copies the index into a heap Table. No search is run: the stored
// signature, weights and slots are reused and checked.
func (idx *Index) Table() (*Table[uint64], error) {
	if idx.closed.Load() {
		return nil, phferrors.ErrIndexClosed
	}
	n := int(idx.header.NumKeys)
	entries := make([]Entry[uint64], n)
	for i := range entries {
		entries[i] = Entry[uint64]{Key: bytes.Clone(idx.key(i)), Value: idx.payload(i)}
		if entries[i].Key == nil {
			entries[i].Key = []byte{}
		}
	}
	return frozenTable(entries, idx.sig, &idx.weights, idx.slots, int(idx.header.MaxHash))
}
