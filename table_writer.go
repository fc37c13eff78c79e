package phfmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	phferrors "github.com/tamirms/phfmap/errors"
)

// EncodedSize returns the size of t in the binary table format.
func EncodedSize(t *Table[uint64]) int {
	h := tableHeader(t)
	return int(h.layout().size)
}

// AppendBinary appends the binary encoding of t to dst.
// The encoding can be read back with OpenBytes.
func AppendBinary(dst []byte, t *Table[uint64]) []byte {
	h := tableHeader(t)
	size := int(h.layout().size)
	dst = growBytes(dst, size)
	encodeTable(dst[len(dst)-size:], h, t)
	return dst
}

// WriteFile writes t to path in the binary table format.
// The file is pre-allocated, memory-mapped and encoded in place. On error
// the partially written file is removed.
func WriteFile(path string, t *Table[uint64]) (err error) {
	h := tableHeader(t)
	size := h.layout().size

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(path))
		}
	}()

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := preallocateFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("allocate disk space: %w", err)
		return errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap table file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}

	encodeTable([]byte(mm), h, t)

	// Flush dirty pages to file before unmapping
	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close())
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	return file.Close()
}

func tableHeader(t *Table[uint64]) *header {
	var keyBytes uint64
	for _, e := range t.entries {
		keyBytes += uint64(len(e.Key))
	}
	if keyBytes > math.MaxUint32 {
		// MaxKeys keys would each need to exceed 16MB.
		panic(fmt.Sprintf("phfmap: %d key bytes do not fit the table format", keyBytes))
	}
	return &header{
		Magic:       magic,
		Version:     version,
		NumKeys:     uint8(len(t.entries)),
		SigLen:      uint8(t.sig.Len()),
		MaxHash:     uint16(t.maxHash),
		KeyBytesLen: uint32(keyBytes),
		Digest:      t.digest,
	}
}

// encodeTable writes the full encoding of t into buf, which must be exactly
// h.layout().size bytes.
func encodeTable(buf []byte, h *header, t *Table[uint64]) {
	l := h.layout()
	if uint64(len(buf)) != l.size {
		panic(fmt.Errorf("%w: encode buffer is %d bytes, want %d", phferrors.ErrCorruptedTable, len(buf), l.size))
	}

	h.encodeTo(buf[:headerSize])

	sigBuf := buf[l.signature:l.weights]
	clear(sigBuf)
	for i := 0; i < t.sig.Len(); i++ {
		sigBuf[i] = byte(int8(t.sig.At(i)))
	}

	for c, w := range t.weights {
		binary.LittleEndian.PutUint16(buf[l.weights+uint64(c)*2:], w)
	}

	copy(buf[l.slots:l.keyOffsets], t.slots[:t.maxHash+1])

	var off uint32
	keyBytes := buf[l.keyBytes:l.footer]
	for i, e := range t.entries {
		binary.LittleEndian.PutUint32(buf[l.keyOffsets+uint64(i)*4:], off)
		binary.LittleEndian.PutUint64(buf[l.payloads+uint64(i)*8:], e.Value)
		copy(keyBytes[off:], e.Key)
		off += uint32(len(e.Key))
	}
	binary.LittleEndian.PutUint32(buf[l.keyOffsets+uint64(len(t.entries))*4:], off)

	ftr := footer{Checksum: xxhash.Sum64(buf[:l.footer])}
	ftr.encodeTo(buf[l.footer:])
}

// growBytes extends dst by n bytes.
func growBytes(dst []byte, n int) []byte {
	if cap(dst)-len(dst) < n {
		grown := make([]byte, len(dst), len(dst)+n)
		copy(grown, dst)
		dst = grown
	}
	return dst[:len(dst)+n]
}
