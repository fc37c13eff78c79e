package phfmap

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Digest is an xxHash3-128 digest of a key set.
type Digest struct {
	Lo, Hi uint64
}

// String formats the digest as 32 hex digits, high half first.
func (d Digest) String() string {
	return fmt.Sprintf("%016x%016x", d.Hi, d.Lo)
}

// KeySetDigest hashes keys in order. Each key is length-prefixed, so
// {"ab", "c"} and {"a", "bc"} digest differently.
//
// A table's signature and weights are a deterministic function of its keys
// and build options, so an unchanged digest means an unchanged table. The
// generator uses this to skip rewriting outputs.
func KeySetDigest(keys [][]byte) Digest {
	h := xxh3.New()
	var lenBuf [4]byte
	for _, key := range keys {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(key)))
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write(key)
	}
	sum := h.Sum128()
	return Digest{Lo: sum.Lo, Hi: sum.Hi}
}
