package phfmap

import (
	"encoding/binary"

	phferrors "github.com/tamirms/phfmap/errors"
	"github.com/tamirms/phfmap/internal/keysig"
)

const (
	// magic number for phfmap table files
	// "PHFT" in little-endian
	magic = uint32(0x54464850)

	// version is the current format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (32 bytes)
	headerSize = 32

	// footerSize is the exact size of the serialized footer (16 bytes)
	footerSize = 16

	// signatureSize holds MaxSignatureLen int8 positions plus one pad byte.
	signatureSize = 8

	// weightsSize holds 256 uint16 weights.
	weightsSize = 256 * 2
)

// header is the 32-byte file header.
//
// Layout:
//
//	Offset  Size  Field        Type
//	0       4     Magic        0x54464850 ("PHFT")
//	4       2     Version      0x0001
//	6       1     NumKeys      uint8
//	7       1     SigLen       uint8
//	8       2     MaxHash      uint16_le
//	10      2     Reserved     zero
//	12      4     KeyBytesLen  uint32_le
//	16      8     DigestLo     uint64_le (xxh3-128 of the key set)
//	24      8     DigestHi     uint64_le
//
// The sections that follow are:
//
//	[Signature 8B][Weights 512B][Slots (MaxHash+1)B]
//	[KeyOffsets (NumKeys+1)×uint32_le][Payloads NumKeys×uint64_le]
//	[KeyBytes KeyBytesLen][Footer 16B]
type header struct {
	Magic       uint32
	Version     uint16
	NumKeys     uint8
	SigLen      uint8
	MaxHash     uint16
	KeyBytesLen uint32
	Digest      Digest
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = h.NumKeys
	buf[7] = h.SigLen
	binary.LittleEndian.PutUint16(buf[8:10], h.MaxHash)
	buf[10], buf[11] = 0, 0
	binary.LittleEndian.PutUint32(buf[12:16], h.KeyBytesLen)
	binary.LittleEndian.PutUint64(buf[16:24], h.Digest.Lo)
	binary.LittleEndian.PutUint64(buf[24:32], h.Digest.Hi)
}

// decodeHeader parses a 32-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, phferrors.ErrTruncatedFile
	}

	h := &header{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		NumKeys:     buf[6],
		SigLen:      buf[7],
		MaxHash:     binary.LittleEndian.Uint16(buf[8:10]),
		KeyBytesLen: binary.LittleEndian.Uint32(buf[12:16]),
		Digest: Digest{
			Lo: binary.LittleEndian.Uint64(buf[16:24]),
			Hi: binary.LittleEndian.Uint64(buf[24:32]),
		},
	}

	if h.Magic != magic {
		return nil, phferrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, phferrors.ErrInvalidVersion
	}
	if h.SigLen > keysig.MaxLen {
		return nil, phferrors.ErrCorruptedTable
	}
	if int(h.MaxHash) >= TableLen {
		return nil, phferrors.ErrCorruptedTable
	}

	return h, nil
}

// layout holds the absolute offset of every section.
type layout struct {
	signature  uint64
	weights    uint64
	slots      uint64
	keyOffsets uint64
	payloads   uint64
	keyBytes   uint64
	footer     uint64
	size       uint64
}

func (h *header) layout() layout {
	var l layout
	l.signature = headerSize
	l.weights = l.signature + signatureSize
	l.slots = l.weights + weightsSize
	l.keyOffsets = l.slots + uint64(h.MaxHash) + 1
	l.payloads = l.keyOffsets + (uint64(h.NumKeys)+1)*4
	l.keyBytes = l.payloads + uint64(h.NumKeys)*8
	l.footer = l.keyBytes + uint64(h.KeyBytesLen)
	l.size = l.footer + footerSize
	return l
}

// footer is the 16-byte file footer.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       8     Checksum  uint64_le (xxHash64 of every byte before the footer)
//	8       8     Reserved  [8]byte (zero)
type footer struct {
	Checksum uint64
}

// encodeTo serializes the footer into an existing buffer.
func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.Checksum)
	clear(buf[8:16])
}

// decodeFooter parses a 16-byte footer.
func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, phferrors.ErrTruncatedFile
	}
	return &footer{Checksum: binary.LittleEndian.Uint64(buf[0:8])}, nil
}
