// Package keysig finds key signatures: small sets of byte positions that
// tell apart every pair of equal-length keys in a fixed key set.
//
// A signature position i >= 0 selects key[i]; a negative position -i selects
// key[len(key)-i]. Positions past either end of a key select nothing for that
// key. Because key length is folded into the final hash separately, a
// signature only needs to separate keys of the same length.
package keysig

import (
	"fmt"
	"strconv"
	"strings"

	phferrors "github.com/tamirms/phfmap/errors"
)

const (
	// MaxLen is the maximum number of positions in a signature. It bounds
	// the size of a Multiset as well.
	MaxLen = 7

	// MaxPosition bounds the magnitude of a caller-supplied position so that
	// a signature fits one signed byte per position when serialized.
	MaxPosition = 127
)

// Signature is an ordered, fixed-capacity list of byte positions.
// The zero value is the empty signature.
type Signature struct {
	pos [MaxLen]int8
	n   uint8
}

// FromPositions builds a Signature from caller-supplied positions.
func FromPositions(positions []int) (Signature, error) {
	var s Signature
	if len(positions) > MaxLen {
		return s, fmt.Errorf("%w: got %d positions", phferrors.ErrSignatureTooLong, len(positions))
	}
	for _, p := range positions {
		if p < -MaxPosition || p > MaxPosition {
			return s, fmt.Errorf("%w: %d not in [-%d, %d]", phferrors.ErrInvalidPosition, p, MaxPosition, MaxPosition)
		}
		s.Push(p)
	}
	return s, nil
}

// Len returns the number of positions.
func (s *Signature) Len() int { return int(s.n) }

// At returns the i-th position.
func (s *Signature) At(i int) int {
	if i < 0 || i >= int(s.n) {
		panic(fmt.Sprintf("keysig: signature index %d out of range [0, %d)", i, s.n))
	}
	return int(s.pos[i])
}

// Push appends a position. Panics when the signature is full.
func (s *Signature) Push(p int) {
	if s.n == MaxLen {
		panic("keysig: push on full signature")
	}
	s.pos[s.n] = int8(p)
	s.n++
}

// Pop removes the last position. Panics when the signature is empty.
func (s *Signature) Pop() int {
	if s.n == 0 {
		panic("keysig: pop on empty signature")
	}
	s.n--
	return int(s.pos[s.n])
}

// Positions returns a copy of the positions as ints.
func (s Signature) Positions() []int {
	out := make([]int, s.n)
	for i := range out {
		out[i] = int(s.pos[i])
	}
	return out
}

// String formats the signature as "[0 -1 2]".
func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < int(s.n); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(s.pos[i])))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Index returns the byte of key selected by position pos.
// ok is false when abs(pos) >= len(key).
func Index(key []byte, pos int) (c byte, ok bool) {
	abs := pos
	if abs < 0 {
		abs = -abs
	}
	if abs >= len(key) {
		return 0, false
	}
	if pos < 0 {
		return key[len(key)-abs], true
	}
	return key[abs], true
}

// Of returns the multiset of bytes that sig selects from key.
func Of(key []byte, sig *Signature) Multiset {
	var m Multiset
	for i := 0; i < int(sig.n); i++ {
		if c, ok := Index(key, int(sig.pos[i])); ok {
			m.Insert(c)
		}
	}
	return m
}

// Frequency counts, per byte value, how many (key, position) selections
// produce that byte under one signature.
type Frequency [256]uint16

// CountFrequency computes the global byte frequency of keys under sig.
func CountFrequency(keys [][]byte, sig *Signature) *Frequency {
	var f Frequency
	for _, key := range keys {
		for i := 0; i < int(sig.n); i++ {
			if c, ok := Index(key, int(sig.pos[i])); ok {
				f[c]++
			}
		}
	}
	return &f
}
