package assoc

import (
	"fmt"
	"math"

	phferrors "github.com/tamirms/phfmap/errors"
	"github.com/tamirms/phfmap/internal/bounded"
	"github.com/tamirms/phfmap/internal/keysig"
)

// Result is a solved table. It is frozen once returned.
type Result struct {
	Weights [256]uint16
	Slots   [TableLen]uint8

	// MaxHash is the largest hash of any key. Lookups of hashes above it
	// miss without touching Slots.
	MaxHash int

	// Attempts is the number of placement attempts used, including the
	// successful one.
	Attempts int
}

// Hash returns len(key) plus the weights of the bytes sig selects from key.
func Hash(key []byte, sig *keysig.Signature, weights *[256]uint16) int {
	h := len(key)
	for i := 0; i < sig.Len(); i++ {
		if c, ok := keysig.Index(key, sig.At(i)); ok {
			h += int(weights[c])
		}
	}
	return h
}

// solver holds the private workspace for one weight search.
type solver struct {
	keys [][]byte
	sig  keysig.Signature
	freq *keysig.Frequency
	sets []keysig.Multiset

	res *Result

	// claimed lists the slots taken in the current attempt so that a
	// restart clears only those.
	claimed bounded.Vec[uint16]
}

// Solve searches for weights that place every key in a distinct slot.
//
// Keys are placed in order. On a collision the whole attempt is discarded,
// the rarest byte distinguishing the two colliding keys has its weight
// bumped, and placement restarts from the first key. retryBudget <= 0 selects
// DefaultRetryBudget.
//
// Errors:
//   - ErrInputTooLarge: more than MaxKeys keys
//   - ErrHashOutOfRange: a hash reached TableLen
//   - ErrDuplicateKeysig: two colliding keys have identical multisets under sig
//   - ErrRetryBudgetExhausted: no collision-free placement within the budget
func Solve(keys [][]byte, sig keysig.Signature, retryBudget int) (*Result, error) {
	if len(keys) > MaxKeys {
		return nil, fmt.Errorf("%w: got %d", phferrors.ErrInputTooLarge, len(keys))
	}
	if retryBudget <= 0 {
		retryBudget = DefaultRetryBudget
	}

	s := &solver{
		keys:    keys,
		sig:     sig,
		freq:    keysig.CountFrequency(keys, &sig),
		sets:    make([]keysig.Multiset, len(keys)),
		res:     &Result{},
		claimed: bounded.New[uint16](MaxKeys),
	}
	for i, key := range keys {
		s.sets[i] = keysig.Of(key, &s.sig)
	}
	for i := range s.res.Slots {
		s.res.Slots[i] = Sentinel
	}

	for n := 1; n <= retryBudget; n++ {
		done, err := s.attempt(n)
		if err != nil {
			return nil, err
		}
		if done {
			s.res.Attempts = n
			return s.finish()
		}
	}
	return nil, fmt.Errorf("%w: %d keys, signature %v, %d attempts",
		phferrors.ErrRetryBudgetExhausted, len(keys), s.sig, retryBudget)
}

// attempt places all keys. It returns false after a collision has been
// corrected, leaving the table empty for the next attempt.
func (s *solver) attempt(n int) (bool, error) {
	s.clear()

	for i, key := range s.keys {
		h := Hash(key, &s.sig, &s.res.Weights)
		if h >= TableLen {
			return false, fmt.Errorf("%w: key %q hashed to %d, table has %d slots",
				phferrors.ErrHashOutOfRange, key, h, TableLen)
		}

		occupant := s.res.Slots[h]
		if occupant == Sentinel {
			s.res.Slots[h] = uint8(i)
			s.claimed.Push(uint16(h))
			continue
		}

		c, ok := keysig.RarestDistinguishingByte(&s.sets[i], &s.sets[occupant], s.freq)
		if !ok {
			return false, fmt.Errorf("%w: %q and %q under signature %v",
				phferrors.ErrDuplicateKeysig, key, s.keys[occupant], s.sig)
		}

		s.clear()
		s.res.Weights[c] += increments[n%len(increments)]
		return false, nil
	}
	return true, nil
}

func (s *solver) clear() {
	for _, h := range s.claimed.Slice() {
		s.res.Slots[h] = Sentinel
	}
	s.claimed.Reset()
}

// finish records MaxHash and pins unused byte weights.
func (s *solver) finish() (*Result, error) {
	for _, key := range s.keys {
		s.res.MaxHash = max(s.res.MaxHash, Hash(key, &s.sig, &s.res.Weights))
	}
	if s.res.MaxHash > math.MaxUint16 {
		return nil, fmt.Errorf("%w: max hash %d exceeds 16 bits", phferrors.ErrHashOutOfRange, s.res.MaxHash)
	}

	// Bytes no key selects are never read by Hash; their weight is pinned to
	// MaxHash so the emitted weights are stable across builds.
	for c, f := range s.freq {
		if f == 0 {
			s.res.Weights[c] = uint16(s.res.MaxHash)
		}
	}
	return s.res, nil
}
