package keysig

import (
	"fmt"
	"slices"

	phferrors "github.com/tamirms/phfmap/errors"
	"github.com/tamirms/phfmap/internal/bounded"
)

// Pool is the ordered set of candidate positions a search draws from:
// the first four bytes and the last three.
var Pool = [...]int{0, 1, 2, 3, -1, -2, -3}

// Search returns the first signature, in enumeration order, under which no
// two equal-length keys share a multiset.
//
// Lengths are tried from minLen up to len(Pool). For each length, subsets of
// Pool are enumerated by include-then-exclude recursion scanning Pool left to
// right, which makes the result a deterministic function of keys and minLen.
func Search(keys [][]byte, minLen int) (Signature, error) {
	if minLen < 0 {
		minLen = 0
	}
	s := newSearcher(keys)
	for k := minLen; k <= len(Pool); k++ {
		s.chosen = Signature{}
		if s.comb(k, 0) {
			return s.chosen, nil
		}
	}
	return Signature{}, fmt.Errorf("%w: %d keys, signature lengths %d..%d",
		phferrors.ErrNoUniqueSignature, len(keys), minLen, len(Pool))
}

// Unique reports whether no two equal-length keys share a multiset under sig.
func Unique(keys [][]byte, sig *Signature) bool {
	return newSearcher(keys).unique(sig)
}

// searcher holds the length groups and scratch space for one search.
type searcher struct {
	keys [][]byte

	// groups holds key indexes partitioned by key length. Only groups of two
	// or more keys are kept; a lone key of some length can never conflict.
	groups [][]int

	// sets is scratch for the multisets of one group.
	sets bounded.Vec[Multiset]

	chosen Signature
}

func newSearcher(keys [][]byte) *searcher {
	byLen := make(map[int][]int)
	largest := 0
	for i, key := range keys {
		byLen[len(key)] = append(byLen[len(key)], i)
	}

	lengths := make([]int, 0, len(byLen))
	for l, idx := range byLen {
		if len(idx) > 1 {
			lengths = append(lengths, l)
			largest = max(largest, len(idx))
		}
	}
	slices.Sort(lengths)

	groups := make([][]int, 0, len(lengths))
	for _, l := range lengths {
		groups = append(groups, byLen[l])
	}

	return &searcher{
		keys:   keys,
		groups: groups,
		sets:   bounded.New[Multiset](largest),
	}
}

// comb chooses k more positions from Pool[i:] and reports whether a unique
// signature was found. On success the signature is left in s.chosen.
func (s *searcher) comb(k, i int) bool {
	// Not enough positions remain to choose k.
	if k > len(Pool)-i {
		return false
	}
	if k == 0 {
		return s.unique(&s.chosen)
	}

	s.chosen.Push(Pool[i])
	if s.comb(k-1, i+1) {
		return true
	}
	s.chosen.Pop()
	return s.comb(k, i+1)
}

func (s *searcher) unique(sig *Signature) bool {
	for _, group := range s.groups {
		s.sets.Reset()
		for _, ki := range group {
			s.sets.Push(Of(s.keys[ki], sig))
		}
		sets := s.sets.Slice()
		for a := range sets {
			for b := a + 1; b < len(sets); b++ {
				if sets[a].Equal(&sets[b]) {
					return false
				}
			}
		}
	}
	return true
}
