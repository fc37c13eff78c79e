package keysig

// entry is one distinct byte and its multiplicity.
type entry struct {
	c     byte
	count uint8
}

// Multiset is a fixed-capacity multiset of bytes holding at most one entry per
// distinct byte value. A signature of MaxLen positions can contribute at most
// MaxLen distinct bytes, so it never overflows when built by Of.
//
// Multiset is a value type; copies are independent.
type Multiset struct {
	entries [MaxLen]entry
	n       uint8
}

// Len returns the number of distinct bytes.
func (m *Multiset) Len() int { return int(m.n) }

// Count returns the multiplicity of c (0 when absent).
func (m *Multiset) Count(c byte) int {
	if i := m.find(c); i >= 0 {
		return int(m.entries[i].count)
	}
	return 0
}

// Insert adds one occurrence of c.
func (m *Multiset) Insert(c byte) {
	if i := m.find(c); i >= 0 {
		m.entries[i].count++
		return
	}
	if m.n == MaxLen {
		panic("keysig: insert on full multiset")
	}
	m.entries[m.n] = entry{c: c, count: 1}
	m.n++
}

// Remove drops one occurrence of c. The entry is swap-removed when its count
// reaches zero. Removing an absent byte is a no-op.
func (m *Multiset) Remove(c byte) {
	i := m.find(c)
	if i < 0 {
		return
	}
	m.entries[i].count--
	if m.entries[i].count == 0 {
		m.n--
		m.entries[i] = m.entries[m.n]
		m.entries[m.n] = entry{}
	}
}

// Equal reports whether m and o hold the same (byte, count) pairs, in any
// order.
func (m *Multiset) Equal(o *Multiset) bool {
	if m.n != o.n {
		return false
	}
	for i := 0; i < int(m.n); i++ {
		e := m.entries[i]
		if o.Count(e.c) != int(e.count) {
			return false
		}
	}
	return true
}

func (m *Multiset) find(c byte) int {
	for i := 0; i < int(m.n); i++ {
		if m.entries[i].c == c {
			return i
		}
	}
	return -1
}

// RarestDistinguishingByte returns the byte with the lowest global frequency
// among the bytes whose counts differ between a and b.
//
// Entries of a are scanned before entries of b and a candidate only replaces
// the current best on a strictly lower frequency, so the first-found byte
// wins ties. ok is false iff a and b are equal.
func RarestDistinguishingByte(a, b *Multiset, freq *Frequency) (c byte, ok bool) {
	var best byte
	found := false

	consider := func(x byte) {
		if !found || freq[x] < freq[best] {
			best = x
			found = true
		}
	}

	for i := 0; i < int(a.n); i++ {
		e := a.entries[i]
		if b.Count(e.c) != int(e.count) {
			consider(e.c)
		}
	}
	for i := 0; i < int(b.n); i++ {
		e := b.entries[i]
		if a.Count(e.c) != int(e.count) {
			consider(e.c)
		}
	}
	return best, found
}
