package keysig

import (
	"testing"
)

func multisetOf(bs ...byte) Multiset {
	var m Multiset
	for _, b := range bs {
		m.Insert(b)
	}
	return m
}

func TestMultisetInsertCount(t *testing.T) {
	m := multisetOf('a', 'b', 'a')
	if got := m.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if got := m.Count('a'); got != 2 {
		t.Errorf("Count('a') = %d, want 2", got)
	}
	if got := m.Count('b'); got != 1 {
		t.Errorf("Count('b') = %d, want 1", got)
	}
	if got := m.Count('z'); got != 0 {
		t.Errorf("Count('z') = %d, want 0", got)
	}
}

func TestMultisetRemove(t *testing.T) {
	m := multisetOf('a', 'b', 'a', 'c')

	m.Remove('a')
	if got := m.Count('a'); got != 1 {
		t.Fatalf("after one Remove('a'): Count = %d, want 1", got)
	}

	m.Remove('a')
	if got := m.Count('a'); got != 0 {
		t.Fatalf("after two Remove('a'): Count = %d, want 0", got)
	}
	if got := m.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2 after dropping 'a'", got)
	}

	// Removing an absent byte is a no-op.
	m.Remove('z')
	if !m.Equal(ptr(multisetOf('c', 'b'))) {
		t.Errorf("multiset changed by removing an absent byte")
	}
}

func TestMultisetEqualIgnoresOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b Multiset
		want bool
	}{
		{"empty", multisetOf(), multisetOf(), true},
		{"same order", multisetOf('a', 'b'), multisetOf('a', 'b'), true},
		{"reordered", multisetOf('a', 'b', 'a'), multisetOf('b', 'a', 'a'), true},
		{"different count", multisetOf('a', 'a'), multisetOf('a'), false},
		{"different count same len", multisetOf('a', 'a', 'b'), multisetOf('a', 'b', 'b'), false},
		{"different byte", multisetOf('a'), multisetOf('b'), false},
		{"subset", multisetOf('a'), multisetOf('a', 'b'), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(&tt.b); got != tt.want {
				t.Errorf("a.Equal(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(&tt.a); got != tt.want {
				t.Errorf("b.Equal(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMultisetFull(t *testing.T) {
	var m Multiset
	for i := range MaxLen {
		m.Insert(byte(i))
	}
	// Existing bytes can still be counted once full.
	m.Insert(0)
	if got := m.Count(0); got != 2 {
		t.Fatalf("Count(0) = %d, want 2", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic inserting a new byte into a full multiset")
		}
	}()
	m.Insert(0xFF)
}

func TestRarestDistinguishingByte(t *testing.T) {
	freq := func(pairs ...int) *Frequency {
		var f Frequency
		for i := 0; i < len(pairs); i += 2 {
			f[pairs[i]] = uint16(pairs[i+1])
		}
		return &f
	}

	tests := []struct {
		name   string
		a, b   Multiset
		freq   *Frequency
		want   byte
		wantOK bool
	}{
		{
			name:   "identical",
			a:      multisetOf('x', 'y'),
			b:      multisetOf('y', 'x'),
			freq:   freq('x', 1, 'y', 1),
			wantOK: false,
		},
		{
			name:   "tie keeps first byte of a",
			a:      multisetOf('x', 'y'),
			b:      multisetOf('x', 'z'),
			freq:   freq('x', 5, 'y', 2, 'z', 2),
			want:   'y',
			wantOK: true,
		},
		{
			name:   "strictly rarer byte of b wins",
			a:      multisetOf('x', 'y'),
			b:      multisetOf('x', 'z'),
			freq:   freq('x', 5, 'y', 2, 'z', 1),
			want:   'z',
			wantOK: true,
		},
		{
			name:   "shared byte ignored even when rarest",
			a:      multisetOf('x', 'y'),
			b:      multisetOf('x', 'z'),
			freq:   freq('x', 0, 'y', 3, 'z', 4),
			want:   'y',
			wantOK: true,
		},
		{
			name:   "count difference distinguishes",
			a:      multisetOf('x', 'x'),
			b:      multisetOf('x'),
			freq:   freq('x', 3),
			want:   'x',
			wantOK: true,
		},
		{
			name:   "only b has entries",
			a:      multisetOf(),
			b:      multisetOf('p', 'q'),
			freq:   freq('p', 9, 'q', 4),
			want:   'q',
			wantOK: true,
		},
		{
			name:   "first rarest of a beats later equal in a",
			a:      multisetOf('m', 'n'),
			b:      multisetOf(),
			freq:   freq('m', 2, 'n', 2),
			want:   'm',
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RarestDistinguishingByte(&tt.a, &tt.b, tt.freq)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
