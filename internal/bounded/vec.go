// Package bounded provides a fixed-capacity sequence container.
//
// A Vec never grows past the capacity it was created with. Every mutating
// operation is bounds- and capacity-checked and panics on violation: callers
// size their containers from compile-time limits, so a violation is a
// programming error rather than an input error.
package bounded

import "fmt"

// Vec is a fixed-capacity vector. The backing store is allocated once by New
// and reused across Reset calls.
//
// The zero Vec has capacity 0; every Push on it panics.
type Vec[T any] struct {
	data []T
	n    int
}

// New returns an empty Vec with the given capacity.
func New[T any](capacity int) Vec[T] {
	if capacity < 0 {
		panic(fmt.Sprintf("bounded: negative capacity %d", capacity))
	}
	return Vec[T]{data: make([]T, capacity)}
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int { return v.n }

// Cap returns the fixed capacity.
func (v *Vec[T]) Cap() int { return len(v.data) }

// Full reports whether another Push would panic.
func (v *Vec[T]) Full() bool { return v.n == len(v.data) }

// Push appends x.
func (v *Vec[T]) Push(x T) {
	if v.n == len(v.data) {
		panic(fmt.Sprintf("bounded: push on full vec (cap %d)", len(v.data)))
	}
	v.data[v.n] = x
	v.n++
}

// Pop removes and returns the last element.
func (v *Vec[T]) Pop() T {
	if v.n == 0 {
		panic("bounded: pop on empty vec")
	}
	v.n--
	x := v.data[v.n]
	var zero T
	v.data[v.n] = zero
	return x
}

// Insert places x at index i, shifting later elements right.
// i may equal Len (equivalent to Push).
func (v *Vec[T]) Insert(i int, x T) {
	if v.n == len(v.data) {
		panic(fmt.Sprintf("bounded: insert on full vec (cap %d)", len(v.data)))
	}
	if i < 0 || i > v.n {
		panic(fmt.Sprintf("bounded: insert index %d out of range [0, %d]", i, v.n))
	}
	copy(v.data[i+1:v.n+1], v.data[i:v.n])
	v.data[i] = x
	v.n++
}

// Remove deletes the element at i, preserving order of the rest.
func (v *Vec[T]) Remove(i int) T {
	v.check(i)
	x := v.data[i]
	copy(v.data[i:v.n-1], v.data[i+1:v.n])
	v.n--
	var zero T
	v.data[v.n] = zero
	return x
}

// SwapRemove deletes the element at i by moving the last element into its
// place. O(1); does not preserve order.
func (v *Vec[T]) SwapRemove(i int) T {
	v.check(i)
	x := v.data[i]
	v.n--
	v.data[i] = v.data[v.n]
	var zero T
	v.data[v.n] = zero
	return x
}

// At returns the element at i.
func (v *Vec[T]) At(i int) T {
	v.check(i)
	return v.data[i]
}

// Set overwrites the element at i.
func (v *Vec[T]) Set(i int, x T) {
	v.check(i)
	v.data[i] = x
}

// Slice returns the live elements. The slice aliases the backing store and
// is invalidated by the next mutation.
func (v *Vec[T]) Slice() []T { return v.data[:v.n:v.n] }

// Reset empties the Vec, keeping its capacity.
func (v *Vec[T]) Reset() {
	clear(v.data[:v.n])
	v.n = 0
}

func (v *Vec[T]) check(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bounded: index %d out of range [0, %d)", i, v.n))
	}
}
