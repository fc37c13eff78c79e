// Package assoc implements the weight search for phfmap.
//
// Every byte value gets an associated weight. A key hashes to its length
// plus the weights of the bytes its signature selects. The solver adjusts
// weights until every key lands in a distinct slot of a fixed-size table.
package assoc

// Table geometry
const (
	// MaxKeys is the maximum number of keys in one table. A slot stores the
	// index of its key in one byte, and the top value is reserved for Sentinel.
	MaxKeys = 255

	// Sentinel marks an empty slot.
	Sentinel = uint8(MaxKeys)

	// Sparsity is the number of slots per key of capacity.
	Sparsity = 8

	// TableLen is the number of slots. Any hash at or above it means the
	// geometry constants are wrong for the weights being produced.
	TableLen = MaxKeys * Sparsity
)

// Search constants
const (
	// DefaultRetryBudget is the maximum number of placement attempts.
	DefaultRetryBudget = 10_000
)

// increments is the weight step cycle, indexed by attempt number mod 3.
// Changing either the values or their order changes which table is found.
var increments = [...]uint16{1, 3, 4}
