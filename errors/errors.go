// Package errors defines all exported error sentinels for the phfmap library.
//
// This is the single source of truth for error values. Both the top-level
// phfmap package and internal algorithm packages import from here,
// ensuring errors.Is checks work across package boundaries.
package errors

import "errors"

// Construction errors
var (
	ErrInputTooLarge        = errors.New("phfmap: key count exceeds maximum (255)")
	ErrNoUniqueSignature    = errors.New("phfmap: no unique signature found")
	ErrHashOutOfRange       = errors.New("phfmap: hash out of range")
	ErrDuplicateKeysig      = errors.New("phfmap: duplicate keysig")
	ErrRetryBudgetExhausted = errors.New("phfmap: failed to find perfect hash")
)

// Input validation errors
var (
	ErrDuplicateKey     = errors.New("phfmap: duplicate key")
	ErrSignatureTooLong = errors.New("phfmap: signature exceeds maximum length (7)")
	ErrInvalidPosition  = errors.New("phfmap: signature position out of range")
)

// Index errors
var (
	ErrInvalidMagic   = errors.New("phfmap: invalid magic number")
	ErrInvalidVersion = errors.New("phfmap: unsupported version")
	ErrTruncatedFile  = errors.New("phfmap: table file is truncated")
	ErrCorruptedTable = errors.New("phfmap: table data is corrupted")
	ErrChecksumFailed = errors.New("phfmap: table checksum verification failed")
	ErrIndexClosed    = errors.New("phfmap: index is closed")
)
