package phfmap

import "github.com/tamirms/phfmap/internal/assoc"

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	signature       []int // nil means search
	minSignatureLen int
	retryBudget     int
	logger          Logger
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		retryBudget: assoc.DefaultRetryBudget,
		logger:      NopLogger,
	}
}

// WithSignature skips the signature search and uses the given positions.
// This reproduces a known-good table across rebuilds without searching.
// The positions are copied.
//
// A signature that does not tell apart two colliding keys of the same
// length makes New fail with ErrDuplicateKeysig.
func WithSignature(positions []int) BuildOption {
	return func(c *buildConfig) {
		c.signature = append([]int{}, positions...)
	}
}

// WithMinSignatureLen starts the signature search at length n instead of 0.
// Longer signatures spread keys over more weights, which can help the weight
// search converge for dense key sets.
func WithMinSignatureLen(n int) BuildOption {
	return func(c *buildConfig) {
		c.minSignatureLen = n
	}
}

// WithRetryBudget sets the maximum number of weight search attempts.
// Values <= 0 restore the default (10,000).
func WithRetryBudget(n int) BuildOption {
	return func(c *buildConfig) {
		c.retryBudget = n
	}
}

// WithLogger reports build progress to l. The default discards it.
func WithLogger(l Logger) BuildOption {
	return func(c *buildConfig) {
		if l == nil {
			l = NopLogger
		}
		c.logger = l
	}
}
