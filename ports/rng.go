package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides random streams for missingness injection
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates an independent RNG for one trial. The same (namespace, stage, key, baseSeed)
	// always yields the same stream, distinct keys yield uncorrelated streams.
	Stream(ctx context.Context, namespace, stage, key string, baseSeed int64) (*rand.Rand, error)

	// TimeSeed returns a non-zero base seed for runs without a configured one
	TimeSeed() int64
}
