package rng

import (
	"context"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Adapter implements ports.RNGPort with xxhash-derived seeds
type Adapter struct{}

// NewAdapter creates an RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(DeriveSeed(seed, name))), nil
}

// Stream creates a deterministic RNG stream for one trial of a stage
func (a *Adapter) Stream(ctx context.Context, namespace, stage, key string, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(DeriveSeed(baseSeed, namespace, stage, key))), nil
}

// DeriveSeed hashes the base seed and parts into a single source seed.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func DeriveSeed(base int64, parts ...string) int64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	_, _ = d.Write(buf[:])
	for _, part := range parts {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(part)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(part)
	}
	return int64(d.Sum64() & (1<<63 - 1))
}

// TimeSeed returns a non-zero seed from the wall clock
func (a *Adapter) TimeSeed() int64 {
	return TimeSeed()
}

// TimeSeed returns a non-zero seed from the wall clock for runs without a configured seed
func TimeSeed() int64 {
	seed := time.Now().UnixNano() & (1<<62 - 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
