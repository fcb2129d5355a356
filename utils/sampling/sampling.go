// Package sampling implements secure sampling of bytes, seeds and small integers.
package sampling

import (
	"fmt"
)

// SeedSize is the size in bytes of a [Seed].
const SeedSize = 32

// Seed is a public value from which a [KeyedPRNG], and therefore every
// pseudo-random value derived from it, can be regenerated.
type Seed [SeedSize]byte

// NewSeed samples a fresh seed from prng.
func NewSeed(prng PRNG) (seed Seed, err error) {
	if _, err = prng.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("cannot NewSeed: %w", err)
	}
	return
}
