package sampling

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// PRNG is an interface for secure generation of random bytes.
type PRNG interface {
	io.Reader
}

// ThreadSafePRNG is a [PRNG] backed by the operating system entropy source (crypto/rand).
type ThreadSafePRNG struct {
}

// NewPRNG returns a [ThreadSafePRNG].
func NewPRNG() (*ThreadSafePRNG, error) {
	return &ThreadSafePRNG{}, nil
}

// Read fills sum from crypto/rand.
func (prng *ThreadSafePRNG) Read(sum []byte) (n int, err error) {
	return rand.Read(sum)
}

// KeyedPRNG expands a key into a deterministic stream with the blake2b XOF.
// Two instances with the same key read the same bytes, which lets a [Seed]
// stand for the public polynomials it generates.
// Concurrent reads are serialized but make the stream order unpredictable;
// use [ThreadSafePRNG] for private randomness.
type KeyedPRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// NewKeyedPRNG returns a [KeyedPRNG] keyed by a copy of key, which must be
// at most 64 bytes long.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	var err error
	prng := new(KeyedPRNG)
	prng.key = make([]byte, len(key))
	copy(prng.key, key)
	if prng.xof, err = blake2b.NewXOF(blake2b.OutputLengthUnknown, prng.key); err != nil {
		return nil, fmt.Errorf("cannot NewKeyedPRNG: %w", err)
	}
	return prng, nil
}

// NewKeyedPRNGFromSeed creates a new [KeyedPRNG] keyed by the given seed.
func NewKeyedPRNGFromSeed(seed Seed) *KeyedPRNG {
	prng, err := NewKeyedPRNG(seed[:])
	if err != nil {
		// Sanity check, a 32-byte key is always valid.
		panic(err)
	}
	return prng
}

// Key returns a copy of the key of the stream.
func (prng *KeyedPRNG) Key() (key []byte) {
	key = make([]byte, len(prng.key))
	copy(key, prng.key)
	return
}

// Read fills sum with the next bytes of the stream.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	return prng.xof.Read(sum)
}

// Reset rewinds the stream to its first byte.
func (prng *KeyedPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof.Reset()
}
