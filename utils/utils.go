// Package utils implements various helper functions.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Min returns the minimum value of the input slice of values.
func Min[V constraints.Ordered](a, b V) (r V) {
	if a <= b {
		return a
	}
	return b
}

// Max returns the maximum value of the input slice of values.
func Max[V constraints.Ordered](a, b V) (r V) {
	if a >= b {
		return a
	}
	return b
}

// IsPowerOfTwo returns true if x is a power of two (1 included).
func IsPowerOfTwo[V constraints.Integer](x V) bool {
	return x > 0 && x&(x-1) == 0
}

// BitReverse64 returns the bit-reverse value of the input value, within a context of 2^bitLen.
func BitReverse64[V uint64 | uint32 | int | int64](index V, bitLen int) uint64 {
	return bits.Reverse64(uint64(index)) >> (64 - bitLen)
}

// BitLen returns the number of bits necessary to represent x (0 for x = 0).
func BitLen[V constraints.Unsigned](x V) int {
	return bits.Len64(uint64(x))
}
