package ring

import (
	"fmt"
	"math/big"

	"github.com/tuneinsight/bfvcore/utils"
)

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers below 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// SupportsNTT returns true if a negacyclic NTT of size n exists modulo q,
// that is if n is a power of two greater or equal to MinimumDegree, q is
// a prime and q = 1 mod 2n.
func SupportsNTT(q uint64, n int) bool {
	return n >= MinimumDegree && utils.IsPowerOfTwo(n) && q > 2 && IsPrime(q) && (q-1)%(2*uint64(n)) == 0
}

// GenerateNTTPrimes generates count different NthRoot NTT-friendly primes
// of bit-size logQ, starting from 2^logQ and searching downward.
// The primes are returned in decreasing order.
func GenerateNTTPrimes(logQ int, NthRoot uint64, count int) (primes []uint64, err error) {

	if logQ < 2 || logQ > MaxModulusBitSize {
		return nil, fmt.Errorf("cannot GenerateNTTPrimes: logQ=%d must be in [2, %d]", logQ, MaxModulusBitSize)
	}

	if NthRoot == 0 || !utils.IsPowerOfTwo(NthRoot) {
		return nil, fmt.Errorf("cannot GenerateNTTPrimes: NthRoot=%d must be a power of two", NthRoot)
	}

	primes = []uint64{}

	// 2^logQ + 1 is 1 mod NthRoot, so every step down by NthRoot stays
	// 1 mod NthRoot until the bit-size drops below logQ.
	q := uint64(1)<<logQ + 1

	for len(primes) < count {

		if q, err = PreviousNTTPrime(q, NthRoot); err != nil || utils.BitLen(q) < logQ {
			return nil, fmt.Errorf("cannot GenerateNTTPrimes: not enough primes of %d bits for NthRoot=%d", logQ, NthRoot)
		}

		primes = append(primes, q)
	}

	return primes, nil
}

// PreviousNTTPrime returns the largest NthRoot NTT prime smaller than q.
func PreviousNTTPrime(q, NthRoot uint64) (qPrev uint64, err error) {

	if q <= NthRoot {
		return 0, fmt.Errorf("previous NTT prime is smaller than NthRoot")
	}

	qPrev = q - NthRoot

	for !IsPrime(qPrev) {

		if qPrev <= NthRoot {
			return 0, fmt.Errorf("previous NTT prime is smaller than NthRoot")
		}

		qPrev -= NthRoot
	}

	return qPrev, nil
}
