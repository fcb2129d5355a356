package sampling

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// MinVariance and MaxVariance bound the variance accepted by [CenteredBinomial].
const (
	MinVariance = 1
	MaxVariance = 16
)

// CenteredBinomial samples n integers from the centered binomial distribution of the given
// variance, i.e. each value is the difference of the Hamming weights of two words of
// 2*variance random bits. Values are in [-2*variance, 2*variance].
// The sampling runs in time independent of the sampled values.
func CenteredBinomial(prng PRNG, n, variance int) (coeffs []int64, err error) {

	if variance < MinVariance || variance > MaxVariance {
		return nil, fmt.Errorf("invalid variance: must be in [%d, %d] but is %d", MinVariance, MaxVariance, variance)
	}

	nbits := 2 * variance
	maskAdd := uint64(1)<<nbits - 1
	maskSub := maskAdd << nbits

	buf := make([]byte, 8*n)
	if _, err = prng.Read(buf); err != nil {
		return nil, fmt.Errorf("cannot CenteredBinomial: %w", err)
	}

	coeffs = make([]int64, n)
	for i := range coeffs {
		w := binary.LittleEndian.Uint64(buf[i<<3:])
		coeffs[i] = int64(bits.OnesCount64(w&maskAdd)) - int64(bits.OnesCount64(w&maskSub))
	}

	for i := range buf {
		buf[i] = 0
	}

	return
}
