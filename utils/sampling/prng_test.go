package sampling_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/bfvcore/utils/sampling"
)

func Test_PRNG(t *testing.T) {

	t.Run("PRNG", func(t *testing.T) {

		key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07, 0xa1, 0xd7, 0xe9, 0x7b, 0x3b, 0xce, 0xa1, 0xdb,
			0x42, 0xf3, 0xa6, 0xd5, 0x75, 0xd2, 0x0c, 0x92, 0xb7, 0x35, 0xce, 0x0c, 0xee, 0x09, 0x7c, 0x98}

		Ha, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)
		Hb, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)

		sum0 := make([]byte, 512)
		sum1 := make([]byte, 512)

		for i := 0; i < 128; i++ {
			Hb.Read(sum1)
		}

		Hb.Reset()

		Ha.Read(sum0)
		Hb.Read(sum1)

		require.Equal(t, sum0, sum1)
		require.Equal(t, key, Ha.Key())
	})

	t.Run("Seed", func(t *testing.T) {

		prng, err := sampling.NewPRNG()
		require.NoError(t, err)

		seed, err := sampling.NewSeed(prng)
		require.NoError(t, err)

		a := make([]byte, 64)
		b := make([]byte, 64)
		sampling.NewKeyedPRNGFromSeed(seed).Read(a)
		sampling.NewKeyedPRNGFromSeed(seed).Read(b)
		require.Equal(t, a, b)
	})
}

func TestCenteredBinomial(t *testing.T) {

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	for _, variance := range []int{1, 3, 10, 16} {
		coeffs, err := sampling.CenteredBinomial(prng, 1024, variance)
		require.NoError(t, err)
		require.Len(t, coeffs, 1024)
		for _, c := range coeffs {
			require.LessOrEqual(t, c, int64(2*variance))
			require.GreaterOrEqual(t, c, int64(-2*variance))
		}
	}

	_, err = sampling.CenteredBinomial(prng, 8, 0)
	require.Error(t, err)

	_, err = sampling.CenteredBinomial(prng, 8, 17)
	require.Error(t, err)
}
