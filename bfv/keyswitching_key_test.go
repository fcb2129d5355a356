package bfv

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/bfvcore/ring"
	"github.com/tuneinsight/bfvcore/utils"
	"github.com/tuneinsight/bfvcore/utils/sampling"
)

// keySwitchNoiseBound is the bit-size bound of the error of a key switch for
// 62-bit moduli, small degrees and the default variance.
const keySwitchNoiseBound = 70

func testKeySwitchingKey(tc *testContext, t *testing.T) {

	params := tc.params
	sk := tc.sk

	for _, level := range testLevels(params) {

		t.Run(testString("KeySwitchingKey/Generation", tc, level), func(t *testing.T) {

			ctx, err := params.ContextAtLevel(level)
			require.NoError(t, err)

			from, err := ring.NewSmallPoly(ctx, ring.PowerBasis, params.Variance(), tc.prng)
			require.NoError(t, err)

			ksk, err := NewKeySwitchingKey(sk, from)
			require.NoError(t, err)
			require.Equal(t, level, ksk.Level())
			require.Len(t, ksk.c0, ctx.ModuliCount())
			require.Len(t, ksk.c1, ctx.ModuliCount())
			require.True(t, ksk.c1.Equal(generateC1(ctx, ksk.Seed())))

			s, err := sk.power(level, 1)
			require.NoError(t, err)

			// c0_i + c1_i*s - g_i*from is small
			for i := range ksk.c0 {

				c1s := ksk.c1[i].CopyNew()
				c1s.ChangeRepresentation(ring.Ntt)
				c1s.Mul(s)

				e := ksk.c0[i].CopyNew()
				e.ChangeRepresentation(ring.Ntt)
				e.Add(c1s)
				e.ChangeRepresentation(ring.PowerBasis)

				garner, ok := ctx.RNS().Garner(i)
				require.True(t, ok)
				gfrom := from.CopyNew()
				gfrom.MulScalarBigint(garner)
				e.Sub(gfrom)

				Q := ctx.RNS().Modulus()
				for _, c := range e.ToBigint() {
					require.LessOrEqual(t, centeredBitLen(c, Q), bits.Len(uint(2*params.Variance())))
				}
			}

			// from can be given in any representation
			fromNTT := from.CopyNew()
			fromNTT.ChangeRepresentation(ring.NttShoup)
			_, err = NewKeySwitchingKey(sk, fromNTT)
			require.NoError(t, err)
		})
	}

	t.Run(testString("KeySwitchingKey/Errors", tc, 0), func(t *testing.T) {

		other, err := ring.NewContext([]uint64{4611686018326724609, 4611686018425815041}, 8)
		require.NoError(t, err)

		if _, err = params.LevelOfContext(other); err == nil {
			t.Skip("context is part of the parameters")
		}

		_, err = NewKeySwitchingKey(sk, ring.NewPoly(other, ring.PowerBasis))
		require.ErrorIs(t, err, ErrIncompatibleParameters)

		ctx, err := params.ContextAtLevel(0)
		require.NoError(t, err)

		ksk, err := NewKeySwitchingKey(sk, ring.NewPoly(ctx, ring.PowerBasis))
		require.NoError(t, err)

		acc0, acc1 := ring.NewPoly(ctx, ring.Ntt), ring.NewPoly(ctx, ring.Ntt)

		require.Panics(t, func() {
			_ = ksk.KeySwitch(ring.NewPoly(ctx, ring.Ntt), acc0, acc1)
		})

		if params.MaxLevel() > 0 {
			ctxLow, err := params.ContextAtLevel(params.MaxLevel())
			require.NoError(t, err)
			require.ErrorIs(t, ksk.KeySwitch(ring.NewPoly(ctxLow, ring.PowerBasis), acc0, acc1), ErrInvalidLimbCount)
		}
	})

	t.Run(testString("KeySwitchingKey/Marshaller", tc, 0), func(t *testing.T) {

		for _, level := range testLevels(params) {

			ctx, err := params.ContextAtLevel(level)
			require.NoError(t, err)

			from, err := ring.NewSmallPoly(ctx, ring.PowerBasis, params.Variance(), tc.prng)
			require.NoError(t, err)

			ksk, err := NewKeySwitchingKey(sk, from)
			require.NoError(t, err)

			data, err := ksk.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, ksk.BinarySize(), len(data))

			kskRec, err := NewKeySwitchingKeyFromBinary(params, data)
			require.NoError(t, err)
			require.True(t, ksk.Equal(kskRec))

			dataRec, err := kskRec.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, data, dataRec)
		}
	})

	t.Run(testString("KeySwitchingKey/Marshaller/Errors", tc, 0), func(t *testing.T) {

		ctx, err := params.ContextAtLevel(0)
		require.NoError(t, err)

		ksk, err := NewKeySwitchingKey(sk, ring.NewPoly(ctx, ring.PowerBasis))
		require.NoError(t, err)

		data, err := ksk.MarshalBinary()
		require.NoError(t, err)

		other, err := NewParametersFromLiteral(ParametersLiteral{LogN: 3, Q: []uint64{4611686018326724609}, T: 3})
		require.NoError(t, err)
		_, err = NewKeySwitchingKeyFromBinary(other, data)
		require.ErrorIs(t, err, ErrIncompatibleParameters)

		bad := append([]byte{}, data...)
		binary.LittleEndian.PutUint64(bad[32:], uint64(params.MaxLevel()+1))
		_, err = NewKeySwitchingKeyFromBinary(params, bad)
		require.ErrorIs(t, err, ErrInvalidLevel)

		_, err = NewKeySwitchingKeyFromBinary(params, data[:40+sampling.SeedSize-1])
		require.ErrorIs(t, err, ErrInvalidSeed)

		// wrong number of c0 polynomials
		for _, count := range []uint64{uint64(ctx.ModuliCount() - 1), uint64(ctx.ModuliCount() + 1)} {
			bad = append([]byte{}, data...)
			binary.LittleEndian.PutUint64(bad[40+sampling.SeedSize:], count)
			_, err = NewKeySwitchingKeyFromBinary(params, bad)
			require.ErrorIs(t, err, ErrInvalidKeySwitchingKey)
		}

		_, err = NewKeySwitchingKeyFromBinary(params, data[:len(data)-1])
		require.ErrorIs(t, err, ErrInvalidKeySwitchingKey)

		require.Error(t, new(KeySwitchingKey).UnmarshalBinary(data))
	})
}

// centeredBitLen returns the bit-size of the centered representative of c modulo Q.
func centeredBitLen(c, Q *big.Int) int {
	return utils.Min(c.BitLen(), new(big.Int).Sub(Q, c).BitLen())
}

func testRelinearization(tc *testContext, t *testing.T) {

	params := tc.params

	rlk, err := NewRelinearizationKey(tc.sk)
	require.NoError(t, err)

	for _, level := range testLevels(params) {

		t.Run(testString("Relinearization", tc, level), func(t *testing.T) {

			ctx, err := params.ContextAtLevel(level)
			require.NoError(t, err)

			if ctx.ModuliCount() < 2 {
				t.Skip("the gadget decomposition needs at least two moduli")
			}

			pt, err := tc.ecd.Encode(randomValues(params, tc.prng), PolyEncodingAtLevel(level))
			require.NoError(t, err)

			ct := newDegree2Ciphertext(t, tc, pt)

			ctRelin, err := rlk.Relinearize(ct)
			require.NoError(t, err)
			require.Equal(t, 1, ctRelin.Degree())
			require.Equal(t, level, ctRelin.Level())

			_, ok := ctRelin.Seed()
			require.False(t, ok)

			have, err := tc.sk.Decrypt(ctRelin)
			require.NoError(t, err)
			require.True(t, have.Equal(pt))

			noise, err := tc.sk.MeasureNoiseVariableTime(ctRelin)
			require.NoError(t, err)

			if *flagPrintNoise {
				t.Logf("relinearization noise: %d bits", noise)
			}
		})
	}

	t.Run(testString("Relinearization/Errors", tc, 0), func(t *testing.T) {

		pt, err := tc.ecd.Encode(randomValues(params, tc.prng), PolyEncoding())
		require.NoError(t, err)

		_, err = rlk.Relinearize(encrypt(t, tc, pt))
		require.ErrorIs(t, err, ErrInvalidCiphertext)

		_, err = rlk.KeySwitchingKey(params.MaxLevel() + 1)
		require.ErrorIs(t, err, ErrInvalidLevel)
	})
}

func TestKeySwitch(t *testing.T) {

	for _, numModuli := range []int{1, 2} {

		params, err := DefaultParameters(numModuli, 8)
		require.NoError(t, err)

		ctx, err := params.ContextAtLevel(0)
		require.NoError(t, err)

		prng := newTestPRNG(t)

		Q := ctx.RNS().Modulus()

		t.Run(fmt.Sprintf("KeySwitch/Qi=%d", numModuli), func(t *testing.T) {

			for trial := 0; trial < 100; trial++ {

				sk, err := NewSecretKeyWithPRNG(params, prng)
				require.NoError(t, err)

				from, err := ring.NewSmallPoly(ctx, ring.PowerBasis, params.Variance(), prng)
				require.NoError(t, err)

				ksk, err := NewKeySwitchingKey(sk, from)
				require.NoError(t, err)

				input := ring.NewRandomPoly(ctx, ring.PowerBasis, prng)
				acc0, acc1 := ring.NewPoly(ctx, ring.Ntt), ring.NewPoly(ctx, ring.Ntt)

				require.NoError(t, ksk.KeySwitch(input, acc0, acc1))

				s, err := sk.power(0, 1)
				require.NoError(t, err)

				// acc0 + acc1*s
				acc1.Mul(s)
				acc0.Add(acc1)
				acc0.ChangeRepresentation(ring.PowerBasis)

				// input*from
				want := input.CopyNew()
				want.ChangeRepresentation(ring.Ntt)
				fromNTT := from.CopyNew()
				fromNTT.ChangeRepresentation(ring.Ntt)
				want.Mul(fromNTT)
				want.ChangeRepresentation(ring.PowerBasis)

				acc0.Sub(want)

				for _, c := range acc0.ToBigint() {
					require.LessOrEqual(t, centeredBitLen(c, Q), keySwitchNoiseBound)
				}
			}
		})
	}
}
