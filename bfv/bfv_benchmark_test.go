package bfv

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/bfvcore/ring"
)

func BenchmarkBFV(b *testing.B) {

	benchParams := []ParametersLiteral{
		{LogN: 12, LogQ: []int{62, 62, 62}, T: 0x10001},
	}

	if *flagParamString != "" {
		var jsonParams ParametersLiteral
		if err := json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			b.Fatal(err)
		}
		benchParams = []ParametersLiteral{jsonParams} // the custom benchmark suite reads the parameters from the -params flag
	}

	for _, p := range benchParams {

		tc := newTestContext(b, p)

		for _, benchSet := range []func(tc *testContext, b *testing.B){
			benchEncoder,
			benchEncryption,
			benchKeySwitching,
		} {
			benchSet(tc, b)
			runtime.GC()
		}
	}
}

func benchEncoder(tc *testContext, b *testing.B) {

	params := tc.params
	values := randomValues(params, tc.prng)

	b.Run(testString("Encoder/Encode/Poly", tc, 0), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.ecd.Encode(values, PolyEncoding()); err != nil {
				b.Fatal(err)
			}
		}
	})

	if !params.SupportsSimd() {
		return
	}

	b.Run(testString("Encoder/Encode/Simd", tc, 0), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.ecd.Encode(values, SimdEncoding()); err != nil {
				b.Fatal(err)
			}
		}
	})

	pt, err := tc.ecd.Encode(values, SimdEncoding())
	require.NoError(b, err)

	b.Run(testString("Encoder/Decode/Simd", tc, 0), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.ecd.Decode(pt, nil); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchEncryption(tc *testContext, b *testing.B) {

	params := tc.params

	for _, level := range testLevels(params) {

		pt, err := tc.ecd.Encode(randomValues(params, tc.prng), PolyEncodingAtLevel(level))
		require.NoError(b, err)

		b.Run(testString("Encrypt", tc, level), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := tc.sk.Encrypt(pt); err != nil {
					b.Fatal(err)
				}
			}
		})

		ct, err := tc.sk.Encrypt(pt)
		require.NoError(b, err)

		b.Run(testString("Decrypt", tc, level), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := tc.sk.Decrypt(ct); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(testString("MeasureNoise", tc, level), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := tc.sk.MeasureNoiseVariableTime(ct); err != nil {
					b.Fatal(err)
				}
			}
		})

		data, err := ct.MarshalBinary()
		require.NoError(b, err)

		b.Run(testString("Ciphertext/UnmarshalBinary", tc, level), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := NewCiphertextFromBinary(params, data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func benchKeySwitching(tc *testContext, b *testing.B) {

	params := tc.params

	ctx, err := params.ContextAtLevel(0)
	require.NoError(b, err)

	from, err := ring.NewSmallPoly(ctx, ring.PowerBasis, params.Variance(), tc.prng)
	require.NoError(b, err)

	b.Run(testString("KeySwitchingKey/Gen", tc, 0), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := NewKeySwitchingKey(tc.sk, from); err != nil {
				b.Fatal(err)
			}
		}
	})

	ksk, err := NewKeySwitchingKey(tc.sk, from)
	require.NoError(b, err)

	input := ring.NewRandomPoly(ctx, ring.PowerBasis, tc.prng)
	input.AllowVariableTimeComputations()
	acc0, acc1 := ring.NewPoly(ctx, ring.Ntt), ring.NewPoly(ctx, ring.Ntt)

	b.Run(testString("KeySwitch", tc, 0), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := ksk.KeySwitch(input, acc0, acc1); err != nil {
				b.Fatal(err)
			}
		}
	})

	if ctx.ModuliCount() < 2 {
		return
	}

	rlk, err := NewRelinearizationKey(tc.sk)
	require.NoError(b, err)

	pt, err := tc.ecd.Encode(randomValues(params, tc.prng), PolyEncoding())
	require.NoError(b, err)

	ct := newDegree2Ciphertext(b, tc, pt)

	b.Run(testString("Relinearize", tc, 0), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := rlk.Relinearize(ct); err != nil {
				b.Fatal(err)
			}
		}
	})
}
