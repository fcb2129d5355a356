package rns

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var testModuli = [][]uint64{
	{2},
	{4611686018326724609},
	{1153, 4611686018326724609},
	{4611686018326724609, 4611686018427387761, 4611686018427387617},
}

func TestContext(t *testing.T) {

	t.Run("NewContext/Errors", func(t *testing.T) {
		_, err := NewContext(nil)
		require.ErrorIs(t, err, ErrEmptyModuli)

		_, err = NewContext([]uint64{1153, 1})
		require.ErrorIs(t, err, ErrInvalidModulus)

		_, err = NewContext([]uint64{6, 15})
		require.ErrorIs(t, err, ErrNotCoprime)

		_, err = NewContext([]uint64{4611686018326724609, 4611686018326724609})
		require.ErrorIs(t, err, ErrNotCoprime)
	})

	for _, moduli := range testModuli {

		ctx, err := NewContext(moduli)
		require.NoError(t, err)

		t.Run("Garner", func(t *testing.T) {
			for i := range moduli {
				gi, ok := ctx.Garner(i)
				require.True(t, ok)
				for j, qj := range moduli {
					r := new(big.Int).Mod(gi, new(big.Int).SetUint64(qj)).Uint64()
					if i == j {
						require.Equal(t, uint64(1)%qj, r)
					} else {
						require.Equal(t, uint64(0), r)
					}
				}
			}

			_, ok := ctx.Garner(len(moduli))
			require.False(t, ok)

			_, ok = ctx.Garner(-1)
			require.False(t, ok)
		})

		t.Run("LiftProject", func(t *testing.T) {

			r := rand.New(rand.NewSource(0))

			Q := ctx.Modulus()

			for k := 0; k < 64; k++ {
				x := new(big.Int).Rand(r, Q)
				require.Equal(t, 0, x.Cmp(ctx.Lift(ctx.Project(x))))
			}

			// negative values are mapped to their non-negative representative
			minusOne := ctx.Project(big.NewInt(-1))
			require.Equal(t, 0, new(big.Int).Sub(Q, big.NewInt(1)).Cmp(ctx.Lift(minusOne)))

			require.Panics(t, func() { ctx.Lift(make([]uint64, len(moduli)+1)) })
		})
	}
}

func TestScaler(t *testing.T) {

	from, err := NewContext([]uint64{4611686018427387761, 4611686018427387617})
	require.NoError(t, err)

	to, err := NewContext([]uint64{1153})
	require.NoError(t, err)

	t.Run("InvalidFactor", func(t *testing.T) {
		_, err := NewScaler(from, to, ScalingFactor{Numerator: big.NewInt(1), Denominator: big.NewInt(0)})
		require.ErrorIs(t, err, ErrInvalidScalingFactor)
	})

	t.Run("Rounding", func(t *testing.T) {

		// x * 1153 / Q
		scaler, err := NewScaler(from, to, NewScalingFactor(big.NewInt(1153), from.Modulus()))
		require.NoError(t, err)

		Q := from.Modulus()
		r := rand.New(rand.NewSource(1))

		for k := 0; k < 64; k++ {

			x := new(big.Int).Rand(r, Q)

			out := make([]uint64, 1)

			scaler.ScaleResidues(from.Project(x), out, false)

			// round(x*t/Q) = floor((2*x*t + Q) / (2*Q))
			want := new(big.Int).Mul(x, big.NewInt(2*1153))
			want.Add(want, Q)
			want.Quo(want, new(big.Int).Lsh(Q, 1))
			want.Mod(want, big.NewInt(1153))

			require.Equal(t, want.Uint64(), out[0])

			scaler.ScaleResidues(from.Project(x), out, true)

			want.Mul(x, big.NewInt(1153))
			want.Quo(want, Q)

			require.Equal(t, want.Uint64(), out[0])
		}
	})

	t.Run("ScratchIsZeroed", func(t *testing.T) {

		scaler, err := NewScaler(from, to, NewScalingFactor(big.NewInt(1153), from.Modulus()))
		require.NoError(t, err)

		// Q - 609 rounds to t, which is left in the scratch before the projection
		x := new(big.Int).Sub(from.Modulus(), big.NewInt(609))

		out := make([]uint64, 1)
		for _, floor := range []bool{false, true} {

			scaler.ScaleResidues(from.Project(x), out, floor)

			for _, scratch := range []*big.Int{scaler.x, scaler.tmp} {
				require.Zero(t, scratch.Sign())
				w := scratch.Bits()
				for _, wi := range w[:cap(w)] {
					require.Zero(t, wi)
				}
			}
		}
	})

	t.Run("Identity", func(t *testing.T) {
		scaler, err := NewScaler(from, from, NewScalingFactor(big.NewInt(1), big.NewInt(1)))
		require.NoError(t, err)
		require.True(t, scaler.Factor().IsOne())

		in := []uint64{12345, 67890}
		out := make([]uint64, 2)
		scaler.ScaleResidues(in, out, false)
		require.Equal(t, in, out)
	})
}
