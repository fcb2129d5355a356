package ring

import (
	"fmt"

	"github.com/tuneinsight/bfvcore/utils"
	"github.com/tuneinsight/bfvcore/utils/sampling"
)

// NewSmallPoly samples a new polynomial with coefficients drawn from a
// centered binomial distribution of the given variance, and returns it in
// the given representation.
func NewSmallPoly(ctx *Context, repr Representation, variance int, prng sampling.PRNG) (pol *Poly, err error) {

	coeffs, err := sampling.CenteredBinomial(prng, ctx.N(), variance)
	if err != nil {
		return nil, fmt.Errorf("cannot NewSmallPoly: %w", err)
	}
	defer utils.Zeroize(coeffs)

	if pol, err = NewPolyFromInt64(ctx, PowerBasis, coeffs); err != nil {
		return nil, fmt.Errorf("cannot NewSmallPoly: %w", err)
	}

	pol.ChangeRepresentation(repr)

	return pol, nil
}

// NewRandomPoly samples a new polynomial with coefficients uniformly
// distributed in Z_Q, in the given representation.
func NewRandomPoly(ctx *Context, repr Representation, prng sampling.PRNG) (pol *Poly) {

	pol = NewPoly(ctx, repr)

	for i, qi := range ctx.q {
		qi.RandomVecInto(pol.coeffs[i], prng)
	}

	pol.refreshShoup()

	return
}

// NewRandomPolyFromSeed deterministically derives a uniformly random
// polynomial from seed, in the given representation.
func NewRandomPolyFromSeed(ctx *Context, repr Representation, seed sampling.Seed) *Poly {
	return NewRandomPoly(ctx, repr, sampling.NewKeyedPRNGFromSeed(seed))
}
