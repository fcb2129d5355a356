package rns

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tuneinsight/bfvcore/utils"
)

// ErrInvalidScalingFactor is returned when the denominator of a scaling factor is not positive.
var ErrInvalidScalingFactor = errors.New("invalid scaling factor")

// ScalingFactor is the rational number Numerator/Denominator.
type ScalingFactor struct {
	Numerator   *big.Int
	Denominator *big.Int
}

// NewScalingFactor returns a ScalingFactor holding copies of num and den.
func NewScalingFactor(num, den *big.Int) ScalingFactor {
	return ScalingFactor{
		Numerator:   new(big.Int).Set(num),
		Denominator: new(big.Int).Set(den),
	}
}

// IsOne returns true if the factor is equal to 1.
func (f ScalingFactor) IsOne() bool {
	return f.Numerator.Cmp(f.Denominator) == 0
}

// Scaler maps the residues of x in [0, Q_from) to the residues of
// round(x * Numerator / Denominator) (or its floor) in the context to.
type Scaler struct {
	from   *Context
	to     *Context
	factor ScalingFactor

	halfDen *big.Int

	// scratch
	x, tmp, qi *big.Int
}

// NewScaler creates a new Scaler from the context from to the context to.
func NewScaler(from, to *Context, factor ScalingFactor) (*Scaler, error) {

	if from == nil || to == nil {
		return nil, fmt.Errorf("cannot NewScaler: nil context")
	}

	if factor.Numerator == nil || factor.Denominator == nil || factor.Denominator.Sign() <= 0 || factor.Numerator.Sign() < 0 {
		return nil, fmt.Errorf("cannot NewScaler: %w", ErrInvalidScalingFactor)
	}

	factor = NewScalingFactor(factor.Numerator, factor.Denominator)

	return &Scaler{
		from:    from,
		to:      to,
		factor:  factor,
		halfDen: new(big.Int).Rsh(factor.Denominator, 1),
		x:       new(big.Int),
		tmp:     new(big.Int),
		qi:      new(big.Int),
	}, nil
}

// From returns the source context.
func (s *Scaler) From() *Context {
	return s.from
}

// To returns the target context.
func (s *Scaler) To() *Context {
	return s.to
}

// Factor returns the scaling factor.
func (s *Scaler) Factor() ScalingFactor {
	return NewScalingFactor(s.factor.Numerator, s.factor.Denominator)
}

// ScaleResidues writes on out the residues in the target context of
// round(x * num / den), or floor(x * num / den) if floor is true, where x is
// the integer of [0, Q_from) with residues in.
// The Scaler uses internal scratch values and is therefore not safe for
// concurrent use. The scratch values are zeroed before returning.
// This method does not run in constant time.
func (s *Scaler) ScaleResidues(in, out []uint64, floor bool) {

	defer wipe(s.x)
	defer wipe(s.tmp)

	x := s.from.LiftInto(in, s.x, s.tmp)

	x.Mul(x, s.factor.Numerator)

	if !floor {
		x.Add(x, s.halfDen)
	}

	// x is non-negative, so Quo is the floor division
	x.Quo(x, s.factor.Denominator)

	s.to.ProjectInto(x, out, s.tmp, s.qi)
}

// wipe zeroes the words backing x and sets x to zero.
func wipe(x *big.Int) {
	w := x.Bits()
	utils.Zeroize(w[:cap(w)])
	x.SetInt64(0)
}
