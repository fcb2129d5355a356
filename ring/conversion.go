package ring

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrTooManyCoefficients is returned when a polynomial is built from more than N values.
var ErrTooManyCoefficients = errors.New("too many coefficients")

// ChangeRepresentation converts the polynomial to the target representation.
// The conversion uses the constant-time NTT unless the polynomial allows
// variable-time computations.
func (pol *Poly) ChangeRepresentation(to Representation) {

	if !to.IsValid() {
		panic(fmt.Errorf("cannot ChangeRepresentation: invalid representation %s", to))
	}

	switch pol.repr {
	case PowerBasis:
		switch to {
		case Ntt:
			pol.ntt()
		case NttShoup:
			pol.ntt()
			pol.computeShoup()
		}
	case Ntt:
		switch to {
		case PowerBasis:
			pol.intt()
		case NttShoup:
			pol.computeShoup()
		}
	case NttShoup:
		switch to {
		case PowerBasis:
			pol.dropShoup()
			pol.intt()
		case Ntt:
			pol.dropShoup()
		}
	}

	pol.repr = to
}

func (pol *Poly) ntt() {
	for i, op := range pol.ctx.ntt {
		if pol.variableTime {
			op.ForwardVT(pol.coeffs[i])
		} else {
			op.Forward(pol.coeffs[i])
		}
	}
}

func (pol *Poly) intt() {
	for i, op := range pol.ctx.ntt {
		if pol.variableTime {
			op.BackwardVT(pol.coeffs[i])
		} else {
			op.Backward(pol.coeffs[i])
		}
	}
}

// NewPolyFromUint64 creates a new polynomial whose coefficients in the given
// representation are the values reduced modulo each modulus. At most N values
// can be given, the remaining coefficients are zero.
func NewPolyFromUint64(ctx *Context, repr Representation, values []uint64) (pol *Poly, err error) {

	if len(values) > ctx.N() {
		return nil, fmt.Errorf("cannot NewPolyFromUint64: %w: %d > %d", ErrTooManyCoefficients, len(values), ctx.N())
	}

	pol = NewPoly(ctx, repr)

	for i, qi := range ctx.q {
		coeffs := pol.coeffs[i]
		for j, v := range values {
			coeffs[j] = qi.Reduce(v)
		}
	}

	pol.refreshShoup()

	return
}

// NewPolyFromInt64 creates a new polynomial whose coefficients in the given
// representation are the signed values reduced modulo each modulus.
// At most N values can be given, the remaining coefficients are zero.
func NewPolyFromInt64(ctx *Context, repr Representation, values []int64) (pol *Poly, err error) {

	if len(values) > ctx.N() {
		return nil, fmt.Errorf("cannot NewPolyFromInt64: %w: %d > %d", ErrTooManyCoefficients, len(values), ctx.N())
	}

	pol = NewPoly(ctx, repr)

	for i, qi := range ctx.q {
		coeffs := pol.coeffs[i]
		for j, v := range values {
			coeffs[j] = qi.ReduceInt64(v)
		}
	}

	pol.refreshShoup()

	return
}

// NewPolyFromBigint creates a new polynomial whose coefficients in the given
// representation are the values reduced modulo each modulus.
// At most N values can be given, the remaining coefficients are zero.
// This function does not run in constant time.
func NewPolyFromBigint(ctx *Context, repr Representation, values []*big.Int) (pol *Poly, err error) {

	if len(values) > ctx.N() {
		return nil, fmt.Errorf("cannot NewPolyFromBigint: %w: %d > %d", ErrTooManyCoefficients, len(values), ctx.N())
	}

	pol = NewPoly(ctx, repr)

	for i, qi := range ctx.q {
		coeffs := pol.coeffs[i]
		for j, v := range values {
			coeffs[j] = qi.ReduceBigint(v)
		}
	}

	pol.refreshShoup()

	return
}

// ToBigint reconstructs the coefficients of the polynomial in [0, Q).
// The polynomial must be in PowerBasis.
// This method does not run in constant time.
func (pol *Poly) ToBigint() (values []*big.Int) {

	if pol.repr != PowerBasis {
		panic(fmt.Errorf("cannot ToBigint: polynomial must be in %s but is in %s", PowerBasis, pol.repr))
	}

	column := make([]uint64, len(pol.coeffs))
	tmp := new(big.Int)

	values = make([]*big.Int, pol.N())
	for j := range values {
		for i := range pol.coeffs {
			column[i] = pol.coeffs[i][j]
		}
		values[j] = pol.ctx.rns.LiftInto(column, new(big.Int), tmp)
	}

	return
}
