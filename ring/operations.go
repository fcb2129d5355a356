package ring

import (
	"fmt"
	"math/big"
)

// checkCompatible panics if the polynomials do not share the same context.
func (pol *Poly) checkCompatible(other *Poly, op string) {
	if !pol.ctx.Equal(other.ctx) {
		panic(fmt.Errorf("cannot %s: incompatible contexts", op))
	}
}

// checkOperands panics unless the receiver is not in NttShoup and other is in
// the same representation, or in NttShoup when the receiver is in Ntt.
func (pol *Poly) checkOperands(other *Poly, op string) {

	pol.checkCompatible(other, op)

	if pol.repr == NttShoup {
		panic(fmt.Errorf("cannot %s: receiver cannot be in %s", op, NttShoup))
	}

	if pol.repr != other.repr && !(pol.repr == Ntt && other.repr == NttShoup) {
		panic(fmt.Errorf("cannot %s: incompatible representations %s and %s", op, pol.repr, other.repr))
	}
}

// useVT returns true if both operands allow variable-time computations,
// and propagates the result on the receiver.
func (pol *Poly) useVT(other *Poly) bool {
	pol.variableTime = pol.variableTime && other.variableTime
	return pol.variableTime
}

// Add evaluates pol = pol + other.
func (pol *Poly) Add(other *Poly) {

	pol.checkOperands(other, "Add")

	vt := pol.useVT(other)

	for i, qi := range pol.ctx.q {
		if vt {
			qi.AddVecVT(pol.coeffs[i], other.coeffs[i])
		} else {
			qi.AddVec(pol.coeffs[i], other.coeffs[i])
		}
	}
}

// Sub evaluates pol = pol - other.
func (pol *Poly) Sub(other *Poly) {

	pol.checkOperands(other, "Sub")

	vt := pol.useVT(other)

	for i, qi := range pol.ctx.q {
		if vt {
			qi.SubVecVT(pol.coeffs[i], other.coeffs[i])
		} else {
			qi.SubVec(pol.coeffs[i], other.coeffs[i])
		}
	}
}

// Neg evaluates pol = -pol.
func (pol *Poly) Neg() {

	if pol.repr == NttShoup {
		panic(fmt.Errorf("cannot Neg: receiver cannot be in %s", NttShoup))
	}

	for i, qi := range pol.ctx.q {
		if pol.variableTime {
			qi.NegVecVT(pol.coeffs[i])
		} else {
			qi.NegVec(pol.coeffs[i])
		}
	}
}

// Mul evaluates pol = pol * other. The receiver must be in Ntt and other
// in Ntt or NttShoup.
func (pol *Poly) Mul(other *Poly) {

	pol.checkCompatible(other, "Mul")

	if pol.repr != Ntt {
		panic(fmt.Errorf("cannot Mul: receiver must be in %s but is in %s", Ntt, pol.repr))
	}

	vt := pol.useVT(other)

	switch other.repr {
	case Ntt:
		for i, qi := range pol.ctx.q {
			if vt {
				qi.MulVecVT(pol.coeffs[i], other.coeffs[i])
			} else {
				qi.MulVec(pol.coeffs[i], other.coeffs[i])
			}
		}
	case NttShoup:
		for i, qi := range pol.ctx.q {
			if vt {
				qi.MulShoupVecVT(pol.coeffs[i], other.coeffs[i], other.coeffsShoup[i])
			} else {
				qi.MulShoupVec(pol.coeffs[i], other.coeffs[i], other.coeffsShoup[i])
			}
		}
	default:
		panic(fmt.Errorf("cannot Mul: operand must be in %s or %s but is in %s", Ntt, NttShoup, other.repr))
	}
}

// MulScalar evaluates pol = pol * scalar.
func (pol *Poly) MulScalar(scalar uint64) {
	for i, qi := range pol.ctx.q {
		pol.mulScalarLimb(i, qi.Reduce(scalar))
	}
	pol.refreshShoup()
}

// MulScalarBigint evaluates pol = pol * scalar.
func (pol *Poly) MulScalarBigint(scalar *big.Int) {
	for i, qi := range pol.ctx.q {
		pol.mulScalarLimb(i, qi.ReduceBigint(scalar))
	}
	pol.refreshShoup()
}

func (pol *Poly) mulScalarLimb(i int, scalar uint64) {
	if pol.variableTime {
		pol.ctx.q[i].ScalarMulVecVT(pol.coeffs[i], scalar)
	} else {
		pol.ctx.q[i].ScalarMulVec(pol.coeffs[i], scalar)
	}
}

func (pol *Poly) refreshShoup() {
	if pol.repr == NttShoup {
		pol.computeShoup()
	}
}
