package ring

import (
	"fmt"

	"github.com/tuneinsight/bfvcore/utils"
)

// Poly is a polynomial of Z_Q[X]/(X^N+1) stored as one coefficient vector
// per modulus of its Context, in a given Representation.
//
// A Poly starts in constant-time mode: every operation on it runs in time
// independent of its coefficients. AllowVariableTimeComputations switches it
// to faster variable-time arithmetic, which must only be done once the
// polynomial holds public data. The only way back is CopyNew.
type Poly struct {
	ctx          *Context
	repr         Representation
	variableTime bool

	coeffs [][]uint64 // re-slice of buff
	buff   []uint64

	// Shoup companion of coeffs, only allocated in NttShoup.
	coeffsShoup [][]uint64
	buffShoup   []uint64
}

// NewPoly creates a new zero polynomial in the given representation.
func NewPoly(ctx *Context, repr Representation) (pol *Poly) {

	if ctx == nil {
		panic(fmt.Errorf("cannot NewPoly: nil context"))
	}

	if !repr.IsValid() {
		panic(fmt.Errorf("cannot NewPoly: invalid representation %s", repr))
	}

	pol = &Poly{ctx: ctx, repr: repr}
	pol.buff, pol.coeffs = allocLimbs(ctx)

	if repr == NttShoup {
		pol.buffShoup, pol.coeffsShoup = allocLimbs(ctx)
	}

	return
}

func allocLimbs(ctx *Context) (buff []uint64, coeffs [][]uint64) {
	N := ctx.N()
	buff = make([]uint64, N*ctx.ModuliCount())
	coeffs = make([][]uint64, ctx.ModuliCount())
	for i := range coeffs {
		coeffs[i] = buff[i*N : (i+1)*N]
	}
	return
}

// Context returns the Context of the polynomial.
func (pol *Poly) Context() *Context {
	return pol.ctx
}

// Representation returns the current representation of the polynomial.
func (pol *Poly) Representation() Representation {
	return pol.repr
}

// N returns the number of coefficients of the polynomial.
func (pol *Poly) N() int {
	return pol.ctx.N()
}

// ModuliCount returns the number of limbs of the polynomial.
func (pol *Poly) ModuliCount() int {
	return len(pol.coeffs)
}

// AllowVariableTimeComputations lets subsequent operations on the polynomial
// use variable-time algorithms.
func (pol *Poly) AllowVariableTimeComputations() {
	pol.variableTime = true
}

// AllowsVariableTimeComputations returns true if the polynomial allows
// variable-time computations.
func (pol *Poly) AllowsVariableTimeComputations() bool {
	return pol.variableTime
}

// Limb returns a copy of the coefficients of the i-th limb.
func (pol *Poly) Limb(i int) []uint64 {
	return append([]uint64{}, pol.coeffs[i]...)
}

// Coefficients returns a copy of the coefficients of every limb.
func (pol *Poly) Coefficients() (coeffs [][]uint64) {
	coeffs = make([][]uint64, len(pol.coeffs))
	for i := range pol.coeffs {
		coeffs[i] = pol.Limb(i)
	}
	return
}

// Zeroize sets all coefficients of the polynomial, including its Shoup
// companion, to 0.
func (pol *Poly) Zeroize() {
	utils.Zeroize(pol.buff)
	utils.Zeroize(pol.buffShoup)
}

// CopyNew creates a deep copy of the polynomial.
// The copy never allows variable-time computations.
func (pol *Poly) CopyNew() (p1 *Poly) {
	p1 = NewPoly(pol.ctx, pol.repr)
	copy(p1.buff, pol.buff)
	copy(p1.buffShoup, pol.buffShoup)
	return
}

// Equal returns true if both polynomials have equal contexts, the same
// representation and the same coefficients. The variable-time flag is
// not compared.
func (pol *Poly) Equal(other *Poly) bool {

	if pol == other {
		return true
	}

	if pol == nil || other == nil {
		return false
	}

	return pol.ctx.Equal(other.ctx) && pol.repr == other.repr && utils.EqualSlice(pol.buff, other.buff)
}

// computeShoup (re)computes the Shoup companion of the coefficients.
func (pol *Poly) computeShoup() {

	if pol.buffShoup == nil {
		pol.buffShoup, pol.coeffsShoup = allocLimbs(pol.ctx)
	}

	for i, qi := range pol.ctx.q {
		qi.ShoupVecInto(pol.coeffs[i], pol.coeffsShoup[i])
	}
}

// dropShoup wipes and releases the Shoup companion.
func (pol *Poly) dropShoup() {
	utils.Zeroize(pol.buffShoup)
	pol.buffShoup = nil
	pol.coeffsShoup = nil
}
