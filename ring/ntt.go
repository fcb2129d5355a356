package ring

import (
	"fmt"
	"math/bits"

	"github.com/tuneinsight/bfvcore/utils"
)

// NTTOperator evaluates the negacyclic number theoretic transform of size n
// modulo a prime q = 1 mod 2n.
//
// The forward transform uses Cooley-Tukey butterflies, the backward
// transform Gentleman-Sande butterflies, both with Harvey's lazy reduction
// and Shoup twiddle factors. The NTT domain is in bit-reversed order.
//
// Forward and Backward run in constant time. ForwardVT, ForwardVTLazy and
// BackwardVT may branch on the coefficients and must only be used on public data.
type NTTOperator struct {
	q    *Modulus
	n    int
	logN int

	// psi^bitrev(i)
	psiRev      []uint64
	psiRevShoup []uint64

	// psi^-bitrev(i)
	psiInvRev      []uint64
	psiInvRevShoup []uint64

	nInv      uint64
	nInvShoup uint64
}

// NewNTTOperator creates a new NTTOperator for size n and modulus q.
// It returns false if q does not support an NTT of size n, see SupportsNTT.
func NewNTTOperator(q *Modulus, n int) (*NTTOperator, bool) {

	if q == nil || !SupportsNTT(q.Modulus(), n) {
		return nil, false
	}

	psi, ok := primitiveRoot(q, uint64(2*n))
	if !ok {
		return nil, false
	}

	psiInv, _ := q.Inv(psi)
	nInv, _ := q.Inv(uint64(n))

	logN := bits.Len64(uint64(n)) - 1

	op := &NTTOperator{
		q:              q,
		n:              n,
		logN:           logN,
		psiRev:         make([]uint64, n),
		psiRevShoup:    make([]uint64, n),
		psiInvRev:      make([]uint64, n),
		psiInvRevShoup: make([]uint64, n),
		nInv:           nInv,
		nInvShoup:      q.Shoup(nInv),
	}

	powPsi, powPsiInv := uint64(1), uint64(1)

	for i := 0; i < n; i++ {
		j := utils.BitReverse64(i, logN)
		op.psiRev[j] = powPsi
		op.psiInvRev[j] = powPsiInv
		powPsi = q.MulVT(powPsi, psi)
		powPsiInv = q.MulVT(powPsiInv, psiInv)
	}

	q.ShoupVecInto(op.psiRev, op.psiRevShoup)
	q.ShoupVecInto(op.psiInvRev, op.psiInvRevShoup)

	return op, true
}

// primitiveRoot returns a primitive NthRoot-th root of unity modulo q,
// where NthRoot is a power of two dividing q-1.
func primitiveRoot(q *Modulus, NthRoot uint64) (uint64, bool) {

	p := q.Modulus()
	exp := (p - 1) / NthRoot

	for x := uint64(2); x < p; x++ {
		g := q.Pow(x, exp)
		// g^(NthRoot/2) = -1 implies that g has order exactly NthRoot
		if q.Pow(g, NthRoot>>1) == p-1 {
			return g, true
		}
	}

	return 0, false
}

// N returns the size of the transform.
func (op *NTTOperator) N() int {
	return op.n
}

// Modulus returns the modulus of the transform.
func (op *NTTOperator) Modulus() *Modulus {
	return op.q
}

// Forward computes the NTT of a in place. The input must be in [0, q).
func (op *NTTOperator) Forward(a []uint64) {
	op.forwardLazy(a, CRed)
	op.reduce4q(a, CRed)
}

// ForwardVT is the variable-time variant of Forward.
func (op *NTTOperator) ForwardVT(a []uint64) {
	op.forwardLazy(a, CRedVT)
	op.reduce4q(a, CRedVT)
}

// ForwardVTLazy is identical to ForwardVT, except that the output is in
// [0, 4q). The output must be reduced before any non-multiplicative use.
func (op *NTTOperator) ForwardVTLazy(a []uint64) {
	op.forwardLazy(a, CRedVT)
}

// Backward computes the inverse NTT of a in place. The input must be in [0, q).
func (op *NTTOperator) Backward(a []uint64) {
	op.backward(a, CRed)
}

// BackwardVT is the variable-time variant of Backward.
func (op *NTTOperator) BackwardVT(a []uint64) {
	op.backward(a, CRedVT)
}

func (op *NTTOperator) checkLength(a []uint64) {
	if len(a) != op.n {
		panic(fmt.Errorf("invalid NTT input length: %d != %d", len(a), op.n))
	}
}

func (op *NTTOperator) reduce4q(a []uint64, cred func(a, q uint64) uint64) {
	q, twoQ := op.q.p, op.q.p<<1
	for i := range a {
		a[i] = cred(cred(a[i], twoQ), q)
	}
}

// forwardLazy evaluates the Cooley-Tukey butterflies with outputs in [0, 4q).
func (op *NTTOperator) forwardLazy(a []uint64, cred func(a, q uint64) uint64) {

	op.checkLength(a)

	q := op.q.p
	twoQ := q << 1

	var U, V, W, WShoup uint64

	t := op.n
	for m := 1; m < op.n; m <<= 1 {

		t >>= 1

		for i := 0; i < m; i++ {

			j1 := (i * t) << 1
			j2 := j1 + t

			W = op.psiRev[m+i]
			WShoup = op.psiRevShoup[m+i]

			x := a[j1:j2]
			y := a[j2 : j2+t]

			for j := range x {
				U = cred(x[j], twoQ)
				V = MulShoupLazy(y[j], W, WShoup, q)
				x[j] = U + V
				y[j] = U + twoQ - V
			}
		}
	}
}

// backward evaluates the Gentleman-Sande butterflies followed by the
// multiplication by n^-1, with outputs in [0, q).
func (op *NTTOperator) backward(a []uint64, cred func(a, q uint64) uint64) {

	op.checkLength(a)

	q := op.q.p
	twoQ := q << 1

	var U, V, W, WShoup uint64

	t := 1
	for m := op.n >> 1; m >= 1; m >>= 1 {

		j1 := 0

		for i := 0; i < m; i++ {

			j2 := j1 + t

			W = op.psiInvRev[m+i]
			WShoup = op.psiInvRevShoup[m+i]

			x := a[j1:j2]
			y := a[j2 : j2+t]

			for j := range x {
				U, V = x[j], y[j]
				x[j] = cred(U+V, twoQ)
				y[j] = MulShoupLazy(U+twoQ-V, W, WShoup, q)
			}

			j1 += t << 1
		}

		t <<= 1
	}

	for i := range a {
		a[i] = cred(MulShoupLazy(a[i], op.nInv, op.nInvShoup, q), q)
	}
}
