// Package ring implements RNS-accelerated modular arithmetic operations for
// polynomials in Z_Q[X]/(X^N+1), including the number theoretic transform,
// the conversions between the power basis and the NTT domains, and the
// rounded scaling of polynomials between two RNS bases.
package ring

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/bfvcore/ring/rns"
	"github.com/tuneinsight/bfvcore/utils"
)

// MinimumDegree is the minimum ring degree.
const MinimumDegree = 8

var (
	// ErrInvalidDegree is returned when the ring degree is not a power of two
	// greater or equal to MinimumDegree.
	ErrInvalidDegree = errors.New("invalid ring degree")
	// ErrNTTNotSupported is returned when a modulus does not support an NTT of the ring degree.
	ErrNTTNotSupported = errors.New("modulus does not support the NTT")
)

// Context stores the precomputations required to operate on polynomials of
// Z_Q[X]/(X^N+1), where Q = q_0 * ... * q_{k-1}.
// A Context is immutable and can be shared between goroutines.
type Context struct {
	n      int
	moduli []uint64
	q      []*Modulus
	ntt    []*NTTOperator
	rns    *rns.Context
}

// NewContext creates a new Context for degree n and the given moduli.
// It returns an error if n is not a power of two greater or equal to
// MinimumDegree, if the moduli are not pairwise coprime, or if a modulus
// does not support an NTT of size n.
func NewContext(moduli []uint64, n int) (*Context, error) {

	if n < MinimumDegree || !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("cannot NewContext: %w: %d must be a power of two greater or equal to %d", ErrInvalidDegree, n, MinimumDegree)
	}

	rnsCtx, err := rns.NewContext(moduli)
	if err != nil {
		return nil, fmt.Errorf("cannot NewContext: %w", err)
	}

	ctx := &Context{
		n:      n,
		moduli: rnsCtx.Moduli(),
		q:      make([]*Modulus, len(moduli)),
		ntt:    make([]*NTTOperator, len(moduli)),
		rns:    rnsCtx,
	}

	for i, qi := range moduli {

		if ctx.q[i], err = NewModulus(qi); err != nil {
			return nil, fmt.Errorf("cannot NewContext: %w", err)
		}

		var ok bool
		if ctx.ntt[i], ok = NewNTTOperator(ctx.q[i], n); !ok {
			return nil, fmt.Errorf("cannot NewContext: %w: moduli[%d]=%d, N=%d", ErrNTTNotSupported, i, qi, n)
		}
	}

	return ctx, nil
}

// N returns the ring degree.
func (c *Context) N() int {
	return c.n
}

// Moduli returns a copy of the moduli.
func (c *Context) Moduli() []uint64 {
	return append([]uint64{}, c.moduli...)
}

// ModuliCount returns the number of moduli.
func (c *Context) ModuliCount() int {
	return len(c.moduli)
}

// Modulus returns the i-th *Modulus.
func (c *Context) Modulus(i int) *Modulus {
	return c.q[i]
}

// NTTOperator returns the NTTOperator of the i-th modulus.
func (c *Context) NTTOperator(i int) *NTTOperator {
	return c.ntt[i]
}

// RNS returns the rns.Context of the moduli.
func (c *Context) RNS() *rns.Context {
	return c.rns
}

// Equal returns true if both contexts are the same object, or have the
// same degree and moduli.
func (c *Context) Equal(other *Context) bool {
	if c == other {
		return true
	}

	if c == nil || other == nil {
		return false
	}

	return c.n == other.n && utils.EqualSlice(c.moduli, other.moduli)
}
