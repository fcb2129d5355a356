// Package rns implements the residue number system layer: reconstruction of
// big integers from their residues modulo a set of pairwise coprime moduli,
// decomposition of big integers into residues, and rounded scaling of
// residue vectors between two such sets.
package rns

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrEmptyModuli is returned when a context is built from an empty list of moduli.
	ErrEmptyModuli = errors.New("empty list of moduli")
	// ErrInvalidModulus is returned when a modulus is smaller than 2.
	ErrInvalidModulus = errors.New("invalid modulus")
	// ErrNotCoprime is returned when two moduli share a common factor.
	ErrNotCoprime = errors.New("moduli are not pairwise coprime")
)

// Context stores the moduli q_0, ..., q_{k-1} of a residue number system,
// their product Q and the Garner coefficients
// g_i = (Q/q_i) * [(Q/q_i)^-1]_{q_i} mod Q, which satisfy g_i = 1 mod q_i
// and g_i = 0 mod q_j for j != i.
type Context struct {
	moduli  []uint64
	product *big.Int
	garner  []*big.Int
}

// NewContext creates a new Context from the given moduli.
func NewContext(moduli []uint64) (*Context, error) {

	if len(moduli) == 0 {
		return nil, fmt.Errorf("cannot NewContext: %w", ErrEmptyModuli)
	}

	product := big.NewInt(1)
	for i, qi := range moduli {

		if qi < 2 {
			return nil, fmt.Errorf("cannot NewContext: %w: moduli[%d]=%d", ErrInvalidModulus, i, qi)
		}

		for j := 0; j < i; j++ {
			if gcd(qi, moduli[j]) != 1 {
				return nil, fmt.Errorf("cannot NewContext: %w: moduli[%d]=%d and moduli[%d]=%d", ErrNotCoprime, j, moduli[j], i, qi)
			}
		}

		product.Mul(product, new(big.Int).SetUint64(qi))
	}

	garner := make([]*big.Int, len(moduli))

	for i, qi := range moduli {

		bigQi := new(big.Int).SetUint64(qi)

		// Q/q_i
		qHat := new(big.Int).Quo(product, bigQi)

		// [(Q/q_i)^-1]_{q_i}, exists since the moduli are pairwise coprime
		qHatInv := new(big.Int).Mod(qHat, bigQi)
		qHatInv.ModInverse(qHatInv, bigQi)

		garner[i] = qHat.Mul(qHat, qHatInv)
		garner[i].Mod(garner[i], product)
	}

	return &Context{
		moduli:  append([]uint64{}, moduli...),
		product: product,
		garner:  garner,
	}, nil
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Modulus returns a copy of the product of the moduli.
func (c *Context) Modulus() *big.Int {
	return new(big.Int).Set(c.product)
}

// Moduli returns a copy of the moduli.
func (c *Context) Moduli() []uint64 {
	return append([]uint64{}, c.moduli...)
}

// Len returns the number of moduli.
func (c *Context) Len() int {
	return len(c.moduli)
}

// Garner returns a copy of the i-th Garner coefficient and true, or nil and
// false if i is out of range.
func (c *Context) Garner(i int) (*big.Int, bool) {
	if i < 0 || i >= len(c.garner) {
		return nil, false
	}
	return new(big.Int).Set(c.garner[i]), true
}

// Lift reconstructs the unique integer in [0, Q) whose residues are the
// given values. The method panics if len(residues) differs from the number
// of moduli.
func (c *Context) Lift(residues []uint64) *big.Int {
	return c.LiftInto(residues, new(big.Int), new(big.Int))
}

// LiftInto is identical to Lift, but writes the result on out and uses tmp
// as a scratch value, avoiding allocations.
func (c *Context) LiftInto(residues []uint64, out, tmp *big.Int) *big.Int {

	if len(residues) != len(c.moduli) {
		panic(fmt.Errorf("cannot Lift: len(residues)=%d != number of moduli=%d", len(residues), len(c.moduli)))
	}

	out.SetUint64(0)
	for i, ri := range residues {
		tmp.SetUint64(ri)
		tmp.Mul(tmp, c.garner[i])
		out.Add(out, tmp)
	}

	return out.Mod(out, c.product)
}

// Project returns the residues of x modulo each modulus.
// Negative values are mapped to their non-negative representative.
func (c *Context) Project(x *big.Int) []uint64 {
	residues := make([]uint64, len(c.moduli))
	c.ProjectInto(x, residues, new(big.Int), new(big.Int))
	return residues
}

// ProjectInto is identical to Project, but writes the residues on out and
// uses tmp and bigQi as scratch values.
func (c *Context) ProjectInto(x *big.Int, out []uint64, tmp, bigQi *big.Int) {

	if len(out) != len(c.moduli) {
		panic(fmt.Errorf("cannot Project: len(out)=%d != number of moduli=%d", len(out), len(c.moduli)))
	}

	for i, qi := range c.moduli {
		bigQi.SetUint64(qi)
		out[i] = tmp.Mod(x, bigQi).Uint64()
	}
}

// Equal returns true if both contexts have the same moduli in the same order.
func (c *Context) Equal(other *Context) bool {
	if c == other {
		return true
	}

	if c == nil || other == nil || len(c.moduli) != len(other.moduli) {
		return false
	}

	for i := range c.moduli {
		if c.moduli[i] != other.moduli[i] {
			return false
		}
	}

	return true
}
