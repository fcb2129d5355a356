package ring

import (
	"fmt"

	"github.com/tuneinsight/bfvcore/ring/rns"
	"github.com/tuneinsight/bfvcore/utils"
)

// Scaler maps polynomials of a Context to another RNS basis, by scaling each
// coefficient by a rational factor with rounding or flooring.
type Scaler struct {
	from *Context
	to   *rns.Context
	// nil unless the Scaler was created with NewScaler
	toRing *Context
	rns    *rns.Scaler
}

// NewScaler creates a new Scaler between two contexts of the same degree.
func NewScaler(from, to *Context, factor rns.ScalingFactor) (*Scaler, error) {

	if from.N() != to.N() {
		return nil, fmt.Errorf("cannot NewScaler: degrees differ: %d != %d", from.N(), to.N())
	}

	s, err := NewScalerToBasis(from, to.rns, factor)
	if err != nil {
		return nil, err
	}

	s.toRing = to

	return s, nil
}

// NewScalerToBasis creates a new Scaler from a Context to an RNS basis
// whose moduli need not support the NTT, for instance a plaintext modulus.
func NewScalerToBasis(from *Context, to *rns.Context, factor rns.ScalingFactor) (*Scaler, error) {

	scaler, err := rns.NewScaler(from.rns, to, factor)
	if err != nil {
		return nil, fmt.Errorf("cannot NewScaler: %w", err)
	}

	return &Scaler{from: from, to: to, rns: scaler}, nil
}

// From returns the source context.
func (s *Scaler) From() *Context {
	return s.from
}

// To returns the target RNS basis.
func (s *Scaler) To() *rns.Context {
	return s.to
}

// Scale returns, for each modulus of the target basis, the residues of
// round(x * factor), or floor(x * factor) if floor is true, where x ranges
// over the coefficients of p in [0, Q_from).
// The input must be in PowerBasis.
// The Scaler is not safe for concurrent use. Its scratch space is zeroed
// before returning, but the scaling does not run in constant time.
func (s *Scaler) Scale(p *Poly, floor bool) (coeffs [][]uint64) {

	if !p.ctx.Equal(s.from) {
		panic(fmt.Errorf("cannot Scale: polynomial context does not match the source context"))
	}

	if p.repr != PowerBasis {
		panic(fmt.Errorf("cannot Scale: polynomial must be in %s but is in %s", PowerBasis, p.repr))
	}

	coeffs = make([][]uint64, s.to.Len())
	for i := range coeffs {
		coeffs[i] = make([]uint64, p.N())
	}

	s.scale(p, coeffs, floor)

	return
}

// ScaleNew is identical to Scale, but returns a new polynomial of the target
// context in PowerBasis. The Scaler must have been created with NewScaler.
func (s *Scaler) ScaleNew(p *Poly, floor bool) (out *Poly) {

	if s.toRing == nil {
		panic(fmt.Errorf("cannot ScaleNew: the target basis is not a ring context"))
	}

	if !p.ctx.Equal(s.from) {
		panic(fmt.Errorf("cannot ScaleNew: polynomial context does not match the source context"))
	}

	if p.repr != PowerBasis {
		panic(fmt.Errorf("cannot ScaleNew: polynomial must be in %s but is in %s", PowerBasis, p.repr))
	}

	out = NewPoly(s.toRing, PowerBasis)
	out.variableTime = p.variableTime

	s.scale(p, out.coeffs, floor)

	return
}

func (s *Scaler) scale(p *Poly, coeffs [][]uint64, floor bool) {

	in := make([]uint64, p.ModuliCount())
	res := make([]uint64, len(coeffs))
	defer utils.Zeroize(in)
	defer utils.Zeroize(res)

	for j := 0; j < p.N(); j++ {

		for i := range in {
			in[i] = p.coeffs[i][j]
		}

		s.rns.ScaleResidues(in, res, floor)

		for i := range res {
			coeffs[i][j] = res[i]
		}
	}
}
