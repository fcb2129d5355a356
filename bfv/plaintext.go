package bfv

import (
	"fmt"

	"github.com/tuneinsight/bfvcore/ring"
	"github.com/tuneinsight/bfvcore/utils"
)

// Plaintext is a vector of N integers modulo T encoded at a given level.
// It caches the value scaled by Delta(level) in the Ntt representation,
// which is what encryption consumes.
type Plaintext struct {
	params   Parameters
	value    []uint64
	encoding *Encoding
	level    int
	polyNTT  *ring.Poly
}

// newPlaintext takes ownership of value, which must have N coefficients in [0, T).
func newPlaintext(params Parameters, value []uint64, encoding *Encoding, level int) (pt *Plaintext, err error) {

	ctx, err := params.ContextAtLevel(level)
	if err != nil {
		return nil, err
	}

	delta, err := params.Delta(level)
	if err != nil {
		return nil, err
	}

	poly, err := ring.NewPolyFromUint64(ctx, ring.PowerBasis, value)
	if err != nil {
		return nil, err
	}

	poly.ChangeRepresentation(ring.Ntt)
	poly.MulScalarBigint(delta)

	return &Plaintext{
		params:   params,
		value:    value,
		encoding: encoding,
		level:    level,
		polyNTT:  poly,
	}, nil
}

// NewPlaintextZero returns the zero plaintext with the given encoding.
func NewPlaintextZero(params Parameters, encoding Encoding) (*Plaintext, error) {

	ctx, err := params.ContextAtLevel(encoding.Level)
	if err != nil {
		return nil, fmt.Errorf("cannot NewPlaintextZero: %w", err)
	}

	return &Plaintext{
		params:   params,
		value:    make([]uint64, params.N()),
		encoding: &encoding,
		level:    encoding.Level,
		polyNTT:  ring.NewPoly(ctx, ring.Ntt),
	}, nil
}

// Parameters returns the parameters of the plaintext.
func (pt *Plaintext) Parameters() Parameters {
	return pt.params
}

// Level returns the level of the plaintext.
func (pt *Plaintext) Level() int {
	return pt.level
}

// Value returns a copy of the encoded coefficients.
func (pt *Plaintext) Value() []uint64 {
	return append([]uint64{}, pt.value...)
}

// Encoding returns the encoding of the plaintext, if known.
func (pt *Plaintext) Encoding() (enc Encoding, ok bool) {
	if pt.encoding == nil {
		return
	}
	return *pt.encoding, true
}

// Equal returns true if both plaintexts have the same parameters, level
// and value. Encodings are compared only when both are known.
func (pt *Plaintext) Equal(other *Plaintext) bool {

	if pt == other {
		return true
	}

	if pt == nil || other == nil {
		return false
	}

	eq := pt.params.Equal(&other.params)
	eq = eq && pt.level == other.level
	eq = eq && utils.EqualSlice(pt.value, other.value)

	if pt.encoding != nil && other.encoding != nil {
		eq = eq && *pt.encoding == *other.encoding
	}

	return eq
}

// Zeroize sets the value of the plaintext and its cached polynomial to zero.
func (pt *Plaintext) Zeroize() {
	utils.Zeroize(pt.value)
	pt.polyNTT.Zeroize()
}
