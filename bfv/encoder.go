package bfv

import (
	"fmt"

	"github.com/tuneinsight/bfvcore/utils"
)

// GaloisGen is the generator of the Galois group used to order the SIMD slots.
const GaloisGen uint64 = 3

// Encoder encodes vectors of integers modulo T into plaintexts, and decodes them back.
type Encoder struct {
	params Parameters

	// indexMap[i] is the position, in the NTT of the plaintext, of the i-th slot.
	indexMap []int
}

// NewEncoder creates a new [Encoder] for the given parameters.
func NewEncoder(params Parameters) *Encoder {

	ecd := &Encoder{params: params}

	if params.SupportsSimd() {
		ecd.indexMap = simdIndexMap(params.LogN())
	}

	return ecd
}

// simdIndexMap orders the slots as a 2 x N/2 matrix: row j, column i holds the
// evaluation at psi^(+/- GaloisGen^i), so that the automorphisms X -> X^GaloisGen
// and X -> X^-1 respectively rotate the columns and swap the rows.
func simdIndexMap(logN int) (indexMap []int) {

	N := 1 << logN
	rowSize := N >> 1
	m := uint64(2 * N)
	mask := m - 1

	indexMap = make([]int, N)

	pos := uint64(1)
	for i := 0; i < rowSize; i++ {
		index1 := (pos - 1) >> 1
		index2 := (m - pos - 1) >> 1
		indexMap[i] = int(utils.BitReverse64(index1, logN))
		indexMap[rowSize|i] = int(utils.BitReverse64(index2, logN))
		pos = (pos * GaloisGen) & mask
	}

	return
}

// Encode encodes values modulo T into a new plaintext with the given encoding.
// At most N values can be given, the remaining slots are zero.
func (ecd *Encoder) Encode(values []uint64, encoding Encoding) (pt *Plaintext, err error) {

	if len(values) > ecd.params.N() {
		return nil, fmt.Errorf("cannot Encode: %w: %d > %d", ErrTooManyValues, len(values), ecd.params.N())
	}

	if _, err = ecd.params.ContextAtLevel(encoding.Level); err != nil {
		return nil, fmt.Errorf("cannot Encode: %w", err)
	}

	T := ecd.params.PlaintextModulus()

	w := make([]uint64, ecd.params.N())

	switch encoding.Type {
	case EncodingPoly:
		for i, v := range values {
			w[i] = T.Reduce(v)
		}
	case EncodingSimd:

		if !ecd.params.SupportsSimd() {
			return nil, fmt.Errorf("cannot Encode: %w: T=%d does not support the NTT of size %d", ErrEncodingNotSupported, ecd.params.T(), ecd.params.N())
		}

		for i, v := range values {
			w[ecd.indexMap[i]] = T.Reduce(v)
		}

		ecd.params.plaintextNTT.Backward(w)
	default:
		return nil, fmt.Errorf("cannot Encode: %w: %s", ErrEncodingNotSupported, encoding.Type)
	}

	if pt, err = newPlaintext(ecd.params, w, &encoding, encoding.Level); err != nil {
		utils.Zeroize(w)
		return nil, fmt.Errorf("cannot Encode: %w", err)
	}

	return
}

// EncodeInt encodes signed values into a new plaintext with the given encoding.
// Values are first reduced modulo T.
func (ecd *Encoder) EncodeInt(values []int64, encoding Encoding) (pt *Plaintext, err error) {

	if len(values) > ecd.params.N() {
		return nil, fmt.Errorf("cannot EncodeInt: %w: %d > %d", ErrTooManyValues, len(values), ecd.params.N())
	}

	T := ecd.params.PlaintextModulus()

	w := make([]uint64, len(values))
	defer utils.Zeroize(w)

	for i, v := range values {
		w[i] = T.ReduceInt64(v)
	}

	return ecd.Encode(w, encoding)
}

// Decode decodes a plaintext into N values in [0, T).
// The encoding is taken from the plaintext, or from the encoding argument
// when the plaintext does not carry one. If both are given, they must match.
func (ecd *Encoder) Decode(pt *Plaintext, encoding *Encoding) (values []uint64, err error) {

	if !ecd.params.Equal(&pt.params) {
		return nil, fmt.Errorf("cannot Decode: %w", ErrIncompatibleParameters)
	}

	var enc Encoding

	switch {
	case pt.encoding != nil && encoding != nil:
		if *pt.encoding != *encoding {
			return nil, fmt.Errorf("cannot Decode: %w: plaintext is encoded with %s but %s was requested", ErrEncodingMismatch, *pt.encoding, *encoding)
		}
		enc = *encoding
	case pt.encoding != nil:
		enc = *pt.encoding
	case encoding != nil:
		enc = *encoding
	default:
		return nil, fmt.Errorf("cannot Decode: %w", ErrUnspecifiedEncoding)
	}

	values = pt.Value()

	switch enc.Type {
	case EncodingPoly:
	case EncodingSimd:

		if !ecd.params.SupportsSimd() {
			return nil, fmt.Errorf("cannot Decode: %w: T=%d does not support the NTT of size %d", ErrEncodingNotSupported, ecd.params.T(), ecd.params.N())
		}

		w := values
		defer utils.Zeroize(w)

		ecd.params.plaintextNTT.Forward(w)

		values = make([]uint64, len(w))
		for i := range values {
			values[i] = w[ecd.indexMap[i]]
		}
	default:
		return nil, fmt.Errorf("cannot Decode: %w: %s", ErrEncodingNotSupported, enc.Type)
	}

	return
}

// DecodeInt decodes a plaintext into N values in (-T/2, T/2].
// See [Encoder.Decode] for the handling of the encoding.
// This method does not run in constant time.
func (ecd *Encoder) DecodeInt(pt *Plaintext, encoding *Encoding) (values []int64, err error) {

	w, err := ecd.Decode(pt, encoding)
	if err != nil {
		return nil, fmt.Errorf("cannot DecodeInt: %w", err)
	}
	defer utils.Zeroize(w)

	return ecd.params.PlaintextModulus().CenterVecVT(w), nil
}
