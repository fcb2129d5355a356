package bfv

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"

	"github.com/tuneinsight/bfvcore/ring"
	"github.com/tuneinsight/bfvcore/utils/buffer"
	"github.com/tuneinsight/bfvcore/utils/sampling"
	"github.com/tuneinsight/bfvcore/utils/structs"
)

// maxCiphertextDegree bounds the degree accepted when decoding a ciphertext.
const maxCiphertextDegree = 255

// Ciphertext is a vector of polynomials (c0, c1, ...) in the Ntt
// representation, at a given level, such that c0 + c1*s + c2*s^2 + ...
// decrypts to the scaled message plus a small error.
//
// A ciphertext of degree 1 produced by encryption carries the seed from
// which c1 is derived, so that c1 need not be serialized.
type Ciphertext struct {
	params Parameters
	level  int
	seed   *sampling.Seed

	Value structs.Vector[*ring.Poly]
}

// NewCiphertext returns a new zero ciphertext of the given degree and level.
func NewCiphertext(params Parameters, degree, level int) (*Ciphertext, error) {

	if degree < 1 || degree > maxCiphertextDegree {
		return nil, fmt.Errorf("cannot NewCiphertext: %w: degree=%d must be in [1, %d]", ErrInvalidCiphertext, degree, maxCiphertextDegree)
	}

	ctx, err := params.ContextAtLevel(level)
	if err != nil {
		return nil, fmt.Errorf("cannot NewCiphertext: %w", err)
	}

	ct := &Ciphertext{params: params, level: level}
	ct.Value = newPublicPolys(ctx, ring.Ntt, degree+1)

	return ct, nil
}

// newPublicPolys allocates count zero polynomials that allow variable-time computations.
func newPublicPolys(ctx *ring.Context, repr ring.Representation, count int) structs.Vector[*ring.Poly] {
	polys := make(structs.Vector[*ring.Poly], count)
	for i := range polys {
		polys[i] = ring.NewPoly(ctx, repr)
		polys[i].AllowVariableTimeComputations()
	}
	return polys
}

// Parameters returns the parameters of the ciphertext.
func (ct *Ciphertext) Parameters() Parameters {
	return ct.params
}

// Degree returns the degree of the ciphertext.
func (ct *Ciphertext) Degree() int {
	return len(ct.Value) - 1
}

// Level returns the level of the ciphertext.
func (ct *Ciphertext) Level() int {
	return ct.level
}

// Seed returns the seed from which c1 was derived, if any.
func (ct *Ciphertext) Seed() (seed sampling.Seed, ok bool) {
	if ct.seed == nil {
		return
	}
	return *ct.seed, true
}

// Equal performs a deep equal.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {

	if ct == other {
		return true
	}

	if ct == nil || other == nil {
		return false
	}

	return ct.params.Equal(&other.params) &&
		ct.level == other.level &&
		cmp.Equal(ct.seed, other.seed) &&
		ct.Value.Equal(other.Value)
}

// CopyNew creates a deep copy of the ciphertext.
func (ct *Ciphertext) CopyNew() *Ciphertext {

	cpy := &Ciphertext{params: ct.params, level: ct.level}

	if ct.seed != nil {
		seed := *ct.seed
		cpy.seed = &seed
	}

	cpy.Value = ct.Value.CopyNew()
	for _, p := range cpy.Value {
		p.AllowVariableTimeComputations()
	}

	return cpy
}

// compressed returns true if c1 is serialized as its seed.
func (ct *Ciphertext) compressed() bool {
	return ct.seed != nil && ct.Degree() == 1
}

// serializedPolys returns the polynomials written by WriteTo.
func (ct *Ciphertext) serializedPolys() structs.Vector[*ring.Poly] {
	if ct.compressed() {
		return ct.Value[:1]
	}
	return ct.Value
}

// BinarySize returns the serialized size of the object in bytes.
func (ct *Ciphertext) BinarySize() (size int) {

	size = 32 + 8 + 8 + 1

	if ct.compressed() {
		size += sampling.SeedSize
	}

	return size + ct.serializedPolys().BinarySize()
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// The encoding is the fingerprint of the parameters, the level, the degree,
// a flag followed by the seed if c1 is compressed, and the vector of
// polynomials (c0 only if compressed).
//
// Unless w implements the buffer.Writer interface (see utils/buffer/writer.go),
// it will be wrapped into a bufio.Writer.
func (ct *Ciphertext) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		fingerprint := ct.params.Fingerprint()

		if inc, err = buffer.Write(w, fingerprint[:]); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, ct.level); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, ct.Degree()); err != nil {
			return n + inc, err
		}

		n += inc

		if ct.compressed() {

			if inc, err = buffer.WriteUint8(w, 1); err != nil {
				return n + inc, err
			}

			n += inc

			if inc, err = buffer.Write(w, ct.seed[:]); err != nil {
				return n + inc, err
			}

			n += inc

		} else {

			if inc, err = buffer.WriteUint8(w, 0); err != nil {
				return n + inc, err
			}

			n += inc
		}

		if inc, err = ct.serializedPolys().WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return ct.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// The receiver must carry the parameters the ciphertext is expected to be
// defined over (see [NewCiphertextFromBinary]). The fingerprint, level and
// degree are checked before any polynomial is decoded.
//
// Unless r implements the buffer.Reader interface (see utils/buffer/reader.go),
// it will be wrapped into a bufio.Reader.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {

	if ct.params.isZero() {
		return 0, fmt.Errorf("cannot ReadFrom: receiver must carry parameters")
	}

	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var fingerprint [32]byte
		if inc, err = buffer.Read(r, fingerprint[:]); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidCiphertext, err)
		}

		n += inc

		if fingerprint != ct.params.Fingerprint() {
			return n, fmt.Errorf("cannot ReadFrom: %w", ErrIncompatibleParameters)
		}

		var level, degree int

		if inc, err = buffer.ReadAsUint64(r, &level); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidCiphertext, err)
		}

		n += inc

		var ctx *ring.Context
		if ctx, err = ct.params.ContextAtLevel(level); err != nil {
			return n, fmt.Errorf("cannot ReadFrom: %w", err)
		}

		if inc, err = buffer.ReadAsUint64(r, &degree); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidCiphertext, err)
		}

		n += inc

		if degree < 1 || degree > maxCiphertextDegree {
			return n, fmt.Errorf("cannot ReadFrom: %w: degree=%d must be in [1, %d]", ErrInvalidCiphertext, degree, maxCiphertextDegree)
		}

		var flag uint8
		if inc, err = buffer.ReadUint8(r, &flag); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidCiphertext, err)
		}

		n += inc

		var seed *sampling.Seed

		switch flag {
		case 0:
		case 1:

			if degree != 1 {
				return n, fmt.Errorf("cannot ReadFrom: %w: only ciphertexts of degree 1 can be compressed", ErrInvalidCiphertext)
			}

			seed = new(sampling.Seed)
			if inc, err = buffer.Read(r, seed[:]); err != nil {
				return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidSeed, err)
			}

			n += inc

		default:
			return n, fmt.Errorf("cannot ReadFrom: %w: invalid seed flag %d", ErrInvalidCiphertext, flag)
		}

		polys := newPublicPolys(ctx, ring.Ntt, degree+1)

		serialized := polys
		if seed != nil {
			serialized = polys[:1]
		}

		if inc, err = serialized.ReadFrom(r); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w: %w", ErrInvalidCiphertext, err)
		}

		n += inc

		for _, p := range serialized {
			if p.Representation() != ring.Ntt {
				return n, fmt.Errorf("cannot ReadFrom: %w: polynomials must be in %s", ErrInvalidCiphertext, ring.Ntt)
			}
			// ReadFrom resets the flag, the ciphertext is public.
			p.AllowVariableTimeComputations()
		}

		if seed != nil {
			polys[1] = ring.NewRandomPolyFromSeed(ctx, ring.Ntt, *seed)
			polys[1].AllowVariableTimeComputations()
		}

		ct.level = level
		ct.seed = seed
		ct.Value = polys

		return n, nil

	default:
		return ct.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (ct *Ciphertext) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(ct.BinarySize())
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (ct *Ciphertext) UnmarshalBinary(p []byte) (err error) {
	_, err = ct.ReadFrom(buffer.NewBuffer(p))
	return
}

// NewCiphertextFromBinary decodes a ciphertext defined over the given parameters.
func NewCiphertextFromBinary(params Parameters, data []byte) (*Ciphertext, error) {
	ct := &Ciphertext{params: params}
	if err := ct.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return ct, nil
}
