package ring

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/tuneinsight/bfvcore/utils/buffer"
)

// ErrInvalidPolyEncoding is returned when a serialized polynomial does not
// match the context it is decoded in.
var ErrInvalidPolyEncoding = errors.New("invalid polynomial encoding")

// BinarySize returns the serialized size of the object in bytes.
// The Shoup companion is not serialized.
func (pol *Poly) BinarySize() int {
	return 1 + 8 + 8 + 8*len(pol.buff)
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/writer.go),
// it will be wrapped into a bufio.Writer. Since this requires allocations, it
// is preferable to pass a buffer.Writer directly:
//
//   - When writing multiple times to a io.Writer, it is preferable to first wrap the
//     io.Writer in a pre-allocated bufio.Writer.
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w (see utils/buffer/buffer.go).
func (pol *Poly) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint8(w, uint8(pol.repr)); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, pol.N()); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, pol.ModuliCount()); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64Slice(w, pol.buff); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return pol.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface.
//
// The receiver must have been created with NewPoly, as the decoding
// is done within its context: the degree, the number of limbs and the
// range of every coefficient are checked against it. On success, the
// polynomial is in the decoded representation and does not allow
// variable-time computations.
//
// Unless r implements the buffer.Reader interface (see utils/buffer/reader.go),
// it will be wrapped into a bufio.Reader. Since this requires allocation, it
// is preferable to pass a buffer.Reader directly.
func (pol *Poly) ReadFrom(r io.Reader) (n int64, err error) {

	if pol == nil || pol.ctx == nil {
		return 0, fmt.Errorf("cannot ReadFrom: receiver must be bound to a context")
	}

	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var repr uint8
		if inc, err = buffer.ReadUint8(r, &repr); err != nil {
			return n + inc, err
		}

		n += inc

		if !Representation(repr).IsValid() {
			return n, fmt.Errorf("cannot ReadFrom: %w: invalid representation %d", ErrInvalidPolyEncoding, repr)
		}

		var N, count int

		if inc, err = buffer.ReadAsUint64(r, &N); err != nil {
			return n + inc, err
		}

		n += inc

		if N != pol.ctx.N() {
			return n, fmt.Errorf("cannot ReadFrom: %w: degree %d does not match the context degree %d", ErrInvalidPolyEncoding, N, pol.ctx.N())
		}

		if inc, err = buffer.ReadAsUint64(r, &count); err != nil {
			return n + inc, err
		}

		n += inc

		if count != pol.ctx.ModuliCount() {
			return n, fmt.Errorf("cannot ReadFrom: %w: %d limbs but the context has %d moduli", ErrInvalidPolyEncoding, count, pol.ctx.ModuliCount())
		}

		if inc, err = buffer.ReadUint64Slice(r, pol.buff); err != nil {
			return n + inc, err
		}

		n += inc

		for i, qi := range pol.ctx.Moduli() {
			for j, c := range pol.coeffs[i] {
				if c >= qi {
					pol.Zeroize()
					return n, fmt.Errorf("cannot ReadFrom: %w: coefficient [%d][%d] is not reduced modulo %d", ErrInvalidPolyEncoding, i, j, qi)
				}
			}
		}

		pol.variableTime = false
		pol.repr = Representation(repr)

		if pol.repr == NttShoup {
			pol.computeShoup()
		} else {
			pol.dropShoup()
		}

		return n, nil

	default:
		return pol.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (pol *Poly) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(pol.BinarySize())
	_, err = pol.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
// The receiver must have been created with NewPoly.
func (pol *Poly) UnmarshalBinary(p []byte) (err error) {
	_, err = pol.ReadFrom(buffer.NewBuffer(p))
	return
}
