package structs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"

	"github.com/tuneinsight/bfvcore/utils/buffer"
)

// Vector is a struct wrapping a slice of components of type T.
// T is expected to be a pointer type implementing CopyNewer, BinarySizer,
// io.WriterTo, io.ReaderFrom or Equatable depending on the method called.
type Vector[T any] []T

// CopyNew returns a deep copy of the object.
// This method requires that T implements CopyNewer.
func (v Vector[T]) CopyNew() (vcpy Vector[T]) {

	var t T
	if _, isCopiable := any(t).(CopyNewer[T]); !isCopiable {
		panic(fmt.Errorf("vector component of type %T does not comply to %T", t, new(CopyNewer[T])))
	}

	vcpy = Vector[T](make([]T, len(v)))
	for i := range v {
		vcpy[i] = any(v[i]).(CopyNewer[T]).CopyNew()
	}

	return
}

// BinarySize returns the serialized size of the object in bytes.
// This method requires that T implements BinarySizer.
func (v Vector[T]) BinarySize() (size int) {

	var t T
	if _, isSizable := any(t).(BinarySizer); !isSizable {
		panic(fmt.Errorf("vector component of type %T does not comply to %T", t, new(BinarySizer)))
	}

	size += 8
	for i := range v {
		size += any(v[i]).(BinarySizer).BinarySize()
	}

	return
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// This method requires that T implements io.WriterTo.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/writer.go),
// it will be wrapped into a bufio.Writer. Since this requires allocations, it
// is preferable to pass a buffer.Writer directly.
func (v Vector[T]) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64
		if inc, err = buffer.WriteAsUint64[int](w, len(v)); err != nil {
			return inc, fmt.Errorf("buffer.WriteAsUint64[int]: %w", err)
		}

		n += inc

		var t T
		if _, isWritable := any(t).(io.WriterTo); !isWritable {
			return n, fmt.Errorf("vector component of type %T does not comply to %T", t, new(io.WriterTo))
		}

		for i := range v {
			if inc, err = any(v[i]).(io.WriterTo).WriteTo(w); err != nil {
				return n + inc, fmt.Errorf("%T.WriteTo: %w", t, err)
			}
			n += inc
		}

		return n, w.Flush()

	default:
		return v.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// The components of v must be allocated beforehand, as ReadFrom decodes
// in place: the serialized component count must match len(v). This lets
// the caller bind each component to its context before decoding.
//
// This method requires that T implements io.ReaderFrom.
func (v Vector[T]) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var size int

		if inc, err = buffer.ReadAsUint64[int](r, &size); err != nil {
			return inc, fmt.Errorf("buffer.ReadAsUint64[int]: %w", err)
		}

		n += inc

		if size != len(v) {
			return n, fmt.Errorf("cannot ReadFrom: invalid number of components: expected %d but got %d", len(v), size)
		}

		var t T
		if _, isReadable := any(t).(io.ReaderFrom); !isReadable {
			return n, fmt.Errorf("vector component of type %T does not comply to %T", t, new(io.ReaderFrom))
		}

		for i := range v {
			if inc, err = any(v[i]).(io.ReaderFrom).ReadFrom(r); err != nil {
				return n + inc, fmt.Errorf("%T.ReadFrom: %w", t, err)
			}
			n += inc
		}

		return n, nil

	default:
		return v.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (v Vector[T]) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(v.BinarySize())
	_, err = v.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (v Vector[T]) UnmarshalBinary(p []byte) (err error) {
	_, err = v.ReadFrom(buffer.NewBuffer(p))
	return
}

// Equal performs a deep equal. Components are compared with their
// Equal method when T implements Equatable.
func (v Vector[T]) Equal(other Vector[T]) bool {
	return cmp.Equal([]T(v), []T(other))
}
