package structs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/bfvcore/utils/buffer"
)

type element struct {
	coeffs []uint64
}

func (e *element) CopyNew() *element {
	return &element{coeffs: append([]uint64{}, e.coeffs...)}
}

func (e *element) BinarySize() int {
	return 8 + 8*len(e.coeffs)
}

func (e *element) Equal(other *element) bool {
	if e == nil || other == nil {
		return e == other
	}
	if len(e.coeffs) != len(other.coeffs) {
		return false
	}
	for i := range e.coeffs {
		if e.coeffs[i] != other.coeffs[i] {
			return false
		}
	}
	return true
}

func (e *element) WriteTo(w io.Writer) (n int64, err error) {
	bw := w.(buffer.Writer)
	var inc int64
	if inc, err = buffer.WriteAsUint64(bw, len(e.coeffs)); err != nil {
		return inc, err
	}
	n += inc
	inc, err = buffer.WriteUint64Slice(bw, e.coeffs)
	return n + inc, err
}

func (e *element) ReadFrom(r io.Reader) (n int64, err error) {
	br := r.(buffer.Reader)
	var size int
	var inc int64
	if inc, err = buffer.ReadAsUint64(br, &size); err != nil {
		return inc, err
	}
	n += inc
	e.coeffs = make([]uint64, size)
	inc, err = buffer.ReadUint64Slice(br, e.coeffs)
	return n + inc, err
}

func newVector(size int) Vector[*element] {
	v := make(Vector[*element], size)
	for i := range v {
		v[i] = &element{coeffs: []uint64{uint64(i), uint64(i * i), 1 << 61}}
	}
	return v
}

func TestVector(t *testing.T) {

	t.Run("CopyNew", func(t *testing.T) {
		v := newVector(4)
		vcpy := v.CopyNew()
		require.True(t, v.Equal(vcpy))
		vcpy[0].coeffs[0] = 42
		require.False(t, v.Equal(vcpy))
	})

	t.Run("Serialization", func(t *testing.T) {
		v := newVector(5)

		data, err := v.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, v.BinarySize(), len(data))

		have := make(Vector[*element], 5)
		for i := range have {
			have[i] = new(element)
		}
		require.NoError(t, have.UnmarshalBinary(data))
		require.True(t, v.Equal(have))
	})

	t.Run("Serialization/CountMismatch", func(t *testing.T) {
		data, err := newVector(3).MarshalBinary()
		require.NoError(t, err)

		have := Vector[*element]{new(element), new(element)}
		require.Error(t, have.UnmarshalBinary(data))
	})
}
