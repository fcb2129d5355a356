package buffer

import (
	"encoding/binary"
	"fmt"
)

// WriteAsUint64 converts c to an uint64 and writes it to w.
func WriteAsUint64[T ~int | ~int64 | ~uint64 | ~uint8 | ~uint32](w Writer, c T) (n int64, err error) {
	return WriteUint64(w, uint64(c))
}

// Write writes a slice of bytes to w.
func Write(w Writer, c []byte) (n int64, err error) {
	return WriteUint8Slice(w, c)
}

// WriteUint8 writes a byte c to w.
func WriteUint8(w Writer, c uint8) (n int64, err error) {

	if w.Available() == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available() == 0 {
			return 0, fmt.Errorf("cannot WriteUint8: available buffer is zero even after flush")
		}
	}

	buf := append(w.AvailableBuffer(), c)

	nint, err := w.Write(buf)

	return int64(nint), err
}

// WriteUint8Slice writes a slice of bytes c to w.
func WriteUint8Slice(w Writer, c []uint8) (n int64, err error) {

	for len(c) > 0 {

		available := w.Available()

		if available == 0 {

			if err = w.Flush(); err != nil {
				return
			}

			if available = w.Available(); available == 0 {
				return n, fmt.Errorf("cannot WriteUint8Slice: available buffer is zero even after flush")
			}
		}

		chunk := len(c)
		if chunk > available {
			chunk = available
		}

		var inc int
		if inc, err = w.Write(append(w.AvailableBuffer(), c[:chunk]...)); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)
		c = c[chunk:]
	}

	return
}

// WriteUint64 writes a uint64 c into w.
func WriteUint64(w Writer, c uint64) (n int64, err error) {

	if w.Available()>>3 == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available()>>3 == 0 {
			return 0, fmt.Errorf("cannot WriteUint64: available buffer/8 is zero even after flush")
		}
	}

	buf := binary.LittleEndian.AppendUint64(w.AvailableBuffer(), c)

	nint, err := w.Write(buf)

	return int64(nint), err
}

// WriteUint64Slice writes a slice of uint64 into w.
func WriteUint64Slice(w Writer, c []uint64) (n int64, err error) {

	for len(c) > 0 {

		// Remaining available space in the internal buffer
		available := w.Available() >> 3

		if available == 0 {
			if err = w.Flush(); err != nil {
				return
			}

			if available = w.Available() >> 3; available == 0 {
				return n, fmt.Errorf("cannot WriteUint64Slice: available buffer/8 is zero even after flush")
			}
		}

		chunk := len(c)
		if chunk > available {
			chunk = available
		}

		buf := w.AvailableBuffer()
		for _, ci := range c[:chunk] {
			buf = binary.LittleEndian.AppendUint64(buf, ci)
		}

		var inc int
		if inc, err = w.Write(buf); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)
		c = c[chunk:]
	}

	return
}
