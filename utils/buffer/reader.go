package buffer

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadAsUint64 reads an uint64 from r and stores it on c as a T.
func ReadAsUint64[T ~int | ~int64 | ~uint64 | ~uint8 | ~uint32](r Reader, c *T) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadAsUint64: c is nil")
	}

	var v uint64
	if n, err = ReadUint64(r, &v); err != nil {
		return
	}

	*c = T(v)

	return
}

// Read reads exactly len(c) bytes from r on c.
func Read(r Reader, c []byte) (n int64, err error) {
	nint, err := io.ReadFull(r, c)
	return int64(nint), err
}

// ReadUint8 reads a byte from r and stores it on c.
func ReadUint8(r Reader, c *uint8) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint8: c is nil")
	}

	var bb = [1]byte{}

	if n, err = Read(r, bb[:]); err != nil {
		return
	}

	*c = bb[0]

	return n, nil
}

// ReadUint64 reads an uint64 from r and stores it on c.
func ReadUint64(r Reader, c *uint64) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint64: c is nil")
	}

	var bb = [8]byte{}

	if n, err = Read(r, bb[:]); err != nil {
		return
	}

	*c = binary.LittleEndian.Uint64(bb[:])

	return n, nil
}

// ReadUint64Slice reads len(c) uint64 from r and stores them on c.
func ReadUint64Slice(r Reader, c []uint64) (n int64, err error) {

	for len(c) > 0 {

		// Avoid EOF
		size := r.Size()
		if len(c)<<3 < size {
			size = len(c) << 3
		}

		buffered := size >> 3

		if buffered == 0 {
			// Less than 8 bytes are buffered, falls back on a plain read.
			var inc int64
			if inc, err = ReadUint64(r, &c[0]); err != nil {
				return n + inc, err
			}
			n += inc
			c = c[1:]
			continue
		}

		var slice []byte
		if slice, err = r.Peek(buffered << 3); err != nil {
			return
		}

		for i, j := 0, 0; i < buffered; i, j = i+1, j+8 {
			c[i] = binary.LittleEndian.Uint64(slice[j:])
		}

		var inc int
		if inc, err = r.Discard(buffered << 3); err != nil {
			return n + int64(inc), err
		}

		n += int64(inc)
		c = c[buffered:]
	}

	return
}
