// Package buffer implements little-endian writers and readers of integers and
// integer slices over io.Writer and io.Reader implementations that expose
// their internal buffers, such as bufio.Writer, bufio.Reader and [Buffer].
package buffer

import (
	"errors"
	"io"
)

// ErrBufferFull is returned when a write does not fit in a [Buffer].
var ErrBufferFull = errors.New("buffer full")

// Writer is a buffered io.Writer exposing its free space.
// It is implemented by *bufio.Writer and *[Buffer].
type Writer interface {
	io.Writer
	Flush() (err error)
	AvailableBuffer() []byte
	Available() int
}

// Reader is a buffered io.Reader exposing its pending bytes.
// It is implemented by *bufio.Reader and *[Buffer].
type Reader interface {
	io.Reader
	Size() int
	Peek(n int) ([]byte, error)
	Discard(n int) (discarded int, err error)
}

var (
	_ Writer = (*Buffer)(nil)
	_ Reader = (*Buffer)(nil)
)

// Buffer is a fixed-size byte slice with independent write and read offsets.
// It is used to serialize objects whose size is known in advance and to
// deserialize byte slices without copying them.
type Buffer struct {
	data []byte
	w, r int
}

// NewBuffer returns a [Buffer] over data. Both offsets start at zero, so
// data can be read back or overwritten.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// NewBufferSize returns a [Buffer] over a new zero slice of the given size.
func NewBufferSize(size int) *Buffer {
	return NewBuffer(make([]byte, size))
}

// Bytes returns the whole backing slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reset moves both offsets back to the start of the backing slice.
func (b *Buffer) Reset() {
	b.w, b.r = 0, 0
}

// Write copies p at the write offset, or fails with [ErrBufferFull] if it
// does not fit.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p) > b.Available() {
		return 0, ErrBufferFull
	}
	// p may alias b.data[b.w:] when obtained from AvailableBuffer
	n = copy(b.data[b.w:], p)
	b.w += n
	return
}

// Flush is a no-op: a [Buffer] never drains.
func (b *Buffer) Flush() error {
	return nil
}

// AvailableBuffer returns a zero-length slice over the free space.
func (b *Buffer) AvailableBuffer() []byte {
	return b.data[b.w:b.w]
}

// Available returns the number of bytes that can still be written.
func (b *Buffer) Available() int {
	return len(b.data) - b.w
}

// Read copies the bytes at the read offset into p and fails with io.EOF
// if fewer than len(p) remain.
func (b *Buffer) Read(p []byte) (n int, err error) {
	n = copy(p, b.data[b.r:])
	b.r += n
	if n < len(p) {
		err = io.EOF
	}
	return
}

// Size returns the number of bytes left to read.
func (b *Buffer) Size() int {
	return len(b.data) - b.r
}

// Peek returns up to n bytes at the read offset without consuming them.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if n > b.Size() {
		return b.data[b.r:], io.EOF
	}
	return b.data[b.r : b.r+n], nil
}

// Discard consumes up to n bytes.
func (b *Buffer) Discard(n int) (int, error) {
	if n > b.Size() {
		n = b.Size()
		b.r += n
		return n, io.EOF
	}
	b.r += n
	return n, nil
}
