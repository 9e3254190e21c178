package packet

import "io"

// Reader is the byte cursor the field decoders consume from.
//
// Read returns a copy of the next n bytes, so decoded values never alias
// the caller's buffer. Implementations must not consume anything when
// fewer than n bytes remain.
type Reader interface {
	io.ByteReader
	Read(n int) ([]byte, error)
	Remaining() int
}

// FrameReader is a Reader over an in-memory byte slice.
type FrameReader struct {
	buf []byte
	off int
}

func NewFrameReader(buf []byte) FrameReader {
	return FrameReader{
		buf: buf,
		off: 0,
	}
}

func (r FrameReader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *FrameReader) ReadByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *FrameReader) Read(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	copy(b, r.buf[r.off:r.off+n])
	r.off += n
	return b, nil
}
