package mchandshake

import (
	"bufio"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/gstoney/mchandshake/packet"
)

var (
	ErrFrameTooBig        = errors.New("frame too big")
	ErrInvalidFrameLength = errors.New("invalid frame length")
)

// frameNamespace seeds the name-based UUIDs identifying frames.
var frameNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gstoney/mchandshake/frame"))

type ScannerConfig struct {
	MaxPacketLen int32
}

func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		MaxPacketLen: 32768,
	}
}

// Frame is one length-prefixed packet read from a capture stream.
//
// Raw holds the length prefix followed by the body, exactly as read, so it
// can be handed to packet.ParseHandshakeBytes. ID is derived from Raw and is
// the same for identical frames.
type Frame struct {
	ID     uuid.UUID
	Offset int64
	Length int32
	Raw    []byte
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// FrameScanner splits a capture stream into frames.
type FrameScanner struct {
	src byteReader
	off int64
	cfg ScannerConfig

	prefix [5]byte
}

// NewFrameScanner creates a FrameScanner.
// r is wrapped with bufio unless it implements io.ByteReader.
func NewFrameScanner(r io.Reader, cfg ScannerConfig) *FrameScanner {
	var br byteReader
	if b, ok := r.(byteReader); ok {
		br = b
	} else {
		br = bufio.NewReader(r)
	}

	return &FrameScanner{src: br, cfg: cfg}
}

// recordingReader keeps the bytes of a length prefix while it is decoded.
type recordingReader struct {
	src io.ByteReader
	buf []byte
	err error
}

func (r *recordingReader) ReadByte() (byte, error) {
	b, err := r.src.ReadByte()
	if err != nil {
		r.err = err
		return 0, err
	}
	r.buf = append(r.buf, b)
	return b, nil
}

// Next reads the next frame. It returns io.EOF when the stream ends on a
// frame boundary and io.ErrUnexpectedEOF when it ends inside a frame.
//
// A frame longer than MaxPacketLen is skipped and returned without Raw,
// together with ErrFrameTooBig; scanning may continue after it. Any other
// error leaves the stream misaligned.
func (s *FrameScanner) Next() (f Frame, err error) {
	f.Offset = s.off

	rec := recordingReader{src: s.src, buf: s.prefix[:0]}
	length, err := packet.ReadVarInt(&rec)
	s.off += int64(len(rec.buf))
	if err != nil {
		switch {
		case rec.err == io.EOF && len(rec.buf) == 0:
			err = io.EOF
		case rec.err == io.EOF:
			err = io.ErrUnexpectedEOF
		case rec.err != nil:
			err = rec.err
		}
		return
	}

	f.Length = length
	if length <= 0 {
		err = ErrInvalidFrameLength
		return
	}

	if length > s.cfg.MaxPacketLen {
		n, cerr := io.CopyN(io.Discard, s.src, int64(length))
		s.off += n
		if cerr != nil {
			if cerr == io.EOF {
				cerr = io.ErrUnexpectedEOF
			}
			err = cerr
			return
		}
		err = ErrFrameTooBig
		return
	}

	raw := make([]byte, len(rec.buf)+int(length))
	copy(raw, rec.buf)
	n, err := io.ReadFull(s.src, raw[len(rec.buf):])
	s.off += int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return
	}

	f.Raw = raw
	f.ID = uuid.NewSHA1(frameNamespace, raw)
	return
}

// Offset reports the number of bytes consumed from the stream.
func (s *FrameScanner) Offset() int64 {
	return s.off
}
