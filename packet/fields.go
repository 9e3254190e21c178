package packet

import (
	"encoding/binary"
	"io"
	"unicode/utf8"
)

const varIntMaxBytes = 5

// ReadVarInt decodes a VarInt of at most 5 bytes.
//
// Running out of bytes and a continuation bit on the fifth byte both
// return ErrInvalidVarInt. Non-minimal encodings are accepted.
func ReadVarInt(r io.ByteReader) (int32, error) {
	var v int32
	var shift uint

	for n := 0; n < varIntMaxBytes; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, ErrInvalidVarInt
		}

		segment := b & 0x7F
		v |= int32(segment) << shift

		shift += 7

		if (b & 0x80) == 0 {
			return v, nil
		}
	}
	return 0, ErrInvalidVarInt
}

func ReadUnsignedShort(r Reader) (v uint16, err error) {
	if r.Remaining() < 2 {
		err = ErrInvalidUShort
		return
	}

	b, err := r.Read(2)
	if err != nil {
		err = ErrInvalidUShort
		return
	}

	v = binary.BigEndian.Uint16(b)
	return
}

// ReadString decodes a VarInt length prefix followed by that many bytes of
// UTF-8. Errors from the prefix are returned unchanged.
func ReadString(r Reader) (v string, err error) {
	length, err := ReadVarInt(r)
	if err != nil {
		return
	}

	if length < 0 {
		err = ErrNegativeLength
		return
	}

	if int64(length) > int64(r.Remaining()) {
		err = ErrStringTooShort
		return
	}

	buf, err := r.Read(int(length))
	if err != nil {
		err = ErrStringTooShort
		return
	}

	if !utf8.Valid(buf) {
		err = &StringEncodingError{ValidUpTo: validUpTo(buf), Length: len(buf)}
		return
	}

	v = string(buf)
	return
}

func validUpTo(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}
