package packet

import (
	"errors"
	"fmt"
)

// Truncation and overlength of a VarInt share ErrInvalidVarInt.
var (
	ErrInvalidVarInt         = errors.New("invalid VarInt")
	ErrInvalidUShort         = errors.New("not enough bytes for Unsigned Short")
	ErrStringTooShort        = errors.New("string shorter than its declared length")
	ErrNegativeLength        = errors.New("negative length")
	ErrInvalidStringEncoding = errors.New("string is not valid UTF-8")
	ErrLengthNotMatch        = errors.New("packet length does not match its payload")
	ErrNotHandshake          = errors.New("not a handshake packet")
)

// StringEncodingError reports a String field whose bytes are not valid UTF-8.
type StringEncodingError struct {
	// ValidUpTo is the offset of the first invalid byte.
	ValidUpTo int
	Length    int
}

func (e *StringEncodingError) Error() string {
	return fmt.Sprintf("%v: invalid byte at offset %d of %d", ErrInvalidStringEncoding, e.ValidUpTo, e.Length)
}

func (e *StringEncodingError) Unwrap() error {
	return ErrInvalidStringEncoding
}

// Kind labels a decode failure.
type Kind uint8

const (
	KindNone Kind = iota
	KindInvalidVarInt
	KindInvalidUShort
	KindStringTooShort
	KindNegativeLength
	KindInvalidStringEncoding
	KindLengthNotMatch
	KindNotHandshake
	KindUnknown
)

var kindNames = [...]string{
	KindNone:                  "ok",
	KindInvalidVarInt:         "invalid_varint",
	KindInvalidUShort:         "invalid_ushort",
	KindStringTooShort:        "string_too_short",
	KindNegativeLength:        "negative_length",
	KindInvalidStringEncoding: "invalid_string_encoding",
	KindLengthNotMatch:        "length_not_match",
	KindNotHandshake:          "not_handshake",
	KindUnknown:               "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Incomplete reports whether the failure can be caused by a buffer that
// ends too early. A truncated and an overlong VarInt are indistinguishable,
// so KindInvalidVarInt counts as incomplete.
func (k Kind) Incomplete() bool {
	switch k {
	case KindInvalidVarInt, KindInvalidUShort, KindStringTooShort:
		return true
	}
	return false
}

var kindErrors = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidVarInt, KindInvalidVarInt},
	{ErrInvalidUShort, KindInvalidUShort},
	{ErrStringTooShort, KindStringTooShort},
	{ErrNegativeLength, KindNegativeLength},
	{ErrInvalidStringEncoding, KindInvalidStringEncoding},
	{ErrLengthNotMatch, KindLengthNotMatch},
	{ErrNotHandshake, KindNotHandshake},
}

// Classify maps err to its Kind. A nil error is KindNone.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, ke := range kindErrors {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}
	return KindUnknown
}
