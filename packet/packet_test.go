package packet

import (
	"errors"
	"testing"
)

var goodHandshake = []byte{
	0x13, 0x00, 0xf2, 0x05, 0x0c,
	0x31, 0x32, 0x33, 0x2e, 0x34, 0x35, 0x2e, 0x36, 0x37, 0x2e, 0x38, 0x39,
	0x63, 0xdd, 0x02,
}

func withLength(n byte, body []byte) []byte {
	return append([]byte{n}, body...)
}

var handshakeTc = []TestCase[Handshake]{
	{
		desc: "Captured login handshake",
		v: Handshake{
			ProtocolVersion: 754,
			Address:         "123.45.67.89",
			Port:            25565,
			NextState:       2,
		},
		ser: goodHandshake,
	},
	{
		desc: "Status handshake with hostname",
		v: Handshake{
			ProtocolVersion: 773,
			Address:         "mc.example.org",
			Port:            25565,
			NextState:       1,
		},
		ser: encodeHandshake(HandshakePacketID, Handshake{
			ProtocolVersion: 773,
			Address:         "mc.example.org",
			Port:            25565,
			NextState:       1,
		}),
	},
	{
		desc: "Unknown next state is kept verbatim",
		v: Handshake{
			ProtocolVersion: -1,
			Address:         "",
			Port:            0,
			NextState:       99,
		},
		ser: encodeHandshake(HandshakePacketID, Handshake{
			ProtocolVersion: -1,
			NextState:       99,
		}),
	},
	{
		desc: "Extra bytes inside the frame are left unread",
		v: Handshake{
			ProtocolVersion: 48,
			Address:         "00000",
			Port:            0x3030,
			NextState:       48,
		},
		ser: []byte{
			0x13, 0x00, 0x30, 0x05, 0x30, 0x30, 0x30, 0x30, 0x30,
			0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30,
		},
		left: 8,
	},
	{
		desc:      "Empty buffer",
		expectErr: ErrInvalidVarInt,
		ser:       []byte{},
	},
	{
		desc:      "Declared length shorter than payload",
		expectErr: ErrLengthNotMatch,
		ser:       withLength(0x12, goodHandshake[1:]),
	},
	{
		desc:      "Declared length longer than payload",
		expectErr: ErrLengthNotMatch,
		ser:       withLength(0x14, goodHandshake[1:]),
	},
	{
		desc:      "Trailing byte after packet",
		expectErr: ErrLengthNotMatch,
		ser:       append(append([]byte{}, goodHandshake...), 0x00),
	},
	{
		desc:      "Truncated packet",
		expectErr: ErrLengthNotMatch,
		ser:       goodHandshake[:len(goodHandshake)-1],
	},
	{
		desc:      "Status request packet ID",
		expectErr: ErrNotHandshake,
		ser: encodeHandshake(0x01, Handshake{
			ProtocolVersion: 754,
			Address:         "localhost",
			Port:            25565,
			NextState:       1,
		}),
	},
	{
		desc:      "Zero length frame",
		expectErr: ErrInvalidVarInt,
		ser:       []byte{0x00},
	},
	{
		desc:      "Missing port",
		expectErr: ErrInvalidUShort,
		ser:       []byte{0x05, 0x00, 0x01, 0x01, 0x61, 0x63},
	},
	{
		desc:      "Address longer than packet",
		expectErr: ErrStringTooShort,
		ser:       []byte{0x04, 0x00, 0x01, 0x09, 0x61},
	},
	{
		desc:      "Address with negative length",
		expectErr: ErrNegativeLength,
		ser:       []byte{0x07, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff, 0x0f},
	},
	{
		desc:      "Address not UTF-8",
		expectErr: ErrInvalidStringEncoding,
		ser:       []byte{0x07, 0x00, 0x01, 0x01, 0xc3, 0x63, 0xdd, 0x01},
	},
	{
		desc:      "Missing next state",
		expectErr: ErrInvalidVarInt,
		ser:       []byte{0x06, 0x00, 0x01, 0x01, 0x61, 0x63, 0xdd},
	},
	{
		desc:      "Overlong protocol version",
		expectErr: ErrInvalidVarInt,
		ser:       []byte{0x07, 0x00, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01},
	},
}

func TestParseHandshake(t *testing.T) {
	for _, tC := range handshakeTc {
		t.Run(tC.desc, func(t *testing.T) {
			r := NewFrameReader(tC.ser)

			got, err := ParseHandshake(&r)

			if tC.expectErr != nil {
				if err == nil {
					t.Fatalf("ParseHandshake expected error %v, but succeeded and returned %+v", tC.expectErr, got)
				}
				if !errors.Is(err, tC.expectErr) {
					t.Errorf("ParseHandshake expected error %v, but got error %v", tC.expectErr, err)
				}
				if got != (Handshake{}) {
					t.Errorf("ParseHandshake returned partial handshake %+v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseHandshake failed: %v", err)
			}

			if got != tC.v {
				t.Errorf("ParseHandshake expected %+v, got %+v", tC.v, got)
			}

			if r.Remaining() != tC.left {
				t.Errorf("Reader expected %d bytes remaining, got %d.", tC.left, r.Remaining())
			}
		})
	}
}

func TestParseHandshakeBytes_Deterministic(t *testing.T) {
	inputs := [][]byte{goodHandshake, {}, withLength(0x12, goodHandshake[1:])}

	for _, in := range inputs {
		h1, err1 := ParseHandshakeBytes(in)
		h2, err2 := ParseHandshakeBytes(in)

		if h1 != h2 {
			t.Errorf("%x: got %+v then %+v", in, h1, h2)
		}
		if Classify(err1) != Classify(err2) {
			t.Errorf("%x: got error %v then %v", in, err1, err2)
		}
	}
}

func TestHandshake_Intent(t *testing.T) {
	testCases := []struct {
		state int32
		want  Intent
		name  string
	}{
		{1, IntentStatus, "status"},
		{2, IntentLogin, "login"},
		{3, IntentTransfer, "transfer"},
		{7, Intent(7), "unknown"},
	}

	for _, tC := range testCases {
		h := Handshake{NextState: tC.state}
		if h.Intent() != tC.want {
			t.Errorf("Intent(%d) expected %v, got %v", tC.state, tC.want, h.Intent())
		}
		if h.Intent().String() != tC.name {
			t.Errorf("Intent(%d).String() expected %q, got %q", tC.state, tC.name, h.Intent().String())
		}
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		err        error
		want       Kind
		incomplete bool
	}{
		{nil, KindNone, false},
		{ErrInvalidVarInt, KindInvalidVarInt, true},
		{ErrInvalidUShort, KindInvalidUShort, true},
		{ErrStringTooShort, KindStringTooShort, true},
		{ErrNegativeLength, KindNegativeLength, false},
		{&StringEncodingError{ValidUpTo: 1, Length: 2}, KindInvalidStringEncoding, false},
		{ErrLengthNotMatch, KindLengthNotMatch, false},
		{ErrNotHandshake, KindNotHandshake, false},
		{errors.New("boom"), KindUnknown, false},
	}

	for _, tC := range testCases {
		got := Classify(tC.err)
		if got != tC.want {
			t.Errorf("Classify(%v) expected %v, got %v", tC.err, tC.want, got)
		}
		if got.Incomplete() != tC.incomplete {
			t.Errorf("%v.Incomplete() expected %t", got, tC.incomplete)
		}
	}
}
