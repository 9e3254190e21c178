package packet

const HandshakePacketID = 0x00

// Intent is the connection state a client requests in its handshake.
type Intent int32

const (
	_ Intent = iota
	IntentStatus
	IntentLogin
	IntentTransfer
)

func (i Intent) String() string {
	switch i {
	case IntentStatus:
		return "status"
	case IntentLogin:
		return "login"
	case IntentTransfer:
		return "transfer"
	}
	return "unknown"
}

// Handshake is the first packet a client sends.
//
// NextState is stored as received; values other than the known intents
// are not rejected.
type Handshake struct {
	ProtocolVersion int32
	Address         string
	Port            uint16
	NextState       int32
}

func (h Handshake) Intent() Intent {
	return Intent(h.NextState)
}

// ParseHandshake decodes one length-prefixed handshake packet from r.
//
// The outer length must equal the bytes remaining after it, so r has to
// hold exactly one packet. Bytes of that packet following the next state
// field are left unread. On error the zero Handshake is returned and r is
// left at an unspecified position.
func ParseHandshake(r Reader) (Handshake, error) {
	length, err := ReadVarInt(r)
	if err != nil {
		return Handshake{}, err
	}
	if int64(r.Remaining()) != int64(length) {
		return Handshake{}, ErrLengthNotMatch
	}

	id, err := ReadVarInt(r)
	if err != nil {
		return Handshake{}, err
	}
	if id != HandshakePacketID {
		return Handshake{}, ErrNotHandshake
	}

	var h Handshake
	if h.ProtocolVersion, err = ReadVarInt(r); err != nil {
		return Handshake{}, err
	}
	if h.Address, err = ReadString(r); err != nil {
		return Handshake{}, err
	}
	if h.Port, err = ReadUnsignedShort(r); err != nil {
		return Handshake{}, err
	}
	if h.NextState, err = ReadVarInt(r); err != nil {
		return Handshake{}, err
	}

	return h, nil
}

func ParseHandshakeBytes(b []byte) (Handshake, error) {
	r := NewFrameReader(b)
	return ParseHandshake(&r)
}
