package packets

// PingreqPacket drives both gateway keep-alive and the "awake" ping used by
// sleeping clients. ClientID is optional; an empty ClientID encodes an
// empty body.
type PingreqPacket struct {
	ClientID string
}

func (p *PingreqPacket) Type() uint8 { return PINGREQ }

func (p *PingreqPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, PINGREQ, []byte(p.ClientID))
}

func DecodePingreq(body []byte) (*PingreqPacket, error) {
	return &PingreqPacket{ClientID: string(body)}, nil
}

// PingrespPacket has no body.
type PingrespPacket struct{}

func (p *PingrespPacket) Type() uint8 { return PINGRESP }

func (p *PingrespPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, PINGRESP, nil)
}

func DecodePingresp(body []byte) (*PingrespPacket, error) {
	return &PingrespPacket{}, nil
}
