package packets

import "fmt"

// ConnectPacket is the CONNECT message: flags | protocol id | duration | clientId.
type ConnectPacket struct {
	Will         bool
	CleanSession bool
	Duration     uint16 // keep-alive, seconds
	ClientID     string
}

func (p *ConnectPacket) Type() uint8 { return CONNECT }

func (p *ConnectPacket) AppendEncoded(dst []byte) ([]byte, error) {
	flags := Flags{Will: p.Will, CleanSession: p.CleanSession, TopicIDType: TopicNormal}
	body := make([]byte, 0, 4+len(p.ClientID))
	body = append(body, flags.Encode(), ProtocolID)
	body = appendUint16(body, p.Duration)
	body = appendRestString(body, p.ClientID)
	return appendFramed(dst, CONNECT, body)
}

// DecodeConnect decodes a CONNECT body (type byte already stripped).
func DecodeConnect(body []byte) (*ConnectPacket, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("packets: CONNECT too short")
	}
	flags := DecodeFlags(body[0])
	if body[1] != ProtocolID {
		return nil, fmt.Errorf("packets: unsupported protocol id 0x%02X", body[1])
	}
	duration, err := decodeUint16(body[2:4])
	if err != nil {
		return nil, err
	}
	return &ConnectPacket{
		Will:         flags.Will,
		CleanSession: flags.CleanSession,
		Duration:     duration,
		ClientID:     string(body[4:]),
	}, nil
}

// ConnackPacket is the CONNACK message: a single return code.
type ConnackPacket struct {
	ReturnCode uint8
}

func (p *ConnackPacket) Type() uint8 { return CONNACK }

func (p *ConnackPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, CONNACK, []byte{p.ReturnCode})
}

// DecodeConnack decodes a CONNACK body.
func DecodeConnack(body []byte) (*ConnackPacket, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("packets: CONNACK too short")
	}
	return &ConnackPacket{ReturnCode: body[0]}, nil
}
