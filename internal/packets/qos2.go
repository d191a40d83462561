package packets

import "fmt"

// PubrecPacket, PubrelPacket and PubcompPacket implement the three-step QoS 2
// acknowledgement. The client core never initiates this exchange (package
// mqttsn publishes at QoS 0, 1 and -1 only), but the codec round-trips it for
// completeness and for gateways that probe client capabilities.

type PubrecPacket struct{ MsgID uint16 }

func (p *PubrecPacket) Type() uint8 { return PUBREC }

func (p *PubrecPacket) AppendEncoded(dst []byte) ([]byte, error) {
	body := appendUint16(make([]byte, 0, 2), p.MsgID)
	return appendFramed(dst, PUBREC, body)
}

func DecodePubrec(body []byte) (*PubrecPacket, error) {
	msgID, err := decodeUint16(body)
	if err != nil {
		return nil, fmt.Errorf("packets: PUBREC too short")
	}
	return &PubrecPacket{MsgID: msgID}, nil
}

type PubrelPacket struct{ MsgID uint16 }

func (p *PubrelPacket) Type() uint8 { return PUBREL }

func (p *PubrelPacket) AppendEncoded(dst []byte) ([]byte, error) {
	body := appendUint16(make([]byte, 0, 2), p.MsgID)
	return appendFramed(dst, PUBREL, body)
}

func DecodePubrel(body []byte) (*PubrelPacket, error) {
	msgID, err := decodeUint16(body)
	if err != nil {
		return nil, fmt.Errorf("packets: PUBREL too short")
	}
	return &PubrelPacket{MsgID: msgID}, nil
}

type PubcompPacket struct{ MsgID uint16 }

func (p *PubcompPacket) Type() uint8 { return PUBCOMP }

func (p *PubcompPacket) AppendEncoded(dst []byte) ([]byte, error) {
	body := appendUint16(make([]byte, 0, 2), p.MsgID)
	return appendFramed(dst, PUBCOMP, body)
}

func DecodePubcomp(body []byte) (*PubcompPacket, error) {
	msgID, err := decodeUint16(body)
	if err != nil {
		return nil, fmt.Errorf("packets: PUBCOMP too short")
	}
	return &PubcompPacket{MsgID: msgID}, nil
}
