package packets

import "fmt"

// PublishPacket carries application data addressed by a 16-bit topic id.
type PublishPacket struct {
	Dup         bool
	QoS         int8
	Retain      bool
	TopicIDType TopicIDType
	TopicID     uint16
	MsgID       uint16
	Data        []byte
}

func (p *PublishPacket) Type() uint8 { return PUBLISH }

func (p *PublishPacket) AppendEncoded(dst []byte) ([]byte, error) {
	flags := Flags{Dup: p.Dup, QoS: p.QoS, Retain: p.Retain, TopicIDType: p.TopicIDType}
	body := make([]byte, 0, 5+len(p.Data))
	body = append(body, flags.Encode())
	body = appendUint16(body, p.TopicID)
	body = appendUint16(body, p.MsgID)
	body = append(body, p.Data...)
	return appendFramed(dst, PUBLISH, body)
}

func DecodePublish(body []byte) (*PublishPacket, error) {
	if len(body) < 5 {
		return nil, fmt.Errorf("packets: PUBLISH too short")
	}
	flags := DecodeFlags(body[0])
	topicID, _ := decodeUint16(body[1:3])
	msgID, _ := decodeUint16(body[3:5])
	data := make([]byte, len(body)-5)
	copy(data, body[5:])
	return &PublishPacket{
		Dup:         flags.Dup,
		QoS:         flags.QoS,
		Retain:      flags.Retain,
		TopicIDType: flags.TopicIDType,
		TopicID:     topicID,
		MsgID:       msgID,
		Data:        data,
	}, nil
}

// PubackPacket acknowledges a QoS 1 PUBLISH.
type PubackPacket struct {
	TopicID    uint16
	MsgID      uint16
	ReturnCode uint8
}

func (p *PubackPacket) Type() uint8 { return PUBACK }

func (p *PubackPacket) AppendEncoded(dst []byte) ([]byte, error) {
	body := make([]byte, 0, 5)
	body = appendUint16(body, p.TopicID)
	body = appendUint16(body, p.MsgID)
	body = append(body, p.ReturnCode)
	return appendFramed(dst, PUBACK, body)
}

func DecodePuback(body []byte) (*PubackPacket, error) {
	if len(body) < 5 {
		return nil, fmt.Errorf("packets: PUBACK too short")
	}
	topicID, _ := decodeUint16(body[0:2])
	msgID, _ := decodeUint16(body[2:4])
	return &PubackPacket{TopicID: topicID, MsgID: msgID, ReturnCode: body[4]}, nil
}
