package packets

import (
	"encoding/binary"
	"fmt"
)

// SubscribePacket requests delivery of a topic, filter or predefined id.
// For NORMAL topics TopicName holds the filter text; for SHORT/PREDEFINED
// topics TopicID holds the 16-bit id.
type SubscribePacket struct {
	Dup         bool
	QoS         int8
	TopicIDType TopicIDType
	MsgID       uint16
	TopicName   string // set when TopicIDType == TopicNormal
	TopicID     uint16 // set otherwise
}

func (p *SubscribePacket) Type() uint8 { return SUBSCRIBE }

func (p *SubscribePacket) AppendEncoded(dst []byte) ([]byte, error) {
	flags := Flags{Dup: p.Dup, QoS: p.QoS, TopicIDType: p.TopicIDType}
	body := make([]byte, 0, 3+len(p.TopicName))
	body = append(body, flags.Encode())
	body = appendUint16(body, p.MsgID)
	if p.TopicIDType == TopicNormal {
		body = appendRestString(body, p.TopicName)
	} else {
		body = appendUint16(body, p.TopicID)
	}
	return appendFramed(dst, SUBSCRIBE, body)
}

func DecodeSubscribe(body []byte) (*SubscribePacket, error) {
	if len(body) < 3 {
		return nil, fmt.Errorf("packets: SUBSCRIBE too short")
	}
	flags := DecodeFlags(body[0])
	msgID, _ := decodeUint16(body[1:3])
	p := &SubscribePacket{Dup: flags.Dup, QoS: flags.QoS, TopicIDType: flags.TopicIDType, MsgID: msgID}
	rest := body[3:]
	if flags.TopicIDType == TopicNormal {
		p.TopicName = string(rest)
	} else {
		if len(rest) < 2 {
			return nil, fmt.Errorf("packets: SUBSCRIBE missing topic id")
		}
		p.TopicID = binary.BigEndian.Uint16(rest)
	}
	return p, nil
}

// SubackPacket acknowledges a SUBSCRIBE.
type SubackPacket struct {
	QoS        int8
	TopicID    uint16
	MsgID      uint16
	ReturnCode uint8
}

func (p *SubackPacket) Type() uint8 { return SUBACK }

func (p *SubackPacket) AppendEncoded(dst []byte) ([]byte, error) {
	flags := Flags{QoS: p.QoS}
	body := make([]byte, 0, 6)
	body = append(body, flags.Encode())
	body = appendUint16(body, p.TopicID)
	body = appendUint16(body, p.MsgID)
	body = append(body, p.ReturnCode)
	return appendFramed(dst, SUBACK, body)
}

func DecodeSuback(body []byte) (*SubackPacket, error) {
	if len(body) < 6 {
		return nil, fmt.Errorf("packets: SUBACK too short")
	}
	flags := DecodeFlags(body[0])
	topicID, _ := decodeUint16(body[1:3])
	msgID, _ := decodeUint16(body[3:5])
	return &SubackPacket{QoS: flags.QoS, TopicID: topicID, MsgID: msgID, ReturnCode: body[5]}, nil
}

// UnsubscribePacket mirrors SubscribePacket.
type UnsubscribePacket struct {
	TopicIDType TopicIDType
	MsgID       uint16
	TopicName   string
	TopicID     uint16
}

func (p *UnsubscribePacket) Type() uint8 { return UNSUBSCRIBE }

func (p *UnsubscribePacket) AppendEncoded(dst []byte) ([]byte, error) {
	flags := Flags{TopicIDType: p.TopicIDType}
	body := make([]byte, 0, 3+len(p.TopicName))
	body = append(body, flags.Encode())
	body = appendUint16(body, p.MsgID)
	if p.TopicIDType == TopicNormal {
		body = appendRestString(body, p.TopicName)
	} else {
		body = appendUint16(body, p.TopicID)
	}
	return appendFramed(dst, UNSUBSCRIBE, body)
}

func DecodeUnsubscribe(body []byte) (*UnsubscribePacket, error) {
	if len(body) < 3 {
		return nil, fmt.Errorf("packets: UNSUBSCRIBE too short")
	}
	flags := DecodeFlags(body[0])
	msgID, _ := decodeUint16(body[1:3])
	p := &UnsubscribePacket{TopicIDType: flags.TopicIDType, MsgID: msgID}
	rest := body[3:]
	if flags.TopicIDType == TopicNormal {
		p.TopicName = string(rest)
	} else {
		if len(rest) < 2 {
			return nil, fmt.Errorf("packets: UNSUBSCRIBE missing topic id")
		}
		p.TopicID = binary.BigEndian.Uint16(rest)
	}
	return p, nil
}

// UnsubackPacket acknowledges an UNSUBSCRIBE.
type UnsubackPacket struct {
	MsgID uint16
}

func (p *UnsubackPacket) Type() uint8 { return UNSUBACK }

func (p *UnsubackPacket) AppendEncoded(dst []byte) ([]byte, error) {
	body := appendUint16(make([]byte, 0, 2), p.MsgID)
	return appendFramed(dst, UNSUBACK, body)
}

func DecodeUnsuback(body []byte) (*UnsubackPacket, error) {
	msgID, err := decodeUint16(body)
	if err != nil {
		return nil, fmt.Errorf("packets: UNSUBACK too short")
	}
	return &UnsubackPacket{MsgID: msgID}, nil
}
