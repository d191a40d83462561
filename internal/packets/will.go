package packets

import "fmt"

// WilltopicreqPacket (gateway -> client) has no body.
type WilltopicreqPacket struct{}

func (p *WilltopicreqPacket) Type() uint8 { return WILLTOPICREQ }

func (p *WilltopicreqPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, WILLTOPICREQ, nil)
}

func DecodeWilltopicreq(body []byte) (*WilltopicreqPacket, error) {
	return &WilltopicreqPacket{}, nil
}

// WilltopicPacket carries the LWT topic, QoS and retain flag.
type WilltopicPacket struct {
	QoS    int8
	Retain bool
	Topic  string
}

func (p *WilltopicPacket) Type() uint8 { return WILLTOPIC }

func (p *WilltopicPacket) AppendEncoded(dst []byte) ([]byte, error) {
	flags := Flags{QoS: p.QoS, Retain: p.Retain, TopicIDType: TopicNormal}
	body := make([]byte, 0, 1+len(p.Topic))
	body = append(body, flags.Encode())
	body = appendRestString(body, p.Topic)
	return appendFramed(dst, WILLTOPIC, body)
}

func DecodeWilltopic(body []byte) (*WilltopicPacket, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("packets: WILLTOPIC too short")
	}
	flags := DecodeFlags(body[0])
	return &WilltopicPacket{QoS: flags.QoS, Retain: flags.Retain, Topic: string(body[1:])}, nil
}

// WillmsgreqPacket (gateway -> client) has no body.
type WillmsgreqPacket struct{}

func (p *WillmsgreqPacket) Type() uint8 { return WILLMSGREQ }

func (p *WillmsgreqPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, WILLMSGREQ, nil)
}

func DecodeWillmsgreq(body []byte) (*WillmsgreqPacket, error) {
	return &WillmsgreqPacket{}, nil
}

// WillmsgPacket carries the raw LWT payload.
type WillmsgPacket struct {
	Message []byte
}

func (p *WillmsgPacket) Type() uint8 { return WILLMSG }

func (p *WillmsgPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, WILLMSG, p.Message)
}

func DecodeWillmsg(body []byte) (*WillmsgPacket, error) {
	msg := make([]byte, len(body))
	copy(msg, body)
	return &WillmsgPacket{Message: msg}, nil
}

// WilltopicupdPacket updates the LWT topic on an active session.
type WilltopicupdPacket struct {
	QoS    int8
	Retain bool
	Topic  string
}

func (p *WilltopicupdPacket) Type() uint8 { return WILLTOPICUPD }

func (p *WilltopicupdPacket) AppendEncoded(dst []byte) ([]byte, error) {
	flags := Flags{QoS: p.QoS, Retain: p.Retain, TopicIDType: TopicNormal}
	body := make([]byte, 0, 1+len(p.Topic))
	body = append(body, flags.Encode())
	body = appendRestString(body, p.Topic)
	return appendFramed(dst, WILLTOPICUPD, body)
}

func DecodeWilltopicupd(body []byte) (*WilltopicupdPacket, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("packets: WILLTOPICUPD too short")
	}
	flags := DecodeFlags(body[0])
	return &WilltopicupdPacket{QoS: flags.QoS, Retain: flags.Retain, Topic: string(body[1:])}, nil
}

// WilltopicrespPacket acknowledges a WILLTOPICUPD.
type WilltopicrespPacket struct {
	ReturnCode uint8
}

func (p *WilltopicrespPacket) Type() uint8 { return WILLTOPICRESP }

func (p *WilltopicrespPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, WILLTOPICRESP, []byte{p.ReturnCode})
}

func DecodeWilltopicresp(body []byte) (*WilltopicrespPacket, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("packets: WILLTOPICRESP too short")
	}
	return &WilltopicrespPacket{ReturnCode: body[0]}, nil
}

// WillmsgupdPacket updates the LWT payload on an active session.
type WillmsgupdPacket struct {
	Message []byte
}

func (p *WillmsgupdPacket) Type() uint8 { return WILLMSGUPD }

func (p *WillmsgupdPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, WILLMSGUPD, p.Message)
}

func DecodeWillmsgupd(body []byte) (*WillmsgupdPacket, error) {
	msg := make([]byte, len(body))
	copy(msg, body)
	return &WillmsgupdPacket{Message: msg}, nil
}

// WillmsgrespPacket acknowledges a WILLMSGUPD.
type WillmsgrespPacket struct {
	ReturnCode uint8
}

func (p *WillmsgrespPacket) Type() uint8 { return WILLMSGRESP }

func (p *WillmsgrespPacket) AppendEncoded(dst []byte) ([]byte, error) {
	return appendFramed(dst, WILLMSGRESP, []byte{p.ReturnCode})
}

func DecodeWillmsgresp(body []byte) (*WillmsgrespPacket, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("packets: WILLMSGRESP too short")
	}
	return &WillmsgrespPacket{ReturnCode: body[0]}, nil
}
