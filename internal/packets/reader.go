package packets

import "fmt"

// decoders maps a message type to its body decoder. Each entry adapts a
// DecodeXxx(body) (*XxxPacket, error) function to the common signature.
var decoders = map[uint8]func([]byte) (Packet, error){
	ADVERTISE:     func(b []byte) (Packet, error) { return DecodeAdvertise(b) },
	SEARCHGW:      func(b []byte) (Packet, error) { return DecodeSearchgw(b) },
	GWINFO:        func(b []byte) (Packet, error) { return DecodeGwinfo(b) },
	CONNECT:       func(b []byte) (Packet, error) { return DecodeConnect(b) },
	CONNACK:       func(b []byte) (Packet, error) { return DecodeConnack(b) },
	WILLTOPICREQ:  func(b []byte) (Packet, error) { return DecodeWilltopicreq(b) },
	WILLTOPIC:     func(b []byte) (Packet, error) { return DecodeWilltopic(b) },
	WILLMSGREQ:    func(b []byte) (Packet, error) { return DecodeWillmsgreq(b) },
	WILLMSG:       func(b []byte) (Packet, error) { return DecodeWillmsg(b) },
	REGISTER:      func(b []byte) (Packet, error) { return DecodeRegister(b) },
	REGACK:        func(b []byte) (Packet, error) { return DecodeRegack(b) },
	PUBLISH:       func(b []byte) (Packet, error) { return DecodePublish(b) },
	PUBACK:        func(b []byte) (Packet, error) { return DecodePuback(b) },
	PUBREC:        func(b []byte) (Packet, error) { return DecodePubrec(b) },
	PUBREL:        func(b []byte) (Packet, error) { return DecodePubrel(b) },
	PUBCOMP:       func(b []byte) (Packet, error) { return DecodePubcomp(b) },
	SUBSCRIBE:     func(b []byte) (Packet, error) { return DecodeSubscribe(b) },
	SUBACK:        func(b []byte) (Packet, error) { return DecodeSuback(b) },
	UNSUBSCRIBE:   func(b []byte) (Packet, error) { return DecodeUnsubscribe(b) },
	UNSUBACK:      func(b []byte) (Packet, error) { return DecodeUnsuback(b) },
	PINGREQ:       func(b []byte) (Packet, error) { return DecodePingreq(b) },
	PINGRESP:      func(b []byte) (Packet, error) { return DecodePingresp(b) },
	DISCONNECT:    func(b []byte) (Packet, error) { return DecodeDisconnect(b) },
	WILLTOPICUPD:  func(b []byte) (Packet, error) { return DecodeWilltopicupd(b) },
	WILLTOPICRESP: func(b []byte) (Packet, error) { return DecodeWilltopicresp(b) },
	WILLMSGUPD:    func(b []byte) (Packet, error) { return DecodeWillmsgupd(b) },
	WILLMSGRESP:   func(b []byte) (Packet, error) { return DecodeWillmsgresp(b) },
}

// Decode parses exactly one datagram into its Packet. It fails on
// truncation, an unknown type, or an inconsistent declared length.
func Decode(datagram []byte) (Packet, error) {
	total, prefixLen, err := DecodeLength(datagram)
	if err != nil {
		return nil, err
	}
	if len(datagram) < prefixLen+1 {
		return nil, fmt.Errorf("packets: datagram missing type byte")
	}
	msgType := datagram[prefixLen]
	body := datagram[prefixLen+1 : total]

	decode, ok := decoders[msgType]
	if !ok {
		return nil, fmt.Errorf("packets: unknown message type 0x%02X", msgType)
	}
	pkt, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("packets: decode 0x%02X (%s): %w", msgType, TypeNames[msgType], err)
	}
	return pkt, nil
}
