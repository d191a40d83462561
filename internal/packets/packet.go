package packets

// Packet is implemented by every MQTT-SN message type.
type Packet interface {
	// Type returns the MQTT-SN message type byte.
	Type() uint8

	// AppendEncoded appends the fully framed wire representation (length
	// prefix, type byte, body) to dst and returns the extended slice.
	AppendEncoded(dst []byte) ([]byte, error)
}

// Encode is a convenience wrapper around AppendEncoded for callers that
// don't already hold a scratch buffer.
func Encode(p Packet) ([]byte, error) {
	bufPtr := GetBuffer()
	defer PutBuffer(bufPtr)
	out, err := p.AppendEncoded((*bufPtr)[:0])
	if err != nil {
		return nil, err
	}
	result := make([]byte, len(out))
	copy(result, out)
	return result, nil
}

// appendFramed writes the length prefix, the type byte and body to dst.
func appendFramed(dst []byte, msgType uint8, body []byte) ([]byte, error) {
	dst, err := AppendLength(dst, 1+len(body))
	if err != nil {
		return nil, err
	}
	dst = append(dst, msgType)
	dst = append(dst, body...)
	return dst, nil
}
