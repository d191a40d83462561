package packets

import (
	"encoding/binary"
	"fmt"
)

// appendUint16 appends a big-endian u16 to dst.
func appendUint16(dst []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, v)
}

// decodeUint16 reads a big-endian u16 from the front of buf.
func decodeUint16(buf []byte) (uint16, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("packets: buffer too short for u16")
	}
	return binary.BigEndian.Uint16(buf), nil
}

// appendRestString appends the remainder-of-packet UTF-8 string encoding
// used by CONNECT (clientId) and REGISTER (topicName): no length prefix,
// the string simply runs to the end of the packet.
func appendRestString(dst []byte, s string) []byte {
	return append(dst, s...)
}
