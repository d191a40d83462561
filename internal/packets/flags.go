package packets

import "fmt"

// Flags bit layout shared by CONNECT, WILLTOPIC, PUBLISH, SUBSCRIBE.
const (
	flagDup          = 0x80
	flagQoSMask      = 0x60
	flagQoSShift     = 5
	flagRetain       = 0x10
	flagWill         = 0x08
	flagCleanSession = 0x04
	flagTopicIDMask  = 0x03
)

// Flags is the decoded form of the one-byte flags field.
type Flags struct {
	Dup          bool
	QoS          int8 // 0, 1, 2 (unused by this client) or -1
	Retain       bool
	Will         bool
	CleanSession bool
	TopicIDType  TopicIDType
}

// qosToBits packs a QoS value into the 2-bit wire representation. QoS -1
// is carried as 0b11.
func qosToBits(qos int8) uint8 {
	if qos < 0 {
		return 0x03
	}
	return uint8(qos) & 0x03
}

// bitsToQoS unpacks the 2-bit wire representation into a QoS value.
func bitsToQoS(bits uint8) int8 {
	if bits == 0x03 {
		return -1
	}
	return int8(bits)
}

// Encode packs the flags into a single byte.
func (f Flags) Encode() uint8 {
	var b uint8
	if f.Dup {
		b |= flagDup
	}
	b |= qosToBits(f.QoS) << flagQoSShift
	if f.Retain {
		b |= flagRetain
	}
	if f.Will {
		b |= flagWill
	}
	if f.CleanSession {
		b |= flagCleanSession
	}
	b |= uint8(f.TopicIDType) & flagTopicIDMask
	return b
}

// SetDupFlag flips the DUP bit in an already-framed datagram in place. It is
// used to retransmit a stored PUBLISH with DUP set, the only packet type the
// protocol allows to be marked duplicate.
func SetDupFlag(framed []byte) error {
	total, prefixLen, err := DecodeLength(framed)
	if err != nil {
		return err
	}
	flagsIdx := prefixLen + 1
	if flagsIdx >= total {
		return fmt.Errorf("packets: datagram too short to carry flags")
	}
	framed[flagsIdx] |= flagDup
	return nil
}

// DecodeFlags unpacks a flags byte.
func DecodeFlags(b uint8) Flags {
	return Flags{
		Dup:          b&flagDup != 0,
		QoS:          bitsToQoS((b & flagQoSMask) >> flagQoSShift),
		Retain:       b&flagRetain != 0,
		Will:         b&flagWill != 0,
		CleanSession: b&flagCleanSession != 0,
		TopicIDType:  TopicIDType(b & flagTopicIDMask),
	}
}
