package mqttsn

import (
	"errors"
	"fmt"

	"github.com/wisprail/mqttsn/internal/packets"
)

// Sentinel errors comparable with errors.Is.
var (
	// ErrTransport wraps a socket send/recv failure.
	ErrTransport = errors.New("mqttsn: transport error")

	// ErrMalformedPacket is returned when an inbound datagram fails to decode.
	// poll() logs and drops the datagram rather than propagating this.
	ErrMalformedPacket = errors.New("mqttsn: malformed packet")

	// ErrTimeout is returned when a pending request exhausts its retries
	// without a matching acknowledgment.
	ErrTimeout = errors.New("mqttsn: timeout")

	// ErrProtocolViolation is returned when a call violates a state-machine
	// precondition, e.g. publishing at QoS 1 before CONNACK.
	ErrProtocolViolation = errors.New("mqttsn: protocol violation")

	// ErrOutOfMessageIDs is returned when the message-id allocator cannot
	// find a free id because all 65535 are pending.
	ErrOutOfMessageIDs = errors.New("mqttsn: out of message ids")

	// ErrClosed is returned for operations invoked on a closed session.
	ErrClosed = errors.New("mqttsn: session closed")
)

// RejectedError wraps a non-zero return code carried by an ack packet
// (CONNACK, REGACK, SUBACK, PUBACK, WILLTOPICRESP, WILLMSGRESP).
type RejectedError struct {
	ReturnCode uint8
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("mqttsn: rejected (0x%02X: %s)", e.ReturnCode, packets.RCNames[e.ReturnCode])
}

// Is lets callers write errors.Is(err, mqttsn.ErrRejected) as a coarse check,
// independent of the specific return code.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// ErrRejected is the coarse sentinel matched by RejectedError.Is. Inspect a
// returned error with errors.As to read the specific ReturnCode.
var ErrRejected = errors.New("mqttsn: rejected")

func rejected(rc uint8) error {
	if rc == packets.RCAccepted {
		return nil
	}
	return &RejectedError{ReturnCode: rc}
}
