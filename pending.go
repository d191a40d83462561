package mqttsn

import (
	"time"

	"github.com/wisprail/mqttsn/internal/packets"
)

// pendingKey identifies an in-flight request by the message type expected
// in reply and the msgId that correlates request and reply. A handful of
// reply types carry no msgId on the wire (PINGRESP, the DISCONNECT echo,
// CONNACK, WILLTOPICRESP/WILLMSGRESP); those use msgID 0, which is safe
// because the allocator never hands 0 to a real request and at most one of
// each such exchange is ever outstanding.
type pendingKey struct {
	expectedType uint8
	msgID        uint16
}

// pendingRequest tracks one outstanding request awaiting acknowledgment.
type pendingRequest struct {
	key        pendingKey
	payload    []byte // framed datagram, resent verbatim (or with DUP set) on retry
	deadline   time.Time
	retries    int
	dupCapable bool // only PUBLISH may be marked DUP on retransmit
	tok        *token
	// onAck runs with the matching inbound packet before tok is completed.
	// It reports the error (if any) that should complete the token.
	onAck func(pkt packets.Packet) error
	// onTimeout runs once, after retries are exhausted and before tok is
	// failed with ErrTimeout. Used to fold state-machine side effects (e.g.
	// keep-alive loss moving the session to LOST) into the generic sweep.
	onTimeout func()
}

// pendingTable is the C5 component: in-flight request/response tracking by
// (expected reply type, msgId), with deadline and retry bookkeeping.
type pendingTable struct {
	entries map[pendingKey]*pendingRequest
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[pendingKey]*pendingRequest)}
}

func (t *pendingTable) inUse(msgID uint16) bool {
	for k := range t.entries {
		if k.msgID == msgID {
			return true
		}
	}
	return false
}

// add registers a new pending request. timeout and maxRetries come from the
// session's configured defaults unless overridden by the caller.
func (t *pendingTable) add(expectedType uint8, msgID uint16, payload []byte, timeout time.Duration, maxRetries int, dupCapable bool, onAck func(packets.Packet) error) *pendingRequest {
	req := &pendingRequest{
		key:        pendingKey{expectedType: expectedType, msgID: msgID},
		payload:    payload,
		deadline:   clockNow().Add(timeout),
		retries:    maxRetries,
		dupCapable: dupCapable,
		tok:        newToken(),
		onAck:      onAck,
	}
	t.entries[req.key] = req
	return req
}

func (t *pendingTable) has(expectedType uint8, msgID uint16) bool {
	_, ok := t.entries[pendingKey{expectedType: expectedType, msgID: msgID}]
	return ok
}

// touch resets a pending request's deadline without consuming a retry. It is
// used for the WILL mini-handshake, where a WILLTOPICREQ/WILLMSGREQ exchange
// in progress is itself proof the gateway is still talking to us.
func (t *pendingTable) touch(expectedType uint8, msgID uint16, timeout time.Duration) {
	if req, ok := t.entries[pendingKey{expectedType: expectedType, msgID: msgID}]; ok {
		req.deadline = clockNow().Add(timeout)
	}
}

// complete looks up and removes the entry matching an inbound ack, running
// its onAck hook and resolving its token. Returns false if nothing was
// pending under that key (a stray or duplicate ack).
func (t *pendingTable) complete(expectedType uint8, msgID uint16, ack packets.Packet) bool {
	key := pendingKey{expectedType: expectedType, msgID: msgID}
	req, ok := t.entries[key]
	if !ok {
		return false
	}
	delete(t.entries, key)
	var err error
	if req.onAck != nil {
		err = req.onAck(ack)
	}
	req.tok.complete(err)
	return true
}

// sweep expires entries past their deadline. Entries with retries remaining
// are returned for retransmission (with a fresh deadline already applied);
// entries with no retries left are removed and their tokens failed with
// ErrTimeout.
func (t *pendingTable) sweep(now time.Time, timeout time.Duration) []*pendingRequest {
	var retransmit []*pendingRequest
	for key, req := range t.entries {
		if now.Before(req.deadline) {
			continue
		}
		if req.retries <= 0 {
			delete(t.entries, key)
			if req.onTimeout != nil {
				req.onTimeout()
			}
			req.tok.complete(ErrTimeout)
			continue
		}
		req.retries--
		req.deadline = now.Add(timeout)
		if req.dupCapable {
			_ = packets.SetDupFlag(req.payload)
		}
		retransmit = append(retransmit, req)
	}
	return retransmit
}

// closeAll fails every outstanding request with err. Called when the
// session closes so no awaiter is left hanging.
func (t *pendingTable) closeAll(err error) {
	for key, req := range t.entries {
		delete(t.entries, key)
		req.tok.complete(err)
	}
}

// clockNow is a seam so tests can avoid real sleeps; production uses
// time.Now.
var clockNow = time.Now
