package mqttsn

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wisprail/mqttsn/internal/packets"
)

// pollReadTimeout bounds how long a single Poll call blocks waiting for an
// inbound datagram before moving on to the sweep and keep-alive checks.
const pollReadTimeout = 50 * time.Millisecond

// Poll runs one tick of the cooperative driver: a bounded-wait read, decode
// and dispatch of at most one inbound datagram, a pending-request sweep,
// and a keep-alive check. Callers that need an operation's result spin Poll
// until the returned Token is done.
func (s *Session) Poll() {
	if s.closed {
		return
	}
	s.readOnce()
	now := clockNow()
	s.sweepPending(now)
	s.checkKeepAlive(now)
}

// Run calls Poll in a loop until the session closes.
func (s *Session) Run() {
	for !s.closed {
		s.Poll()
	}
}

func (s *Session) readOnce() {
	data, err := s.transport.Receive(pollReadTimeout)
	if err != nil {
		s.opts.logger.Warn("transport receive", zap.Error(err))
		return
	}
	if data == nil {
		return
	}
	s.opts.metrics.received(len(data))

	pkt, err := packets.Decode(data)
	if err != nil {
		s.opts.logger.Warn("decode inbound datagram", zap.Error(errors.Join(ErrMalformedPacket, err)))
		return
	}
	s.dispatch(pkt)
}

func (s *Session) dispatch(pkt packets.Packet) {
	switch p := pkt.(type) {
	case *packets.ConnackPacket:
		s.pending.complete(packets.CONNACK, 0, p)
	case *packets.WilltopicreqPacket:
		s.handleWilltopicreq()
	case *packets.WillmsgreqPacket:
		s.handleWillmsgreq()
	case *packets.WilltopicrespPacket:
		s.pending.complete(packets.WILLTOPICRESP, 0, p)
	case *packets.WillmsgrespPacket:
		s.pending.complete(packets.WILLMSGRESP, 0, p)
	case *packets.RegackPacket:
		s.pending.complete(packets.REGACK, p.MsgID, p)
	case *packets.RegisterPacket:
		s.handleGatewayRegister(p)
	case *packets.PubackPacket:
		s.pending.complete(packets.PUBACK, p.MsgID, p)
	case *packets.SubackPacket:
		s.pending.complete(packets.SUBACK, p.MsgID, p)
	case *packets.UnsubackPacket:
		s.pending.complete(packets.UNSUBACK, p.MsgID, p)
	case *packets.PingrespPacket:
		s.pending.complete(packets.PINGRESP, 0, p)
	case *packets.DisconnectPacket:
		s.pending.complete(packets.DISCONNECT, 0, p)
	case *packets.PublishPacket:
		s.handleInboundPublish(p)
	default:
		s.opts.logger.Debug("unhandled inbound packet", zap.Uint8("type", pkt.Type()))
	}
}

func (s *Session) sweepPending(now time.Time) {
	for _, req := range s.pending.sweep(now, s.opts.requestTimeout) {
		if err := s.transport.Send(req.payload); err != nil {
			s.opts.logger.Warn("retransmit", zap.Error(err))
			continue
		}
		s.opts.metrics.sent(len(req.payload))
		s.opts.metrics.retransmit()
		s.lastOutbound = now
	}
}

func (s *Session) checkKeepAlive(now time.Time) {
	if s.state != StateActive || s.opts.keepAlive <= 0 {
		return
	}
	if now.Sub(s.lastOutbound) < s.opts.keepAlive {
		return
	}
	if s.pending.has(packets.PINGRESP, 0) {
		return
	}
	pkt := &packets.PingreqPacket{ClientID: s.opts.clientID}
	framed, err := packets.Encode(pkt)
	if err != nil {
		s.opts.logger.Error("encode PINGREQ", zap.Error(err))
		return
	}
	req := s.pending.add(packets.PINGRESP, 0, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(packets.Packet) error {
		return nil
	})
	req.onTimeout = func() {
		s.setState(StateLost)
	}
	_ = s.send(framed)
}
