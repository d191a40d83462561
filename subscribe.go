package mqttsn

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wisprail/mqttsn/internal/packets"
)

// SendSubscribe subscribes to a filter (NORMAL, or SHORT if filter is
// exactly two characters) and binds handler to whatever topic id the
// SUBACK or a later gateway REGISTER reports for it.
func (s *Session) SendSubscribe(filter string, qos QoS, handler MessageHandler) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	kind := s.registry.classify(filter)
	if kind == packets.TopicPredefined {
		// A predefined-looking name has no filter form; treat it as NORMAL
		// so the gateway can still perform wildcard matching on the text.
		kind = packets.TopicNormal
	}

	msgID, err := s.nextMsgID()
	if err != nil {
		return nil, err
	}
	pkt := &packets.SubscribePacket{QoS: int8(qos), TopicIDType: kind, MsgID: msgID}
	if kind == packets.TopicShort {
		pkt.TopicID = shortID(filter)
	} else {
		pkt.TopicName = filter
	}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}

	entry := &listenerEntry{filter: filter, kind: kind, qos: qos, handler: applyHandlerInterceptors(handler, s.handlerInterceptors)}
	s.listenersByFilter[filter] = entry

	req := s.pending.add(packets.SUBACK, msgID, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(ack packets.Packet) error {
		suback := ack.(*packets.SubackPacket)
		if err := rejected(suback.ReturnCode); err != nil {
			s.opts.metrics.rejected()
			delete(s.listenersByFilter, filter)
			return err
		}
		entry.topicID = suback.TopicID
		entry.bound = true
		s.listenersByTopicID[suback.TopicID] = entry
		return nil
	})
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

// SendSubscribePredefined subscribes to a pre-agreed topic id.
func (s *Session) SendSubscribePredefined(id uint16, qos QoS, handler MessageHandler) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	msgID, err := s.nextMsgID()
	if err != nil {
		return nil, err
	}
	pkt := &packets.SubscribePacket{QoS: int8(qos), TopicIDType: packets.TopicPredefined, MsgID: msgID, TopicID: id}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}

	entry := &listenerEntry{kind: packets.TopicPredefined, topicID: id, qos: qos, handler: applyHandlerInterceptors(handler, s.handlerInterceptors)}

	req := s.pending.add(packets.SUBACK, msgID, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(ack packets.Packet) error {
		suback := ack.(*packets.SubackPacket)
		if err := rejected(suback.ReturnCode); err != nil {
			s.opts.metrics.rejected()
			return err
		}
		entry.bound = true
		s.listenersByTopicID[id] = entry
		return nil
	})
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

// SendUnsubscribe removes a filter subscription created by SendSubscribe.
func (s *Session) SendUnsubscribe(filter string) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	kind := s.registry.classify(filter)
	if kind == packets.TopicPredefined {
		// Mirror SendSubscribe, which sent a predefined-looking filter as NORMAL.
		kind = packets.TopicNormal
	}
	msgID, err := s.nextMsgID()
	if err != nil {
		return nil, err
	}
	pkt := &packets.UnsubscribePacket{TopicIDType: kind, MsgID: msgID}
	if kind == packets.TopicShort {
		pkt.TopicID = shortID(filter)
	} else {
		pkt.TopicName = filter
	}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}

	req := s.pending.add(packets.UNSUBACK, msgID, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(packets.Packet) error {
		if entry, ok := s.listenersByFilter[filter]; ok {
			delete(s.listenersByFilter, filter)
			delete(s.listenersByTopicID, entry.topicID)
		}
		return nil
	})
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

// SendUnsubscribePredefined removes a predefined-id subscription.
func (s *Session) SendUnsubscribePredefined(id uint16) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	msgID, err := s.nextMsgID()
	if err != nil {
		return nil, err
	}
	pkt := &packets.UnsubscribePacket{TopicIDType: packets.TopicPredefined, MsgID: msgID, TopicID: id}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}
	req := s.pending.add(packets.UNSUBACK, msgID, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(packets.Packet) error {
		delete(s.listenersByTopicID, id)
		return nil
	})
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

// handleInboundPublish dispatches a received PUBLISH. For QoS 1 the PUBACK
// is sent before the listener runs, guaranteeing the at-least-once ordering
// the ack-before-callback invariant requires.
func (s *Session) handleInboundPublish(p *packets.PublishPacket) {
	name, _ := s.registry.resolveID(p.TopicID, p.TopicIDType)

	if p.QoS == int8(AtLeastOnce) {
		ack := &packets.PubackPacket{TopicID: p.TopicID, MsgID: p.MsgID, ReturnCode: packets.RCAccepted}
		framed, err := packets.Encode(ack)
		if err != nil {
			s.opts.logger.Error("encode PUBACK", zap.Error(err))
			return
		}
		if err := s.send(framed); err != nil {
			s.opts.logger.Error("send PUBACK", zap.Error(err))
			return
		}
	}

	entry, ok := s.listenersByTopicID[p.TopicID]
	if !ok {
		return
	}
	msg := Message{
		Topic:     name,
		TopicID:   p.TopicID,
		Payload:   p.Data,
		QoS:       QoS(p.QoS),
		Retained:  p.Retain,
		Duplicate: p.Dup,
	}
	entry.handler(s, msg)
}

// handleGatewayRegister responds to a broker-initiated REGISTER (used when a
// wildcard subscription expands to a concrete topic the client hasn't seen
// before). The registry learns the binding and REGACKs it immediately.
func (s *Session) handleGatewayRegister(p *packets.RegisterPacket) {
	s.registry.registerLocal(p.TopicName, p.TopicID)
	if _, bound := s.listenersByTopicID[p.TopicID]; !bound {
		for _, entry := range s.listenersByFilter {
			if entry.kind == packets.TopicShort {
				continue
			}
			if matchTopic(entry.filter, p.TopicName) {
				s.listenersByTopicID[p.TopicID] = entry
				break
			}
		}
	}
	ack := &packets.RegackPacket{TopicID: p.TopicID, MsgID: p.MsgID, ReturnCode: packets.RCAccepted}
	framed, err := packets.Encode(ack)
	if err != nil {
		s.opts.logger.Error("encode REGACK", zap.Error(err))
		return
	}
	if err := s.send(framed); err != nil {
		s.opts.logger.Error("send REGACK", zap.Error(err))
	}
}

// matchTopic reports whether topic matches filter under the MQTT wildcard
// rules ('+' one level, '#' trailing multi-level). The gateway does the
// authoritative matching for routing; the client only needs this to bind a
// gateway-initiated REGISTER for a wildcard-expanded name to the right
// locally-held listener.
func matchTopic(filter, topic string) bool {
	if len(topic) > 0 && topic[0] == '$' {
		if len(filter) > 0 && (filter[0] == '+' || filter[0] == '#') {
			return false
		}
	}

	fIdx, tIdx := 0, 0
	fLen, tLen := len(filter), len(topic)

	for fIdx <= fLen {
		var fLevel string
		var fNext int
		if idx := strings.IndexByte(filter[fIdx:], '/'); idx >= 0 {
			fNext = fIdx + idx
			fLevel = filter[fIdx:fNext]
		} else {
			fNext = fLen
			fLevel = filter[fIdx:]
		}

		if fLevel == "#" {
			return true
		}
		if tIdx > tLen {
			return false
		}

		var tLevel string
		var tNext int
		if idx := strings.IndexByte(topic[tIdx:], '/'); idx >= 0 {
			tNext = tIdx + idx
			tLevel = topic[tIdx:tNext]
		} else {
			tNext = tLen
			tLevel = topic[tIdx:]
		}

		if fLevel != "+" && fLevel != tLevel {
			return false
		}

		if fNext == fLen {
			fIdx = fLen + 1
		} else {
			fIdx = fNext + 1
		}
		if tNext == tLen {
			tIdx = tLen + 1
		} else {
			tIdx = tNext + 1
		}
	}

	return tIdx > tLen
}
