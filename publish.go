package mqttsn

import (
	"github.com/wisprail/mqttsn/internal/packets"
)

// SendPublish publishes to a topic name, resolving its kind automatically:
// a two-character name is SHORT, a name present in the predefined table is
// PREDEFINED, anything else is NORMAL and is REGISTERed before the first
// publish. Use SendPublishPredefined or SendPublishWithBytes to force a
// kind instead of classifying the name.
func (s *Session) SendPublish(topic string, payload []byte, qos QoS, retain bool) (Token, error) {
	return applyPublishInterceptors(s.sendPublishNamed, s.publishInterceptors)(topic, payload, qos, retain)
}

func (s *Session) sendPublishNamed(topic string, payload []byte, qos QoS, retain bool) (Token, error) {
	kind := s.registry.classify(topic)
	if kind == packets.TopicNormal && qos == FireAndForget {
		return nil, ErrProtocolViolation
	}
	if kind != packets.TopicNormal {
		id, _ := s.registry.resolveName(topic, kind)
		return s.publishByKind(kind, id, topic, payload, qos, retain, nil)
	}
	if id, ok := s.registry.resolveName(topic, kind); ok {
		return s.publishByKind(kind, id, topic, payload, qos, retain, nil)
	}
	return s.registerThenPublish(topic, payload, qos, retain)
}

// SendPublishPredefined publishes to a pre-agreed topic id without any name
// resolution. Valid at QoS -1 without a session.
func (s *Session) SendPublishPredefined(id uint16, payload []byte, qos QoS, retain bool) (Token, error) {
	return s.publishByKind(packets.TopicPredefined, id, "", payload, qos, retain, nil)
}

// SendPublishWithBytes forces SHORT-topic interpretation of a two-byte
// topic id, bypassing name classification entirely.
func (s *Session) SendPublishWithBytes(topicBytes [2]byte, payload []byte, qos QoS, retain bool) (Token, error) {
	id := uint16(topicBytes[0])<<8 | uint16(topicBytes[1])
	return s.publishByKind(packets.TopicShort, id, string(topicBytes[:]), payload, qos, retain, nil)
}

// publishByKind sends one PUBLISH. If reuse is non-nil (the tail end of a
// REGISTER-then-publish chain) its token is completed instead of a fresh
// one, so the caller's original token represents the whole operation.
func (s *Session) publishByKind(kind TopicKind, topicID uint16, topicName string, payload []byte, qos QoS, retain bool, reuse *token) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if qos != FireAndForget && s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	if len(payload) > s.opts.maxPayloadSize {
		return nil, ErrProtocolViolation
	}

	var msgID uint16
	var err error
	if qos == AtLeastOnce {
		msgID, err = s.nextMsgID()
		if err != nil {
			return nil, err
		}
	}

	pkt := &packets.PublishPacket{
		QoS:         int8(qos),
		Retain:      retain,
		TopicIDType: kind,
		TopicID:     topicID,
		MsgID:       msgID,
		Data:        payload,
	}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}

	tok := reuse
	if tok == nil {
		tok = newToken()
	}

	if qos != AtLeastOnce {
		if err := s.send(framed); err != nil {
			return nil, err
		}
		tok.complete(nil)
		return tok, nil
	}

	req := s.pending.add(packets.PUBACK, msgID, framed, s.opts.requestTimeout, s.opts.maxRetries, true, func(ack packets.Packet) error {
		puback := ack.(*packets.PubackPacket)
		if err := rejected(puback.ReturnCode); err != nil {
			s.opts.metrics.rejected()
			if puback.ReturnCode == packets.RCRejectedInvalidTopic && topicName != "" {
				s.registry.invalidateNormal(topicName)
			}
			return err
		}
		return nil
	})
	req.tok = tok
	if err := s.send(framed); err != nil {
		s.pending.complete(packets.PUBACK, msgID, nil)
		return nil, err
	}
	return tok, nil
}

// registerThenPublish sends REGISTER for an unregistered NORMAL topic, then
// chains the actual PUBLISH once REGACK accepts it. The returned token
// represents the whole operation, not just the REGISTER leg.
func (s *Session) registerThenPublish(topic string, payload []byte, qos QoS, retain bool) (Token, error) {
	msgID, err := s.nextMsgID()
	if err != nil {
		return nil, err
	}
	pkt := &packets.RegisterPacket{TopicID: 0, MsgID: msgID, TopicName: topic}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}

	outer := newToken()
	var req *pendingRequest
	req = s.pending.add(packets.REGACK, msgID, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(ack packets.Packet) error {
		regack := ack.(*packets.RegackPacket)
		if err := rejected(regack.ReturnCode); err != nil {
			s.opts.metrics.rejected()
			return err
		}
		s.registry.registerLocal(topic, regack.TopicID)
		if _, err := s.publishByKind(packets.TopicNormal, regack.TopicID, topic, payload, qos, retain, outer); err != nil {
			return err
		}
		// outer now belongs to the PUBLISH leg; the REGISTER entry completes a
		// token of its own so a QoS 1 publish is not resolved before its PUBACK.
		req.tok = newToken()
		return nil
	})
	// Rejection, timeout and Close of the REGISTER leg complete outer.
	req.tok = outer
	req.onTimeout = func() { outer.complete(ErrTimeout) }
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return outer, nil
}
