package mqttsn

import (
	"time"

	"go.uber.org/zap"

	"github.com/wisprail/mqttsn/internal/packets"
)

// State is a Session's place in the connection state machine.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateActive
	StateAsleep
	StateLost
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateAsleep:
		return "ASLEEP"
	case StateLost:
		return "LOST"
	default:
		return "UNKNOWN"
	}
}

// listenerEntry binds a subscription's filter/predefined id to its
// callback. topicID is unknown until the matching SUBACK or gateway
// REGISTER confirms it; listenersByTopicID may hold the same *listenerEntry
// under several ids when a wildcard filter expands to multiple concrete
// topics (one-to-many).
type listenerEntry struct {
	filter  string
	kind    TopicKind
	topicID uint16
	bound   bool
	qos     QoS
	handler MessageHandler
}

// Session is an MQTT-SN client: the state machine, topic registry,
// message-id allocator, pending-request table and listener set for one
// connection to one gateway. It is single-threaded cooperative — see Poll.
type Session struct {
	opts      *sessionOptions
	transport Transport

	state  State
	closed bool

	registry *topicRegistry
	ids      idAllocator
	pending  *pendingTable

	listenersByFilter  map[string]*listenerEntry
	listenersByTopicID map[uint16]*listenerEntry

	lastOutbound time.Time

	handlerInterceptors []HandlerInterceptor
	publishInterceptors []PublishInterceptor
}

// Open dials a UDP socket to host:port and returns a ready-to-use Session.
func Open(host string, port int, opts ...Option) (*Session, error) {
	t, err := DialUDP(host, port)
	if err != nil {
		return nil, err
	}
	return NewSession(t, opts...), nil
}

// NewSession builds a Session over an already-established Transport. Tests
// pass an in-memory Transport; production code normally calls Open.
func NewSession(t Transport, opts ...Option) *Session {
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Session{
		opts:                o,
		transport:           t,
		state:               StateDisconnected,
		registry:            newTopicRegistry(o.predefined),
		pending:             newPendingTable(),
		listenersByFilter:   make(map[string]*listenerEntry),
		listenersByTopicID:  make(map[uint16]*listenerEntry),
	}
}

// State reports the session's current place in the state machine.
func (s *Session) State() State {
	return s.state
}

// Use registers interceptors applied to every delivered message and every
// outbound publish, in the order given.
func (s *Session) Use(handlers []HandlerInterceptor, publishes []PublishInterceptor) {
	s.handlerInterceptors = append(s.handlerInterceptors, handlers...)
	s.publishInterceptors = append(s.publishInterceptors, publishes...)
}

func (s *Session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.opts.metrics.transition(from, to)
	s.opts.logger.Info("state transition", zap.String("from", from.String()), zap.String("to", to.String()))
	if s.opts.onStateChange != nil {
		s.opts.onStateChange(from, to)
	}
}

// send frames nothing itself; it writes an already-encoded datagram and
// resets the keep-alive clock, since any outbound traffic counts.
func (s *Session) send(data []byte) error {
	if err := s.transport.Send(data); err != nil {
		return err
	}
	s.opts.metrics.sent(len(data))
	s.lastOutbound = clockNow()
	return nil
}

func (s *Session) encodeAndSend(p packets.Packet) ([]byte, error) {
	framed, err := packets.Encode(p)
	if err != nil {
		return nil, err
	}
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return framed, nil
}

func (s *Session) nextMsgID() (uint16, error) {
	return s.ids.allocate(s.pending.inUse)
}

// SendConnect opens the CONNECT/CONNACK handshake, including the optional
// WILLTOPICREQ/WILLTOPIC, WILLMSGREQ/WILLMSG exchange when a will was
// configured with WithWill.
func (s *Session) SendConnect() (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateDisconnected {
		return nil, ErrProtocolViolation
	}

	willSet := s.opts.willTopic != ""
	pkt := &packets.ConnectPacket{
		Will:         willSet,
		CleanSession: s.opts.cleanSession,
		Duration:     uint16(s.opts.keepAlive / time.Second),
		ClientID:     s.opts.clientID,
	}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}

	s.setState(StateConnecting)
	req := s.pending.add(packets.CONNACK, 0, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(ack packets.Packet) error {
		connack := ack.(*packets.ConnackPacket)
		if err := rejected(connack.ReturnCode); err != nil {
			s.setState(StateDisconnected)
			s.opts.metrics.rejected()
			return err
		}
		s.setState(StateActive)
		return nil
	})
	req.onTimeout = func() {
		if s.state == StateConnecting {
			s.setState(StateDisconnected)
		}
	}
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

func (s *Session) handleWilltopicreq() {
	if s.state != StateConnecting {
		return
	}
	pkt := &packets.WilltopicPacket{QoS: s.opts.willQoS, Retain: s.opts.willRetain, Topic: s.opts.willTopic}
	framed, err := packets.Encode(pkt)
	if err != nil {
		s.opts.logger.Error("encode WILLTOPIC", zap.Error(err))
		return
	}
	if err := s.send(framed); err != nil {
		s.opts.logger.Error("send WILLTOPIC", zap.Error(err))
		return
	}
	s.pending.touch(packets.CONNACK, 0, s.opts.requestTimeout)
}

func (s *Session) handleWillmsgreq() {
	if s.state != StateConnecting {
		return
	}
	pkt := &packets.WillmsgPacket{Message: s.opts.willMessage}
	framed, err := packets.Encode(pkt)
	if err != nil {
		s.opts.logger.Error("encode WILLMSG", zap.Error(err))
		return
	}
	if err := s.send(framed); err != nil {
		s.opts.logger.Error("send WILLMSG", zap.Error(err))
		return
	}
	s.pending.touch(packets.CONNACK, 0, s.opts.requestTimeout)
}

// SendDisconnect sends DISCONNECT. duration == 0 asks for a plain
// disconnect; duration > 0 asks the gateway to hold the session asleep.
func (s *Session) SendDisconnect(duration time.Duration) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	pkt := &packets.DisconnectPacket{HasDuration: duration > 0, Duration: uint16(duration / time.Second)}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}
	req := s.pending.add(packets.DISCONNECT, 0, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(packets.Packet) error {
		if duration > 0 {
			s.setState(StateAsleep)
		} else {
			s.setState(StateDisconnected)
			if s.opts.cleanSession {
				s.registry.clearNormal()
			}
		}
		return nil
	})
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

// SendWillTopicUpdate replaces the will topic/QoS/retain of an ACTIVE
// session without reconnecting.
func (s *Session) SendWillTopicUpdate(topic string, qos int8, retain bool) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	pkt := &packets.WilltopicupdPacket{QoS: qos, Retain: retain, Topic: topic}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}
	req := s.pending.add(packets.WILLTOPICRESP, 0, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(ack packets.Packet) error {
		resp := ack.(*packets.WilltopicrespPacket)
		if err := rejected(resp.ReturnCode); err != nil {
			return err
		}
		s.opts.willTopic, s.opts.willQoS, s.opts.willRetain = topic, qos, retain
		return nil
	})
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

// SendWillMessageUpdate replaces the will payload of an ACTIVE session.
func (s *Session) SendWillMessageUpdate(message []byte) (Token, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.state != StateActive {
		return nil, ErrProtocolViolation
	}
	pkt := &packets.WillmsgupdPacket{Message: message}
	framed, err := packets.Encode(pkt)
	if err != nil {
		return nil, err
	}
	req := s.pending.add(packets.WILLMSGRESP, 0, framed, s.opts.requestTimeout, s.opts.maxRetries, false, func(ack packets.Packet) error {
		resp := ack.(*packets.WillmsgrespPacket)
		if err := rejected(resp.ReturnCode); err != nil {
			return err
		}
		s.opts.willMessage = message
		return nil
	})
	if err := s.send(framed); err != nil {
		return nil, err
	}
	return req.tok, nil
}

// Close releases the transport and fails every pending request with
// ErrClosed. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pending.closeAll(ErrClosed)
	s.setState(StateDisconnected)
	return s.transport.Close()
}
