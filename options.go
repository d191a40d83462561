package mqttsn

import (
	"time"

	"go.uber.org/zap"

	"github.com/wisprail/mqttsn/internal/packets"
)

// sessionOptions holds the configuration a Session is built with. Most
// fields mirror Config; Option lets callers override them individually
// without constructing a full Config/YAML document.
type sessionOptions struct {
	clientID       string
	keepAlive      time.Duration
	requestTimeout time.Duration
	maxRetries     int
	cleanSession   bool

	willTopic   string
	willMessage []byte
	willQoS     int8
	willRetain  bool

	predefined map[string]uint16

	maxPayloadSize int

	logger  *zap.Logger
	metrics *Metrics

	onStateChange func(from, to State)
}

func defaultSessionOptions() *sessionOptions {
	return &sessionOptions{
		keepAlive:      60 * time.Second,
		requestTimeout: 60 * time.Second,
		maxRetries:     3,
		cleanSession:   true,
		predefined:     map[string]uint16{},
		maxPayloadSize: packets.MaxPacketLength,
		logger:         zap.NewNop(),
	}
}

// Option configures a Session at construction time.
type Option func(*sessionOptions)

// WithClientID sets the client identifier sent in CONNECT.
func WithClientID(id string) Option {
	return func(o *sessionOptions) { o.clientID = id }
}

// WithKeepAlive sets the keep-alive interval; 0 disables PINGREQ.
func WithKeepAlive(d time.Duration) Option {
	return func(o *sessionOptions) { o.keepAlive = d }
}

// WithRequestTimeout sets the per-request ack timeout used by the
// pending-request table.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *sessionOptions) { o.requestTimeout = d }
}

// WithMaxRetries sets how many times a pending request is retransmitted
// before it fails with ErrTimeout.
func WithMaxRetries(n int) Option {
	return func(o *sessionOptions) { o.maxRetries = n }
}

// WithCleanSession sets the CLEAN_SESSION flag sent in CONNECT.
func WithCleanSession(clean bool) Option {
	return func(o *sessionOptions) { o.cleanSession = clean }
}

// WithWill configures the last-will topic, message, QoS and retain flag.
// An empty topic means no WILL flag is set on CONNECT.
func WithWill(topic string, message []byte, qos int8, retain bool) Option {
	return func(o *sessionOptions) {
		o.willTopic = topic
		o.willMessage = message
		o.willQoS = qos
		o.willRetain = retain
	}
}

// WithPredefinedTopics loads the static name->id table used for PREDEFINED
// topic resolution. Entries are immutable once the Session is built.
func WithPredefinedTopics(table map[string]uint16) Option {
	return func(o *sessionOptions) {
		for k, v := range table {
			o.predefined[k] = v
		}
	}
}

// WithMaxPayloadSize caps outgoing PUBLISH payloads below the protocol's own
// 65535-byte datagram limit, e.g. to keep under a constrained gateway's MTU.
func WithMaxPayloadSize(max int) Option {
	return func(o *sessionOptions) {
		if max > 0 && max < o.maxPayloadSize {
			o.maxPayloadSize = max
		}
	}
}

// WithLogger sets the zap.Logger used for inbound transport/decode errors
// that are logged and dropped rather than surfaced to a caller.
func WithLogger(l *zap.Logger) Option {
	return func(o *sessionOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics attaches Prometheus counters to the session's traffic.
func WithMetrics(m *Metrics) Option {
	return func(o *sessionOptions) { o.metrics = m }
}

// WithOnStateChange registers a hook invoked whenever the session's state
// machine transitions, including the ACTIVE -> LOST keep-alive expiry.
func WithOnStateChange(fn func(from, to State)) Option {
	return func(o *sessionOptions) { o.onStateChange = fn }
}

// FromConfig turns a loaded Config into the equivalent Option list.
func FromConfig(cfg Config) []Option {
	opts := []Option{
		WithClientID(cfg.ClientID),
		WithKeepAlive(cfg.KeepAlive),
		WithRequestTimeout(cfg.RequestTimeout),
		WithMaxRetries(cfg.MaxRetries),
		WithCleanSession(cfg.CleanSession),
		WithPredefinedTopics(cfg.Predefined),
	}
	if cfg.WillTopic != "" {
		opts = append(opts, WithWill(cfg.WillTopic, []byte(cfg.WillMessage), cfg.WillQoS, cfg.WillRetain))
	}
	return opts
}
