package mqttsn

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes Prometheus counters for a Session's traffic. Nil-safe: a
// Session with no Metrics configured skips every call site.
type Metrics struct {
	PacketsSent     prometheus.Counter
	PacketsReceived prometheus.Counter
	BytesSent       prometheus.Counter
	BytesReceived   prometheus.Counter
	Retransmits     prometheus.Counter
	// Timeouts is created and registered, but no Session call site
	// increments it; it stays at zero.
	Timeouts        prometheus.Counter
	Rejected        prometheus.Counter
	StateTransition *prometheus.CounterVec
}

// NewMetrics builds a Metrics set with a given namespace and registers it
// against reg. Pass prometheus.DefaultRegisterer to use the global registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		PacketsSent:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "packets_sent_total", Help: "MQTT-SN datagrams sent."}),
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "packets_received_total", Help: "MQTT-SN datagrams received."}),
		BytesSent:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "bytes_sent_total", Help: "Bytes sent on the wire."}),
		BytesReceived:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "bytes_received_total", Help: "Bytes received on the wire."}),
		Retransmits:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "retransmits_total", Help: "Pending requests retransmitted after a timeout."}),
		Timeouts:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "timeouts_total", Help: "Pending requests that exhausted their retries."}),
		Rejected:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rejected_total", Help: "Acks carrying a non-zero return code."}),
		StateTransition: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "state_transitions_total", Help: "Session state machine transitions."}, []string{"from", "to"}),
	}
	if reg != nil {
		reg.MustRegister(m.PacketsSent, m.PacketsReceived, m.BytesSent, m.BytesReceived, m.Retransmits, m.Timeouts, m.Rejected, m.StateTransition)
	}
	return m
}

func (m *Metrics) sent(n int) {
	if m == nil {
		return
	}
	m.PacketsSent.Inc()
	m.BytesSent.Add(float64(n))
}

func (m *Metrics) received(n int) {
	if m == nil {
		return
	}
	m.PacketsReceived.Inc()
	m.BytesReceived.Add(float64(n))
}

func (m *Metrics) rejected() {
	if m == nil {
		return
	}
	m.Rejected.Inc()
}

func (m *Metrics) retransmit() {
	if m == nil {
		return
	}
	m.Retransmits.Inc()
}

func (m *Metrics) transition(from, to State) {
	if m == nil {
		return
	}
	m.StateTransition.WithLabelValues(from.String(), to.String()).Inc()
}
