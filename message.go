package mqttsn

// Message is an inbound PUBLISH delivered to a subscription listener.
type Message struct {
	// Topic is the resolved topic name. Empty if the topic id could not be
	// resolved to a name (PREDEFINED delivered by raw id with no local name).
	Topic string

	// TopicID is the wire topic id the PUBLISH carried.
	TopicID uint16

	// Payload is the message body. It is not retained beyond the callback;
	// handlers that need it afterward must copy it.
	Payload []byte

	QoS QoS

	// Retained reports whether the gateway marked this delivery as a
	// retained message.
	Retained bool

	// Duplicate reports whether the gateway set the DUP flag.
	Duplicate bool
}

// MessageHandler is invoked for every inbound PUBLISH bound to a
// subscription. It runs on the poll() goroutine; handlers that need to do
// slow work should hand it off rather than block the driver.
type MessageHandler func(*Session, Message)
