// Package mqttsn implements the client side of MQTT-SN v1.2: a UDP-framed
// protocol engine for talking to an MQTT-SN gateway from a constrained
// device. It provides the packet codec, a topic-alias registry, message-id
// allocation, QoS-coupled request/response correlation with timed
// retransmission, a keep-alive loop, and inbound dispatch to subscriber
// callbacks.
//
// # Quick Start
//
// Open a session and run the CONNECT handshake:
//
//	session, err := mqttsn.Open("127.0.0.1", 2442, mqttsn.WithClientID("sensor-1"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	tok, err := session.SendConnect()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    session.Poll()
//	    select {
//	    case <-tok.Done():
//	    default:
//	        continue
//	    }
//	    break
//	}
//	if err := tok.Error(); err != nil {
//	    log.Fatal(err)
//	}
//
// Publish and subscribe follow the same send-then-Poll pattern:
//
//	session.SendSubscribe("sensors/+/temperature", mqttsn.AtLeastOnce,
//	    func(s *mqttsn.Session, msg mqttsn.Message) {
//	        fmt.Printf("%s: %s\n", msg.Topic, string(msg.Payload))
//	    })
//
//	session.SendPublish("sensors/1/temperature", []byte("22.5"), mqttsn.AtLeastOnce, false)
//
// # Concurrency model
//
// A Session is single-threaded cooperative: every method call and every
// Poll invocation must come from the same goroutine. Poll performs one
// bounded-wait read, dispatches at most one inbound datagram, sweeps the
// pending-request table for retransmission or timeout, and checks whether a
// keep-alive PINGREQ is due. Run loops Poll until the session closes; use it
// only when nothing else needs to share that goroutine.
//
// # Topic kinds
//
// A topic name is classified automatically: exactly two ASCII characters is
// SHORT (the id is the two bytes themselves), a name present in the
// predefined table passed to WithPredefinedTopics is PREDEFINED, anything
// else is NORMAL and is registered with the gateway on first publish.
// SendPublishPredefined and SendPublishWithBytes bypass classification to
// force a kind explicitly.
//
// # Quality of Service
//
//   - QoS 0 (mqttsn.AtMostOnce): fire-and-forget within a session.
//   - QoS 1 (mqttsn.AtLeastOnce): acknowledged by PUBACK, retransmitted with
//     DUP set until acknowledged or retries are exhausted.
//   - QoS -1 (mqttsn.FireAndForget): publish without a session, valid only
//     for PREDEFINED or SHORT topics.
//
// # Last Will and Testament
//
// WithWill configures the topic, payload, QoS and retain flag the gateway
// publishes on the client's behalf if the session is lost without a clean
// DISCONNECT. SendConnect negotiates the WILLTOPICREQ/WILLTOPIC and
// WILLMSGREQ/WILLMSG exchange automatically when a will is configured.
// SendWillTopicUpdate and SendWillMessageUpdate change the will of an
// already-ACTIVE session.
//
// # Error handling
//
// Operations return a Token for both blocking and non-blocking completion
// checks. Errors use sentinels comparable with errors.Is (ErrTimeout,
// ErrProtocolViolation, ErrClosed, ErrOutOfMessageIDs) plus RejectedError
// for a non-zero gateway return code, matched coarsely with
// errors.Is(err, mqttsn.ErrRejected) or precisely with errors.As.
//
//	tok, err := session.SendPublish("sensors/1/temperature", payload, mqttsn.AtLeastOnce, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ... drive Poll until tok.Done() ...
//	if err := tok.Error(); err != nil {
//	    var rejected *mqttsn.RejectedError
//	    if errors.As(err, &rejected) {
//	        log.Printf("gateway rejected: 0x%02X", rejected.ReturnCode)
//	    }
//	}
package mqttsn
