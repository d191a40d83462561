package mqttsn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisprail/mqttsn/internal/packets"
)

func TestSendSubscribe_NormalFilter_BindsOnSuback(t *testing.T) {
	withFrozenClock(time.Now(), func(advance func(time.Duration)) {
		tr := newMemTransport()
		s := NewSession(tr, WithClientID("c"))
		connectAndActivate(t, s, tr)

		var delivered []Message
		tok, err := s.SendSubscribe("mqttsn/test/sub", AtLeastOnce, func(_ *Session, m Message) {
			delivered = append(delivered, m)
		})
		require.NoError(t, err)

		sub := mustDecode(t, tr.lastSent()).(*packets.SubscribePacket)
		assert.Equal(t, "mqttsn/test/sub", sub.TopicName)

		tr.deliver(mustEncode(t, &packets.SubackPacket{TopicID: 5, MsgID: sub.MsgID, ReturnCode: packets.RCAccepted}))
		s.Poll()
		assert.True(t, isDone(tok))

		entry, ok := s.listenersByTopicID[5]
		require.True(t, ok)
		assert.True(t, entry.bound)

		tr.deliver(mustEncode(t, &packets.PublishPacket{TopicID: 5, MsgID: 1, Data: []byte("hello")}))
		s.Poll()

		require.Len(t, delivered, 1)
		assert.Equal(t, "hello", string(delivered[0].Payload))
	})
}

func TestHandleInboundPublish_QoS1_AcksBeforeListenerRuns(t *testing.T) {
	withFrozenClock(time.Now(), func(advance func(time.Duration)) {
		tr := newMemTransport()
		s := NewSession(tr, WithClientID("c"))
		connectAndActivate(t, s, tr)

		var ackSeenFirst bool
		tok, err := s.SendSubscribe("ab", AtLeastOnce, func(_ *Session, m Message) {
			// by the time the handler runs, the PUBACK datagram is already
			// the last thing this session sent.
			_, ackSeenFirst = mustDecode(t, tr.lastSent()).(*packets.PubackPacket)
		})
		require.NoError(t, err)
		sub := mustDecode(t, tr.lastSent()).(*packets.SubscribePacket)
		tr.deliver(mustEncode(t, &packets.SubackPacket{TopicID: sub.TopicID, MsgID: sub.MsgID, ReturnCode: packets.RCAccepted}))
		s.Poll()
		require.True(t, isDone(tok))

		tr.deliver(mustEncode(t, &packets.PublishPacket{QoS: 1, TopicIDType: packets.TopicShort, TopicID: sub.TopicID, MsgID: 7, Data: []byte("x")}))
		s.Poll()

		assert.True(t, ackSeenFirst)
	})
}

func TestSendSubscribe_Rejected_RemovesListener(t *testing.T) {
	withFrozenClock(time.Now(), func(advance func(time.Duration)) {
		tr := newMemTransport()
		s := NewSession(tr, WithClientID("c"))
		connectAndActivate(t, s, tr)

		tok, err := s.SendSubscribe("mqttsn/test/sub", AtLeastOnce, func(*Session, Message) {})
		require.NoError(t, err)
		sub := mustDecode(t, tr.lastSent()).(*packets.SubscribePacket)

		tr.deliver(mustEncode(t, &packets.SubackPacket{MsgID: sub.MsgID, ReturnCode: packets.RCRejectedNotSupported}))
		s.Poll()

		require.True(t, isDone(tok))
		assert.ErrorIs(t, tok.Error(), ErrRejected)
		_, ok := s.listenersByFilter["mqttsn/test/sub"]
		assert.False(t, ok)
	})
}

func TestHandleGatewayRegister_BindsWildcardSubscription(t *testing.T) {
	withFrozenClock(time.Now(), func(advance func(time.Duration)) {
		tr := newMemTransport()
		s := NewSession(tr, WithClientID("c"))
		connectAndActivate(t, s, tr)

		var delivered *Message
		tok, err := s.SendSubscribe("devices/+/status", AtMostOnce, func(_ *Session, m Message) {
			delivered = &m
		})
		require.NoError(t, err)
		sub := mustDecode(t, tr.lastSent()).(*packets.SubscribePacket)
		tr.deliver(mustEncode(t, &packets.SubackPacket{TopicID: 0, MsgID: sub.MsgID, ReturnCode: packets.RCAccepted}))
		s.Poll()
		require.True(t, isDone(tok))

		// the gateway expands the wildcard to a concrete topic the client
		// has never registered, and REGISTERs it unprompted.
		tr.deliver(mustEncode(t, &packets.RegisterPacket{TopicID: 77, MsgID: 0, TopicName: "devices/sensor-1/status"}))
		s.Poll()

		regack := mustDecode(t, tr.lastSent()).(*packets.RegackPacket)
		assert.Equal(t, uint16(77), regack.TopicID)
		assert.Equal(t, packets.RCAccepted, regack.ReturnCode)

		tr.deliver(mustEncode(t, &packets.PublishPacket{TopicID: 77, Data: []byte("online")}))
		s.Poll()

		require.NotNil(t, delivered)
		assert.Equal(t, "online", string(delivered.Payload))
		assert.Equal(t, "devices/sensor-1/status", delivered.Topic)
	})
}

func TestSendUnsubscribe_RemovesBothIndexes(t *testing.T) {
	withFrozenClock(time.Now(), func(advance func(time.Duration)) {
		tr := newMemTransport()
		s := NewSession(tr, WithClientID("c"))
		connectAndActivate(t, s, tr)

		_, err := s.SendSubscribe("mqttsn/test/sub", AtMostOnce, func(*Session, Message) {})
		require.NoError(t, err)
		sub := mustDecode(t, tr.lastSent()).(*packets.SubscribePacket)
		tr.deliver(mustEncode(t, &packets.SubackPacket{TopicID: 12, MsgID: sub.MsgID, ReturnCode: packets.RCAccepted}))
		s.Poll()

		tok, err := s.SendUnsubscribe("mqttsn/test/sub")
		require.NoError(t, err)
		unsub := mustDecode(t, tr.lastSent()).(*packets.UnsubscribePacket)
		tr.deliver(mustEncode(t, &packets.UnsubackPacket{MsgID: unsub.MsgID}))
		s.Poll()

		assert.True(t, isDone(tok))
		_, ok := s.listenersByFilter["mqttsn/test/sub"]
		assert.False(t, ok)
		_, ok = s.listenersByTopicID[12]
		assert.False(t, ok)
	})
}

func TestMatchTopic(t *testing.T) {
	cases := []struct {
		filter, topic string
		want          bool
	}{
		{"devices/+/status", "devices/sensor-1/status", true},
		{"devices/+/status", "devices/sensor-1/other/status", false},
		{"devices/#", "devices/sensor-1/status", true},
		{"devices/#", "devices", true},
		{"a/b", "a/b", true},
		{"a/b", "a/c", false},
		{"+/status", "$SYS/status", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchTopic(c.filter, c.topic), "filter=%q topic=%q", c.filter, c.topic)
	}
}
