package packets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip encodes p, decodes the result and returns the decoded packet.
// It is the backbone of the decode(encode(P)) == P invariant.
func roundTrip(t *testing.T, p Packet) Packet {
	t.Helper()
	encoded, err := Encode(p)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, p.Type(), decoded.Type())
	return decoded
}

func TestRoundTrip_Connect(t *testing.T) {
	p := &ConnectPacket{Will: true, CleanSession: true, Duration: 60, ClientID: "sensor-01"}
	got := roundTrip(t, p).(*ConnectPacket)
	assert.Equal(t, p, got)
}

func TestRoundTrip_Connack(t *testing.T) {
	p := &ConnackPacket{ReturnCode: RCRejectedCongestion}
	got := roundTrip(t, p).(*ConnackPacket)
	assert.Equal(t, p, got)
}

func TestRoundTrip_WillTopicAndMsg(t *testing.T) {
	wt := &WilltopicPacket{QoS: 1, Retain: true, Topic: "clients/sensor-01/status"}
	gotWT := roundTrip(t, wt).(*WilltopicPacket)
	assert.Equal(t, wt, gotWT)

	wm := &WillmsgPacket{Message: []byte("offline")}
	gotWM := roundTrip(t, wm).(*WillmsgPacket)
	assert.Equal(t, wm, gotWM)
}

func TestRoundTrip_RegisterAndRegack(t *testing.T) {
	reg := &RegisterPacket{TopicID: 0, MsgID: 7, TopicName: "mqttsn/test/pub_qos0"}
	gotReg := roundTrip(t, reg).(*RegisterPacket)
	assert.Equal(t, reg, gotReg)

	ack := &RegackPacket{TopicID: 42, MsgID: 7, ReturnCode: RCAccepted}
	gotAck := roundTrip(t, ack).(*RegackPacket)
	assert.Equal(t, ack, gotAck)
}

func TestRoundTrip_Publish_QoS0(t *testing.T) {
	p := &PublishPacket{TopicIDType: TopicNormal, TopicID: 42, MsgID: 0, Data: []byte("test_pub_qos0")}
	got := roundTrip(t, p).(*PublishPacket)
	assert.Equal(t, p, got)
}

func TestRoundTrip_Publish_Short(t *testing.T) {
	short := "ab"
	p := &PublishPacket{
		TopicIDType: TopicShort,
		TopicID:     uint16(short[0])<<8 | uint16(short[1]),
		Data:        []byte("hi"),
	}
	got := roundTrip(t, p).(*PublishPacket)
	assert.Equal(t, p, got)
	// invariant 4: SHORT topicId equals S[0]<<8 | S[1]
	assert.Equal(t, uint16('a')<<8|uint16('b'), got.TopicID)
}

func TestRoundTrip_Publish_CrossesExtendedLengthBoundary(t *testing.T) {
	payload := []byte(strings.Repeat("x", 60000))
	p := &PublishPacket{TopicIDType: TopicPredefined, TopicID: 1, MsgID: 9, QoS: 1, Data: payload}
	encoded, err := Encode(p)
	require.NoError(t, err)
	// 1 (len-marker) + 2 (ext length) + 1 (type) + 5 (publish header) + payload
	require.Greater(t, len(encoded), 255)
	assert.Equal(t, byte(0x01), encoded[0])

	got := roundTrip(t, p).(*PublishPacket)
	assert.Equal(t, p, got)
}

func TestEncode_RejectsOversizedPayload(t *testing.T) {
	p := &PublishPacket{Data: make([]byte, MaxPacketLength)}
	_, err := Encode(p)
	assert.Error(t, err)
}

func TestRoundTrip_SubscribeNormalAndSuback(t *testing.T) {
	sub := &SubscribePacket{QoS: 1, TopicIDType: TopicNormal, MsgID: 3, TopicName: "mqttsn/test/sub_qos0"}
	got := roundTrip(t, sub).(*SubscribePacket)
	assert.Equal(t, sub, got)

	ack := &SubackPacket{QoS: 1, TopicID: 55, MsgID: 3, ReturnCode: RCAccepted}
	gotAck := roundTrip(t, ack).(*SubackPacket)
	assert.Equal(t, ack, gotAck)
}

func TestRoundTrip_SubscribePredefined(t *testing.T) {
	sub := &SubscribePacket{TopicIDType: TopicPredefined, MsgID: 9, TopicID: 1}
	got := roundTrip(t, sub).(*SubscribePacket)
	assert.Equal(t, sub, got)
}

func TestRoundTrip_UnsubscribeAndUnsuback(t *testing.T) {
	uns := &UnsubscribePacket{TopicIDType: TopicNormal, MsgID: 4, TopicName: "mqttsn/test/sub_qos0"}
	got := roundTrip(t, uns).(*UnsubscribePacket)
	assert.Equal(t, uns, got)

	ack := &UnsubackPacket{MsgID: 4}
	gotAck := roundTrip(t, ack).(*UnsubackPacket)
	assert.Equal(t, ack, gotAck)
}

func TestRoundTrip_PingAndDisconnect(t *testing.T) {
	req := &PingreqPacket{ClientID: "sensor-01"}
	assert.Equal(t, req, roundTrip(t, req).(*PingreqPacket))

	resp := &PingrespPacket{}
	assert.Equal(t, resp, roundTrip(t, resp).(*PingrespPacket))

	plain := &DisconnectPacket{}
	assert.Equal(t, plain, roundTrip(t, plain).(*DisconnectPacket))

	sleepy := &DisconnectPacket{HasDuration: true, Duration: 300}
	assert.Equal(t, sleepy, roundTrip(t, sleepy).(*DisconnectPacket))
}

func TestRoundTrip_WillUpdates(t *testing.T) {
	tu := &WilltopicupdPacket{QoS: 1, Topic: "status"}
	assert.Equal(t, tu, roundTrip(t, tu).(*WilltopicupdPacket))

	tr := &WilltopicrespPacket{ReturnCode: RCAccepted}
	assert.Equal(t, tr, roundTrip(t, tr).(*WilltopicrespPacket))

	mu := &WillmsgupdPacket{Message: []byte("gone")}
	assert.Equal(t, mu, roundTrip(t, mu).(*WillmsgupdPacket))

	mr := &WillmsgrespPacket{ReturnCode: RCAccepted}
	assert.Equal(t, mr, roundTrip(t, mr).(*WillmsgrespPacket))
}

func TestRoundTrip_GatewayDiscovery(t *testing.T) {
	adv := &AdvertisePacket{GatewayID: 1, Duration: 900}
	assert.Equal(t, adv, roundTrip(t, adv).(*AdvertisePacket))

	search := &SearchgwPacket{Radius: 1}
	assert.Equal(t, search, roundTrip(t, search).(*SearchgwPacket))

	info := &GwinfoPacket{GatewayID: 1, GwAddress: []byte{127, 0, 0, 1}}
	assert.Equal(t, info, roundTrip(t, info).(*GwinfoPacket))
}

func TestRoundTrip_QoS2Handshake(t *testing.T) {
	rec := &PubrecPacket{MsgID: 11}
	assert.Equal(t, rec, roundTrip(t, rec).(*PubrecPacket))

	rel := &PubrelPacket{MsgID: 11}
	assert.Equal(t, rel, roundTrip(t, rel).(*PubrelPacket))

	comp := &PubcompPacket{MsgID: 11}
	assert.Equal(t, comp, roundTrip(t, comp).(*PubcompPacket))
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte{0x02, 0x7F})
	assert.Error(t, err)
}

func TestDecode_Truncated(t *testing.T) {
	_, err := Decode([]byte{0x05, PUBLISH, 0x00})
	assert.Error(t, err)
}
