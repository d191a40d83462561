package mqttsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wisprail/mqttsn/internal/packets"
)

func TestTopicRegistry_Classify(t *testing.T) {
	r := newTopicRegistry(map[string]uint16{"weather/forecast": 9, "wx": 10})

	assert.Equal(t, KindShort, r.classify("ab"))
	assert.Equal(t, KindPredefined, r.classify("weather/forecast"))
	assert.Equal(t, KindNormal, r.classify("mqttsn/test/pub_qos0"))
	// exactly 2 characters is SHORT even if it happens to collide with a
	// predefined name.
	assert.Equal(t, KindShort, r.classify("wx"))
}

func TestTopicRegistry_ShortNeverStored(t *testing.T) {
	r := newTopicRegistry(nil)
	id, ok := r.resolveName("ab", KindShort)
	assert.True(t, ok)
	assert.Equal(t, uint16('a')<<8|uint16('b'), id)
	assert.Len(t, r.normalByName, 0)
}

func TestTopicRegistry_PredefinedImmutable(t *testing.T) {
	r := newTopicRegistry(map[string]uint16{"status": 1})
	id, ok := r.resolveName("status", KindPredefined)
	assert.True(t, ok)
	assert.Equal(t, uint16(1), id)

	name, ok := r.resolveID(1, KindPredefined)
	assert.True(t, ok)
	assert.Equal(t, "status", name)
}

func TestTopicRegistry_RegisterAndResolveNormal(t *testing.T) {
	r := newTopicRegistry(nil)
	_, ok := r.resolveName("mqttsn/test/pub_qos0", KindNormal)
	assert.False(t, ok)

	r.registerLocal("mqttsn/test/pub_qos0", 42)

	id, ok := r.resolveName("mqttsn/test/pub_qos0", KindNormal)
	assert.True(t, ok)
	assert.Equal(t, uint16(42), id)

	name, ok := r.resolveID(42, KindNormal)
	assert.True(t, ok)
	assert.Equal(t, "mqttsn/test/pub_qos0", name)
}

func TestTopicRegistry_InvalidateNormal(t *testing.T) {
	r := newTopicRegistry(nil)
	r.registerLocal("a/b", 7)
	r.invalidateNormal("a/b")

	_, ok := r.resolveName("a/b", KindNormal)
	assert.False(t, ok)
	_, ok = r.resolveID(7, KindNormal)
	assert.False(t, ok)
}

func TestTopicRegistry_ClearNormal(t *testing.T) {
	r := newTopicRegistry(map[string]uint16{"status": 1})
	r.registerLocal("a/b", 7)
	r.registerLocal("c/d", 8)

	r.clearNormal()

	_, ok := r.resolveName("a/b", KindNormal)
	assert.False(t, ok)
	_, ok = r.resolveName("c/d", KindNormal)
	assert.False(t, ok)
	// predefined entries survive a clear.
	id, ok := r.resolveName("status", KindPredefined)
	assert.True(t, ok)
	assert.Equal(t, uint16(1), id)
}

func TestShortID_PacksBigEndian(t *testing.T) {
	assert.Equal(t, uint16(0x6162), shortID("ab"))
}

func TestTopicRegistry_ResolveID_ShortDecodesWithoutStorage(t *testing.T) {
	r := newTopicRegistry(nil)
	name, ok := r.resolveID(uint16('x')<<8|uint16('y'), KindShort)
	assert.True(t, ok)
	assert.Equal(t, "xy", name)
}

func TestTopicKindAliasesMatchPacketsPackage(t *testing.T) {
	assert.Equal(t, packets.TopicNormal, KindNormal)
	assert.Equal(t, packets.TopicPredefined, KindPredefined)
	assert.Equal(t, packets.TopicShort, KindShort)
}
