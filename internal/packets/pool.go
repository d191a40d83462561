package packets

import "sync"

// bufferPool recycles scratch buffers used while encoding a packet. A
// single MQTT-SN datagram is capped at MaxPacketLength, but most control
// packets are tiny, so the pooled buffer is sized for the common case and
// anything larger just allocates.
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

// GetBuffer returns a zero-length scratch buffer from the pool.
func GetBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// PutBuffer returns a buffer to the pool. Buffers that grew past 4KB are
// dropped instead of pooled, so one oversized publish doesn't pin memory.
func PutBuffer(bufPtr *[]byte) {
	if cap(*bufPtr) > 4096 {
		return
	}
	*bufPtr = (*bufPtr)[:0]
	bufferPool.Put(bufPtr)
}
