package mqttsn

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Transport is the datagram transport a Session sends and receives on. The
// default implementation is UDP; tests substitute an in-memory pair.
type Transport interface {
	// Send writes one datagram.
	Send(data []byte) error

	// Receive reads at most one datagram, blocking no longer than timeout.
	// It returns (nil, nil) on a read timeout, which is not an error: the
	// poll loop treats it as "nothing arrived this tick".
	Receive(timeout time.Duration) ([]byte, error)

	Close() error
}

// udpTransport binds a UDP socket to a single gateway peer. MQTT-SN frames
// fit in one datagram, so there is no read-buffering beyond what the kernel
// socket provides.
type udpTransport struct {
	conn *net.UDPConn
}

// DialUDP resolves host:port and connects a UDP socket to it. "Connected"
// UDP just fixes the peer address for Write/Read; no handshake occurs.
func DialUDP(host string, port int) (Transport, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, errors.Join(ErrTransport, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, errors.Join(ErrTransport, err)
	}
	return &udpTransport{conn: conn}, nil
}

func (t *udpTransport) Send(data []byte) error {
	_, err := t.conn.Write(data)
	if err != nil {
		return errors.Join(ErrTransport, err)
	}
	return nil
}

func (t *udpTransport) Receive(timeout time.Duration) ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, errors.Join(ErrTransport, err)
	}
	buf := make([]byte, packetsMaxDatagram)
	n, err := t.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil
		}
		return nil, errors.Join(ErrTransport, err)
	}
	return buf[:n], nil
}

func (t *udpTransport) Close() error {
	return t.conn.Close()
}

// packetsMaxDatagram is the largest datagram the codec can ever produce
// (the same value as MaxPacketLength in internal/packets).
const packetsMaxDatagram = 65535
