package handshake

import (
	"context"
	"net/netip"

	"github.com/kelvare/rakdial/transport/udp"
)

// Connection is the artifact of a successful open-connection handshake. It is
// handed to the session layer, which owns the socket exclusively from then
// on; the negotiator never reads from it after hand-off.
type Connection struct {
	Server          netip.AddrPort
	ProtocolVersion byte
	MTU             uint16
	ClientGUID      uint64
	ServerGUID      uint64 // Informational, taken from the second reply when present.

	// Drained holds the raw bytes of datagrams observed during the bounded
	// post-handshake drain, uninterpreted. Interpretation belongs to the
	// session layer.
	Drained [][]byte

	conn *udp.Conn
}

// Send transmits one datagram to the server.
func (c *Connection) Send(b []byte) error { return c.conn.Send(b) }

// Receive blocks for the next datagram from the server.
func (c *Connection) Receive(ctx context.Context) ([]byte, error) {
	b, _, err := c.conn.Receive(ctx)
	return b, err
}

// Close releases the underlying socket. Idempotent.
func (c *Connection) Close() error { return c.conn.Close() }
