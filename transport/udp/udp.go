// Package udp wraps a single UDP socket with context-aware receive semantics
// for one handshake attempt.
package udp

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"
)

// maxDatagramSize bounds a single inbound read. Offline replies are far
// smaller; the headroom covers oversized advertised status strings.
const maxDatagramSize = 2048

// Conn owns one UDP socket bound to an ephemeral local port. Each handshake
// attempt uses a fresh Conn so responses from distinct candidates can never
// be confused.
type Conn struct {
	pc     *net.UDPConn
	remote netip.AddrPort

	closeOnce sync.Once
	closeErr  error
}

// Dial binds an ephemeral IPv4 UDP socket associated with the given remote.
// No packets are exchanged; UDP has no connection setup.
func Dial(remote netip.AddrPort) (*Conn, error) {
	pc, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, err
	}
	return &Conn{pc: pc, remote: remote}, nil
}

// Remote returns the address datagrams are sent to.
func (c *Conn) Remote() netip.AddrPort { return c.remote }

// LocalAddr returns the bound local address.
func (c *Conn) LocalAddr() net.Addr { return c.pc.LocalAddr() }

// Send transmits one datagram to the remote. Fire-and-forget: a nil return
// means the datagram left the socket, not that it was delivered.
func (c *Conn) Send(b []byte) error {
	_, err := c.pc.WriteToUDPAddrPort(b, c.remote)
	return err
}

// Receive blocks until a datagram arrives, the context deadline elapses, or
// the context is canceled. Socket deadlines are mapped back to ctx.Err() so
// callers see context.DeadlineExceeded / context.Canceled rather than raw
// net timeouts.
func (c *Conn) Receive(ctx context.Context) ([]byte, netip.AddrPort, error) {
	if err := ctx.Err(); err != nil {
		return nil, netip.AddrPort{}, err
	}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		_ = c.pc.SetReadDeadline(deadline)
	} else {
		_ = c.pc.SetReadDeadline(time.Time{})
	}
	// ReadFromUDPAddrPort does not unblock on context cancellation by itself.
	// When the context fires, force the in-flight read to wake up promptly and
	// map the resulting I/O timeout back to ctx.Err().
	if ctx.Done() != nil {
		var active atomic.Bool
		active.Store(true)
		stop := context.AfterFunc(ctx, func() {
			if !active.Load() {
				return
			}
			_ = c.pc.SetReadDeadline(time.Now())
		})
		defer func() {
			active.Store(false)
			stop()
		}()
	}
	buf := make([]byte, maxDatagramSize)
	n, from, err := c.pc.ReadFromUDPAddrPort(buf)
	if err == nil {
		return buf[:n], from, nil
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		if cerr := ctx.Err(); cerr != nil {
			return nil, netip.AddrPort{}, cerr
		}
		if hasDeadline && !time.Now().Before(deadline) {
			return nil, netip.AddrPort{}, context.DeadlineExceeded
		}
	}
	return nil, netip.AddrPort{}, err
}

// Close releases the socket. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.pc.Close()
	})
	return c.closeErr
}
