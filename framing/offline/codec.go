package offline

import (
	"bytes"
	"net/netip"

	"github.com/kelvare/rakdial/internal/bin"
)

// checkHeader validates the leading ID byte and the offline magic at the
// given offset.
func checkHeader(b []byte, id byte, magicOff int) error {
	if len(b) < magicOff+MagicSize {
		return ErrPacketTooShort
	}
	if b[0] != id {
		return ErrWrongID
	}
	if !bytes.Equal(b[magicOff:magicOff+MagicSize], magic[:]) {
		return ErrBadMagic
	}
	return nil
}

// EncodePing builds an unconnected ping: ID, send time (ms), magic, client GUID.
func EncodePing(sendTimeMillis int64, clientGUID uint64) []byte {
	b := make([]byte, 1+8+MagicSize+8)
	b[0] = IDUnconnectedPing
	bin.PutU64BE(b[1:9], uint64(sendTimeMillis))
	copy(b[9:9+MagicSize], magic[:])
	bin.PutU64BE(b[9+MagicSize:], clientGUID)
	return b
}

// DecodePing parses an unconnected ping.
func DecodePing(b []byte) (sendTimeMillis int64, clientGUID uint64, err error) {
	if err := checkHeader(b, IDUnconnectedPing, 9); err != nil {
		return 0, 0, err
	}
	if len(b) < 1+8+MagicSize+8 {
		return 0, 0, ErrPacketTooShort
	}
	return int64(bin.U64BE(b[1:9])), bin.U64BE(b[9+MagicSize:]), nil
}

// Pong is the decoded unconnected pong payload.
type Pong struct {
	SendTimeMillis int64
	ServerGUID     uint64
	Description    []byte // Advertised status string; not guaranteed valid UTF-8.
}

// pongPrefixLen is ID + send time + server GUID + description length.
const pongPrefixLen = 1 + 8 + 8 + 2

// EncodePong builds an unconnected pong. Used by simulated servers in tests;
// real servers produce the same layout.
func EncodePong(p Pong) []byte {
	b := make([]byte, pongPrefixLen+len(p.Description))
	b[0] = IDUnconnectedPong
	bin.PutU64BE(b[1:9], uint64(p.SendTimeMillis))
	bin.PutU64BE(b[9:17], p.ServerGUID)
	bin.PutU16BE(b[17:19], uint16(len(p.Description)))
	copy(b[pongPrefixLen:], p.Description)
	return b
}

// DecodePong parses an unconnected pong. The declared description length must
// fit inside the packet; the description bytes are returned as-is with no
// UTF-8 requirement.
func DecodePong(b []byte) (Pong, error) {
	if len(b) < pongPrefixLen {
		return Pong{}, ErrPacketTooShort
	}
	if b[0] != IDUnconnectedPong {
		return Pong{}, ErrWrongID
	}
	n := int(bin.U16BE(b[17:19]))
	if n > len(b)-pongPrefixLen {
		return Pong{}, ErrBadLength
	}
	desc := make([]byte, n)
	copy(desc, b[pongPrefixLen:pongPrefixLen+n])
	return Pong{
		SendTimeMillis: int64(bin.U64BE(b[1:9])),
		ServerGUID:     bin.U64BE(b[9:17]),
		Description:    desc,
	}, nil
}

// EncodeOpenConnectionRequest1 builds the first open-connection request:
// ID, magic, protocol version, zero padding out to probeSize to probe the
// path MTU. probeSize values at or below the unpadded length produce no
// padding.
func EncodeOpenConnectionRequest1(protocolVersion byte, probeSize int) []byte {
	const unpadded = 1 + MagicSize + 1
	size := probeSize
	if size < unpadded {
		size = unpadded
	}
	b := make([]byte, size)
	b[0] = IDOpenConnectionRequest1
	copy(b[1:1+MagicSize], magic[:])
	b[1+MagicSize] = protocolVersion
	return b
}

// DecodeOpenConnectionRequest1 parses the first open-connection request.
// Used by simulated servers in tests.
func DecodeOpenConnectionRequest1(b []byte) (protocolVersion byte, err error) {
	if err := checkHeader(b, IDOpenConnectionRequest1, 1); err != nil {
		return 0, err
	}
	if len(b) < 1+MagicSize+1 {
		return 0, ErrPacketTooShort
	}
	return b[1+MagicSize], nil
}

// DecodeOpenConnectionReply1 extracts the server MTU from the first reply.
// The MTU is carried in the trailing two bytes; the magic is validated when
// the packet is long enough to carry it.
func DecodeOpenConnectionReply1(b []byte) (mtu uint16, err error) {
	if len(b) < 1+2 {
		return 0, ErrPacketTooShort
	}
	if b[0] != IDOpenConnectionReply1 {
		return 0, ErrWrongID
	}
	if len(b) >= 1+MagicSize && !bytes.Equal(b[1:1+MagicSize], magic[:]) {
		return 0, ErrBadMagic
	}
	return bin.U16BE(b[len(b)-2:]), nil
}

// EncodeOpenConnectionReply1 builds the first reply: ID, magic, server GUID,
// security flag, MTU. Used by simulated servers in tests.
func EncodeOpenConnectionReply1(serverGUID uint64, mtu uint16) []byte {
	b := make([]byte, 1+MagicSize+8+1+2)
	b[0] = IDOpenConnectionReply1
	copy(b[1:1+MagicSize], magic[:])
	bin.PutU64BE(b[1+MagicSize:], serverGUID)
	bin.PutU16BE(b[len(b)-2:], mtu)
	return b
}

// EncodeOpenConnectionRequest2 builds the second open-connection request:
// ID, magic, server IPv4 address, server port, agreed MTU, client GUID.
// Non-IPv4 server addresses fail with ErrNotIPv4.
func EncodeOpenConnectionRequest2(server netip.AddrPort, mtu uint16, clientGUID uint64) ([]byte, error) {
	addr := server.Addr()
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	if !addr.Is4() {
		return nil, ErrNotIPv4
	}
	ip := addr.As4()
	b := make([]byte, 1+MagicSize+4+2+2+8)
	b[0] = IDOpenConnectionRequest2
	copy(b[1:1+MagicSize], magic[:])
	off := 1 + MagicSize
	copy(b[off:off+4], ip[:])
	bin.PutU16BE(b[off+4:off+6], server.Port())
	bin.PutU16BE(b[off+6:off+8], mtu)
	bin.PutU64BE(b[off+8:], clientGUID)
	return b, nil
}

// Request2 is the decoded second open-connection request. Used by simulated
// servers in tests.
type Request2 struct {
	Server     netip.AddrPort
	MTU        uint16
	ClientGUID uint64
}

// DecodeOpenConnectionRequest2 parses the second open-connection request.
func DecodeOpenConnectionRequest2(b []byte) (Request2, error) {
	if err := checkHeader(b, IDOpenConnectionRequest2, 1); err != nil {
		return Request2{}, err
	}
	if len(b) < 1+MagicSize+4+2+2+8 {
		return Request2{}, ErrPacketTooShort
	}
	off := 1 + MagicSize
	var ip [4]byte
	copy(ip[:], b[off:off+4])
	return Request2{
		Server:     netip.AddrPortFrom(netip.AddrFrom4(ip), bin.U16BE(b[off+4:off+6])),
		MTU:        bin.U16BE(b[off+6:off+8]),
		ClientGUID: bin.U64BE(b[off+8:]),
	}, nil
}

// Reply2 carries the informational fields of the second reply. None of them
// are required for the handshake to be considered successful.
type Reply2 struct {
	ServerGUID uint64
	MTU        uint16
	Security   bool
}

// DecodeOpenConnectionReply2 validates the second reply. Only the ID byte is
// required; the remaining fields are parsed when present so callers can log
// them, and their absence is not an error.
func DecodeOpenConnectionReply2(b []byte) (Reply2, error) {
	if len(b) < 1 {
		return Reply2{}, ErrPacketTooShort
	}
	if b[0] != IDOpenConnectionReply2 {
		return Reply2{}, ErrWrongID
	}
	if len(b) >= 1+MagicSize && !bytes.Equal(b[1:1+MagicSize], magic[:]) {
		return Reply2{}, ErrBadMagic
	}
	var r Reply2
	if len(b) >= 1+MagicSize+8 {
		r.ServerGUID = bin.U64BE(b[1+MagicSize : 1+MagicSize+8])
	}
	if len(b) >= 1+MagicSize+8+addrV4Size+2 {
		off := 1 + MagicSize + 8 + addrV4Size
		r.MTU = bin.U16BE(b[off : off+2])
		if len(b) > off+2 {
			r.Security = b[off+2] != 0
		}
	}
	return r, nil
}

// EncodeOpenConnectionReply2 builds the second reply: ID, magic, server GUID,
// client address, agreed MTU, security flag. Used by simulated servers in
// tests.
func EncodeOpenConnectionReply2(serverGUID uint64, client netip.AddrPort, mtu uint16, security bool) []byte {
	b := make([]byte, 1+MagicSize+8+addrV4Size+2+1)
	b[0] = IDOpenConnectionReply2
	copy(b[1:1+MagicSize], magic[:])
	bin.PutU64BE(b[1+MagicSize:], serverGUID)
	off := 1 + MagicSize + 8
	b[off] = 4 // address family
	if a := client.Addr(); a.Is4() || a.Is4In6() {
		ip := a.Unmap().As4()
		copy(b[off+1:off+5], ip[:])
	}
	bin.PutU16BE(b[off+5:off+7], client.Port())
	bin.PutU16BE(b[off+7:off+9], mtu)
	if security {
		b[off+9] = 1
	}
	return b
}

// EncodeLoginPlaceholder builds the placeholder login packet: ID, big-endian
// name length, UTF-8 name bytes.
//
// This is a hand-off artifact only. It carries no encryption or identity and
// real servers will reject or ignore it; a working login belongs to the
// session layer above this package.
func EncodeLoginPlaceholder(playerName string) []byte {
	name := []byte(playerName)
	b := make([]byte, 1+4+len(name))
	b[0] = IDLoginPlaceholder
	bin.PutU32BE(b[1:5], uint32(len(name)))
	copy(b[5:], name)
	return b
}
