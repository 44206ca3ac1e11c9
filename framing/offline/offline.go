// Package offline implements the fixed binary layouts of the RakNet offline
// message family used before a session exists: unconnected ping/pong and the
// two-step open-connection exchange.
//
// All multi-byte integer fields are big-endian. Encode/decode functions are
// pure and perform no I/O.
package offline

import "errors"

// Offline message IDs.
const (
	IDUnconnectedPing             byte = 0x01
	IDUnconnectedPong             byte = 0x1c
	IDOpenConnectionRequest1      byte = 0x05
	IDOpenConnectionReply1        byte = 0x06
	IDOpenConnectionRequest2      byte = 0x07
	IDOpenConnectionReply2        byte = 0x08
	IDIncompatibleProtocolVersion byte = 0x19

	// IDLoginPlaceholder is the non-functional login packet ID handed to the
	// session layer after the handshake. Real servers will reject or ignore it.
	IDLoginPlaceholder byte = 0x8f
)

// MagicSize is the length of the offline message data ID.
const MagicSize = 16

// magic is the offline message data ID that prefixes every offline message
// body. Inbound packets missing it are foreign traffic, not RakNet.
var magic = [MagicSize]byte{
	0x00, 0xff, 0xff, 0x00, 0xfe, 0xfe, 0xfe, 0xfe,
	0xfd, 0xfd, 0xfd, 0xfd, 0x12, 0x34, 0x56, 0x78,
}

// Magic returns a copy of the offline message data ID.
func Magic() [MagicSize]byte { return magic }

const (
	// DefaultMTUProbeSize is the total size of the first open-connection
	// request, padded out to probe the path MTU.
	DefaultMTUProbeSize = 1492

	// addrV4Size is the encoded size of an IPv4 address: family byte, four
	// address bytes, two port bytes.
	addrV4Size = 1 + 4 + 2

	// MinMTUSize is the smallest MTU a reply may carry and still fit a
	// header, the magic, and an encoded address.
	MinMTUSize = 1 + MagicSize + addrV4Size
)

var (
	ErrPacketTooShort = errors.New("offline: packet too short")
	ErrBadMagic       = errors.New("offline: bad offline message magic")
	ErrWrongID        = errors.New("offline: unexpected message id")
	ErrNotIPv4        = errors.New("offline: server address is not IPv4")
	ErrBadLength      = errors.New("offline: declared length exceeds packet")
)

// KnownID reports whether id belongs to the offline handshake family.
// Unknown inbound IDs are dropped by callers, never treated as fatal.
func KnownID(id byte) bool {
	switch id {
	case IDUnconnectedPing, IDUnconnectedPong,
		IDOpenConnectionRequest1, IDOpenConnectionReply1,
		IDOpenConnectionRequest2, IDOpenConnectionReply2,
		IDIncompatibleProtocolVersion:
		return true
	}
	return false
}
