package defaults

import "time"

const (
	// PingTimeout is the default wait for an unconnected pong.
	PingTimeout = 5 * time.Second
	// StepTimeout is the default wait for each open-connection reply.
	StepTimeout = 3 * time.Second
	// MTUProbeSize is the default padded size of the first open-connection request.
	MTUProbeSize = 1492
	// DrainCount is the default number of post-handshake datagrams read to
	// demonstrate session liveness before hand-off.
	DrainCount = 5
)

// Ports are the default candidate ports, in priority order: the commonly
// remapped Java-edition port first, then the well-known Bedrock port.
func Ports() []uint16 { return []uint16{25565, 19132} }

// ProtocolVersions are the default candidate RakNet protocol versions,
// newest first.
func ProtocolVersions() []byte { return []byte{11, 10, 9, 8} }
