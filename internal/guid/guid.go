// Package guid generates client GUIDs for handshake attempts.
package guid

import (
	"crypto/rand"
	"encoding/binary"
)

// Random returns a fresh 64-bit client GUID. Each handshake attempt gets its
// own value so concurrent candidates never collide in server-side GUID caches.
func Random() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
