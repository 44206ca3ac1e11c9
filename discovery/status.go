package discovery

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the advertised state of a pinged server. Every field beyond Raw
// is best-effort metadata: servers are free to advertise arbitrary bytes and
// a partially parsed status is never an error.
type Status struct {
	ServerGUID uint64
	RTT        time.Duration

	Raw  []byte // Description bytes exactly as received.
	Text string // UTF-8 form of Raw; empty when Raw is not valid UTF-8.

	// Fields parsed from the semicolon-separated "MCPE;..." status format.
	MOTD       string
	Protocol   int
	Version    string
	Players    int
	MaxPlayers int
}

// ParseStatus decodes an advertised description. Invalid UTF-8 keeps the raw
// bytes and falls back to scanning for a version marker; it never fails.
func ParseStatus(raw []byte) Status {
	s := Status{Raw: raw}
	if !utf8.Valid(raw) {
		s.Version = scanVersionMarker(raw)
		return s
	}
	s.Text = string(raw)

	// MCPE;<motd>;<protocol>;<version>;<players>;<max>;... and servers append
	// extra fields freely, so only the known prefix is interpreted.
	fields := strings.Split(s.Text, ";")
	if len(fields) < 4 || fields[0] != "MCPE" {
		s.Version = scanVersionMarker(raw)
		return s
	}
	s.MOTD = fields[1]
	s.Protocol, _ = strconv.Atoi(fields[2])
	s.Version = fields[3]
	if len(fields) >= 6 {
		s.Players, _ = strconv.Atoi(fields[4])
		s.MaxPlayers, _ = strconv.Atoi(fields[5])
	}
	return s
}

// scanVersionMarker looks for a dotted numeric run like "1.21.71" inside
// arbitrary bytes. Returns "" when nothing version-shaped is present.
func scanVersionMarker(raw []byte) string {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			continue
		}
		j, dots := i, 0
		for j < len(raw) && (raw[j] >= '0' && raw[j] <= '9' || raw[j] == '.') {
			if raw[j] == '.' {
				dots++
			}
			j++
		}
		// Trim a trailing dot so "1.21." yields "1.21".
		end := j
		if end > i && raw[end-1] == '.' {
			end--
			dots--
		}
		if dots >= 1 && end-i >= 3 {
			return string(raw[i:end])
		}
		i = j
	}
	return ""
}
