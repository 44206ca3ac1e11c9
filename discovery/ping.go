// Package discovery probes a RakNet server address with an unconnected ping
// to determine liveness and read the advertised status string.
package discovery

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/kelvare/rakdial/framing/offline"
	"github.com/kelvare/rakdial/internal/contextutil"
	"github.com/kelvare/rakdial/internal/defaults"
	"github.com/kelvare/rakdial/internal/guid"
	"github.com/kelvare/rakdial/rderrors"
	"github.com/kelvare/rakdial/transport/udp"
)

// Options configures a single ping probe.
type Options struct {
	Timeout time.Duration // Wait for the pong; 0 uses the library default.
}

// Ping sends one unconnected ping and waits once for the pong.
//
// No response within the timeout returns online=false with a nil error:
// servers commonly ignore unknown clients, so silence is not a failure. A
// response that is not a well-formed pong returns online=false together with
// a classified error for diagnostics.
func Ping(ctx context.Context, server netip.AddrPort, opts Options) (online bool, status *Status, err error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaults.PingTimeout
	}

	conn, err := udp.Dial(server)
	if err != nil {
		return false, nil, rderrors.Wrap(rderrors.StagePing, rderrors.CodeSocketFailed, err)
	}
	defer conn.Close()

	clientGUID, err := guid.Random()
	if err != nil {
		return false, nil, rderrors.Wrap(rderrors.StagePing, rderrors.CodeRandomFailed, err)
	}

	start := time.Now()
	if err := conn.Send(offline.EncodePing(start.UnixMilli(), clientGUID)); err != nil {
		return false, nil, rderrors.Wrap(rderrors.StagePing, rderrors.CodeSendFailed, err)
	}

	recvCtx, cancel := contextutil.WithTimeout(ctx, timeout)
	defer cancel()
	data, _, err := conn.Receive(recvCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return false, nil, nil
		}
		return false, nil, rderrors.Wrap(rderrors.StagePing, rderrors.ClassifyReceiveCode(err), err)
	}

	pong, err := offline.DecodePong(data)
	if err != nil {
		return false, nil, rderrors.Wrap(rderrors.StagePing, rderrors.ClassifyDecodeCode(err), err)
	}

	s := ParseStatus(pong.Description)
	s.ServerGUID = pong.ServerGUID
	s.RTT = time.Since(start)
	return true, &s, nil
}
