// Package client schedules candidate (port, protocol version) handshake
// attempts against a RakNet server and hands back the first established
// connection.
package client

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"time"

	"github.com/kelvare/rakdial/discovery"
	"github.com/kelvare/rakdial/handshake"
	"github.com/kelvare/rakdial/internal/defaults"
	"github.com/kelvare/rakdial/observability"
	"github.com/kelvare/rakdial/rderrors"
)

// Config identifies the server and the candidate search space.
type Config struct {
	// Host is the server name or IPv4 address literal. Required.
	Host string
	// Ports are tried in priority order. Empty uses the library defaults.
	Ports []uint16
	// ProtocolVersions are tried in the given order; list them newest first.
	// Empty uses the library defaults.
	ProtocolVersions []byte
	// PlayerName, when non-empty, triggers the placeholder login send on the
	// winning candidate.
	PlayerName string
}

type candidate struct {
	port    uint16
	version byte
}

// Connect pings the candidate ports to find a live one, then walks the
// port x version matrix until a handshake establishes.
//
// A port that answers the ping restricts the handshake search to it; when no
// port answers, the full matrix is still attempted, because the absence of a
// pong is not proof of the absence of a server. On total failure the returned
// error wraps an *ExhaustedError carrying every per-candidate failure.
// Only exhaustion and cancellation escape; per-candidate failures are
// reported through the observer.
func Connect(ctx context.Context, cfg Config, opts ...ConnectOption) (*handshake.Connection, error) {
	o, err := applyConnectOptions(opts)
	if err != nil {
		return nil, rderrors.Wrap(rderrors.StageValidate, rderrors.CodeInvalidOption, err)
	}
	if cfg.Host == "" {
		return nil, rderrors.Wrap(rderrors.StageValidate, rderrors.CodeMissingHost, ErrMissingHost)
	}
	ports := cfg.Ports
	if len(ports) == 0 {
		ports = defaults.Ports()
	}
	versions := cfg.ProtocolVersions
	if len(versions) == 0 {
		versions = defaults.ProtocolVersions()
	}

	addr, err := ResolveIPv4(ctx, cfg.Host)
	if err != nil {
		return nil, rderrors.Wrap(rderrors.StageValidate, rderrors.CodeResolveFailed, err)
	}

	obs := o.observer
	start := time.Now()

	// Discovery pass: first port that answers becomes the working port.
	workingPort, found := uint16(0), false
	for _, port := range ports {
		if ctx.Err() != nil {
			obs.ConnectDone(observability.ConnectResultCanceled, 0, time.Since(start))
			return nil, rderrors.Wrap(rderrors.StageConnect, rderrors.CodeCanceled, ctx.Err())
		}
		online, status, pingErr := discovery.Ping(ctx, netip.AddrPortFrom(addr, port), discovery.Options{Timeout: o.pingTimeout})
		obs.Ping(port, pingResult(online, pingErr), pingRTT(status))
		if online {
			workingPort, found = port, true
			break
		}
	}

	searchPorts := ports
	if found {
		searchPorts = []uint16{workingPort}
	}
	candidates := make([]candidate, 0, len(searchPorts)*len(versions))
	for _, port := range searchPorts {
		for _, v := range versions {
			candidates = append(candidates, candidate{port: port, version: v})
		}
	}

	negotiate := func(ctx context.Context, c candidate) (*handshake.Connection, error) {
		return handshake.Negotiate(ctx, netip.AddrPortFrom(addr, c.port), c.version, handshake.Options{
			StepTimeout:  o.stepTimeout,
			MTUProbeSize: o.mtuProbeSize,
			PlayerName:   cfg.PlayerName,
			DrainCount:   o.drainCount,
			Observer:     obs,
		})
	}

	var conn *handshake.Connection
	var failures []CandidateFailure
	if o.maxInFlight <= 1 {
		conn, failures, err = runSequential(ctx, candidates, negotiate)
	} else {
		conn, failures, err = runFanOut(ctx, candidates, o.maxInFlight, negotiate)
	}
	if err != nil {
		obs.ConnectDone(observability.ConnectResultCanceled, len(failures), time.Since(start))
		return nil, err
	}
	if conn != nil {
		obs.ConnectDone(observability.ConnectResultOK, len(failures)+1, time.Since(start))
		return conn, nil
	}
	obs.ConnectDone(observability.ConnectResultExhausted, len(failures), time.Since(start))
	return nil, rderrors.Wrap(rderrors.StageConnect, rderrors.CodeExhaustedCandidates, &ExhaustedError{Failures: failures})
}

// runSequential walks candidates one at a time, stopping at the first
// established connection.
func runSequential(ctx context.Context, candidates []candidate, negotiate func(context.Context, candidate) (*handshake.Connection, error)) (*handshake.Connection, []CandidateFailure, error) {
	var failures []CandidateFailure
	for _, c := range candidates {
		if ctx.Err() != nil {
			return nil, failures, rderrors.Wrap(rderrors.StageConnect, rderrors.CodeCanceled, ctx.Err())
		}
		conn, err := negotiate(ctx, c)
		if err == nil {
			return conn, failures, nil
		}
		if ctx.Err() != nil {
			return nil, failures, rderrors.Wrap(rderrors.StageConnect, rderrors.CodeCanceled, ctx.Err())
		}
		failures = append(failures, toFailure(c, err))
	}
	return nil, failures, nil
}

// runFanOut tries candidates with bounded concurrency; the first success
// cancels every other in-flight attempt. Late winners are closed so the
// caller receives exactly one live socket.
func runFanOut(ctx context.Context, candidates []candidate, maxInFlight int, negotiate func(context.Context, candidate) (*handshake.Connection, error)) (*handshake.Connection, []CandidateFailure, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		idx  int
		conn *handshake.Connection
		err  error
	}
	sem := make(chan struct{}, maxInFlight)
	results := make(chan result, len(candidates))
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(idx int, c candidate) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-attemptCtx.Done():
				results <- result{idx: idx, err: rderrors.Wrap(rderrors.StageConnect, rderrors.CodeCanceled, attemptCtx.Err())}
				return
			}
			defer func() { <-sem }()
			conn, err := negotiate(attemptCtx, c)
			results <- result{idx: idx, conn: conn, err: err}
		}(i, c)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var winner *handshake.Connection
	failed := make(map[int]CandidateFailure, len(candidates))
	for r := range results {
		switch {
		case r.conn != nil && winner == nil:
			winner = r.conn
			cancel()
		case r.conn != nil:
			_ = r.conn.Close()
		default:
			failed[r.idx] = toFailure(candidates[r.idx], r.err)
		}
	}

	failures := make([]CandidateFailure, 0, len(failed))
	for i := range candidates {
		if f, ok := failed[i]; ok {
			failures = append(failures, f)
		}
	}
	if winner != nil {
		return winner, failures, nil
	}
	if ctx.Err() != nil {
		return nil, failures, rderrors.Wrap(rderrors.StageConnect, rderrors.CodeCanceled, ctx.Err())
	}
	return nil, failures, nil
}

func toFailure(c candidate, err error) CandidateFailure {
	f := CandidateFailure{Port: c.port, ProtocolVersion: c.version, Stage: rderrors.StageConnect, Code: rderrors.CodeSocketFailed, Err: err}
	var re *rderrors.Error
	if errors.As(err, &re) {
		f.Stage, f.Code = re.Stage, re.Code
	}
	return f
}

// ResolveIPv4 resolves host to an IPv4 address. Literal addresses skip DNS;
// hosts without an IPv4 address fail with ErrNoIPv4Address, since the wire
// format cannot encode anything else.
func ResolveIPv4(ctx context.Context, host string) (netip.Addr, error) {
	if a, err := netip.ParseAddr(host); err == nil {
		if a.Is4In6() {
			a = a.Unmap()
		}
		if !a.Is4() {
			return netip.Addr{}, ErrNoIPv4Address
		}
		return a, nil
	}
	addrs, err := resolver().LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, err
	}
	for _, a := range addrs {
		if a.Is4In6() {
			a = a.Unmap()
		}
		if a.Is4() {
			return a, nil
		}
	}
	return netip.Addr{}, ErrNoIPv4Address
}

func pingResult(online bool, err error) observability.PingResult {
	if online {
		return observability.PingResultOK
	}
	if err == nil {
		return observability.PingResultTimeout
	}
	var re *rderrors.Error
	if errors.As(err, &re) && re.Code == rderrors.CodeUnexpectedResponse {
		return observability.PingResultUnexpected
	}
	return observability.PingResultError
}

func pingRTT(s *discovery.Status) time.Duration {
	if s == nil {
		return 0
	}
	return s.RTT
}
