// Package handshake drives the two-step RakNet open-connection sequence for a
// single (address, protocol version) candidate.
//
// The negotiation is a small terminal state machine: request1 is sent and
// fully resolved before request2 goes out, each wait is bounded, and every
// failure is classified per step. There is no in-place retry; retrying is the
// scheduler's job, one candidate at a time.
package handshake

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/kelvare/rakdial/framing/offline"
	"github.com/kelvare/rakdial/internal/contextutil"
	"github.com/kelvare/rakdial/internal/defaults"
	"github.com/kelvare/rakdial/internal/guid"
	"github.com/kelvare/rakdial/observability"
	"github.com/kelvare/rakdial/rderrors"
	"github.com/kelvare/rakdial/transport/udp"
)

// Options configures a single negotiation attempt.
type Options struct {
	StepTimeout  time.Duration // Wait per reply; 0 uses the library default.
	MTUProbeSize int           // Padded size of request1; 0 uses the default 1492.

	// PlayerName, when non-empty, triggers the placeholder login send after
	// the handshake establishes. The packet is a documented hand-off artifact
	// with no real identity attached.
	PlayerName string

	// DrainCount bounds the post-handshake reads that demonstrate session
	// liveness. Negative disables the drain; 0 uses the library default.
	DrainCount int

	Observer observability.Observer
}

// Negotiate runs the open-connection handshake against one candidate and
// returns an established Connection or a classified *rderrors.Error.
func Negotiate(ctx context.Context, server netip.AddrPort, protocolVersion byte, opts Options) (*Connection, error) {
	obs := opts.Observer
	if obs == nil {
		obs = observability.NoopObserver
	}
	stepTimeout := opts.StepTimeout
	if stepTimeout == 0 {
		stepTimeout = defaults.StepTimeout
	}
	probeSize := opts.MTUProbeSize
	if probeSize == 0 {
		probeSize = defaults.MTUProbeSize
	}

	port := server.Port()
	obs.CandidateStart(port, protocolVersion)

	fail := func(step observability.Step, stage rderrors.Stage, code rderrors.Code, d time.Duration, err error) (*Connection, error) {
		obs.Step(port, protocolVersion, step, observability.StepResultFail, observability.Reason(code), d)
		obs.CandidateDone(port, protocolVersion, observability.CandidateResultFailed, observability.Reason(code))
		return nil, rderrors.Wrap(stage, code, err)
	}

	addr := server.Addr()
	if addr.Is4In6() {
		addr = addr.Unmap()
		server = netip.AddrPortFrom(addr, port)
	}
	if !addr.Is4() {
		return fail(observability.StepRequest1, rderrors.StageValidate, rderrors.CodeUnsupportedAddress, 0, offline.ErrNotIPv4)
	}

	conn, err := udp.Dial(server)
	if err != nil {
		return fail(observability.StepRequest1, rderrors.StageRequest1, rderrors.CodeSocketFailed, 0, err)
	}
	established := false
	defer func() {
		if !established {
			conn.Close()
		}
	}()

	clientGUID, err := guid.Random()
	if err != nil {
		return fail(observability.StepRequest1, rderrors.StageRequest1, rderrors.CodeRandomFailed, 0, err)
	}

	// START → WAIT_REPLY1.
	start := time.Now()
	if err := conn.Send(offline.EncodeOpenConnectionRequest1(protocolVersion, probeSize)); err != nil {
		return fail(observability.StepRequest1, rderrors.StageRequest1, rderrors.CodeSendFailed, 0, err)
	}
	obs.Step(port, protocolVersion, observability.StepRequest1, observability.StepResultOK, observability.ReasonNone, 0)

	data, err := awaitReply(ctx, conn, stepTimeout, offline.IDOpenConnectionReply1)
	if err != nil {
		code := replyFailCode(err)
		return fail(observability.StepReply1, rderrors.StageReply1, code, time.Since(start), err)
	}
	mtu, err := offline.DecodeOpenConnectionReply1(data)
	if err != nil {
		return fail(observability.StepReply1, rderrors.StageReply1, rderrors.ClassifyDecodeCode(err), time.Since(start), err)
	}
	if int(mtu) < offline.MinMTUSize {
		return fail(observability.StepReply1, rderrors.StageReply1, rderrors.CodeMTUBelowMinimum, time.Since(start), nil)
	}
	if int(mtu) > probeSize {
		mtu = uint16(probeSize)
	}
	obs.Step(port, protocolVersion, observability.StepReply1, observability.StepResultOK, observability.ReasonNone, time.Since(start))

	// WAIT_REPLY1 → WAIT_REPLY2.
	start = time.Now()
	req2, err := offline.EncodeOpenConnectionRequest2(server, mtu, clientGUID)
	if err != nil {
		return fail(observability.StepRequest2, rderrors.StageRequest2, rderrors.ClassifyDecodeCode(err), 0, err)
	}
	if err := conn.Send(req2); err != nil {
		return fail(observability.StepRequest2, rderrors.StageRequest2, rderrors.CodeSendFailed, 0, err)
	}
	obs.Step(port, protocolVersion, observability.StepRequest2, observability.StepResultOK, observability.ReasonNone, 0)

	data, err = awaitReply(ctx, conn, stepTimeout, offline.IDOpenConnectionReply2)
	if err != nil {
		code := replyFailCode(err)
		return fail(observability.StepReply2, rderrors.StageReply2, code, time.Since(start), err)
	}
	reply2, err := offline.DecodeOpenConnectionReply2(data)
	if err != nil {
		return fail(observability.StepReply2, rderrors.StageReply2, rderrors.ClassifyDecodeCode(err), time.Since(start), err)
	}
	obs.Step(port, protocolVersion, observability.StepReply2, observability.StepResultOK, observability.ReasonNone, time.Since(start))

	// ESTABLISHED.
	established = true
	c := &Connection{
		Server:          server,
		ProtocolVersion: protocolVersion,
		MTU:             mtu,
		ClientGUID:      clientGUID,
		ServerGUID:      reply2.ServerGUID,
		conn:            conn,
	}
	obs.CandidateDone(port, protocolVersion, observability.CandidateResultEstablished, observability.ReasonNone)

	if opts.PlayerName != "" {
		if err := c.Send(offline.EncodeLoginPlaceholder(opts.PlayerName)); err != nil {
			obs.Step(port, protocolVersion, observability.StepLogin, observability.StepResultFail, observability.Reason(rderrors.CodeSendFailed), 0)
		} else {
			obs.Step(port, protocolVersion, observability.StepLogin, observability.StepResultOK, observability.ReasonNone, 0)
		}
	}

	drainCount := opts.DrainCount
	if drainCount == 0 {
		drainCount = defaults.DrainCount
	}
	for i := 0; i < drainCount && ctx.Err() == nil; i++ {
		recvCtx, cancel := contextutil.WithTimeout(ctx, stepTimeout)
		b, _, err := conn.Receive(recvCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				continue
			}
			break
		}
		if len(b) == 0 {
			continue
		}
		c.Drained = append(c.Drained, b)
		obs.Drained(port, protocolVersion, b[0], len(b))
	}

	return c, nil
}

// awaitReply receives datagrams until one carries the wanted offline ID, the
// step deadline elapses, or the parent context is canceled. Datagrams outside
// the offline handshake family are foreign traffic and are dropped silently;
// a recognized handshake ID other than the wanted one ends the step.
func awaitReply(ctx context.Context, conn *udp.Conn, timeout time.Duration, wantID byte) ([]byte, error) {
	recvCtx, cancel := contextutil.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		data, _, err := conn.Receive(recvCtx)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		id := data[0]
		if id == wantID {
			return data, nil
		}
		if !offline.KnownID(id) {
			continue
		}
		if id == offline.IDIncompatibleProtocolVersion {
			return nil, errIncompatibleProtocol
		}
		return nil, offline.ErrWrongID
	}
}

var errIncompatibleProtocol = errors.New("handshake: server reports incompatible protocol version")

// replyFailCode classifies an awaitReply error.
func replyFailCode(err error) rderrors.Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return rderrors.CodeTimeout
	case errors.Is(err, context.Canceled):
		return rderrors.CodeCanceled
	case errors.Is(err, errIncompatibleProtocol):
		return rderrors.CodeIncompatibleProtocol
	case errors.Is(err, offline.ErrWrongID):
		return rderrors.CodeUnexpectedResponse
	default:
		return rderrors.CodeSocketFailed
	}
}
