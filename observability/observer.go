// Package observability defines the structured event stream emitted during
// server discovery and handshake negotiation. The library itself never logs;
// callers plug in an Observer to consume candidate attempts, per-step
// outcomes, and final results without parsing free text.
package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

type PingResult string

const (
	PingResultOK         PingResult = "ok"
	PingResultTimeout    PingResult = "timeout"
	PingResultUnexpected PingResult = "unexpected_response"
	PingResultError      PingResult = "error"
)

type Step string

const (
	StepRequest1 Step = "request1"
	StepReply1   Step = "reply1"
	StepRequest2 Step = "request2"
	StepReply2   Step = "reply2"
	StepLogin    Step = "login"
)

type StepResult string

const (
	StepResultOK   StepResult = "ok"
	StepResultFail StepResult = "fail"
)

type CandidateResult string

const (
	CandidateResultEstablished CandidateResult = "established"
	CandidateResultFailed      CandidateResult = "failed"
)

type ConnectResult string

const (
	ConnectResultOK        ConnectResult = "ok"
	ConnectResultExhausted ConnectResult = "exhausted"
	ConnectResultCanceled  ConnectResult = "canceled"
)

// Reason is a stable failure identifier; values mirror the rderrors codes.
type Reason string

const ReasonNone Reason = ""

// Observer receives discovery and handshake events.
type Observer interface {
	Ping(port uint16, result PingResult, rtt time.Duration)
	CandidateStart(port uint16, version byte)
	Step(port uint16, version byte, step Step, result StepResult, reason Reason, d time.Duration)
	CandidateDone(port uint16, version byte, result CandidateResult, reason Reason)
	Drained(port uint16, version byte, packetID byte, size int)
	ConnectDone(result ConnectResult, candidatesTried int, d time.Duration)
}

type noopObserver struct{}

func (noopObserver) Ping(uint16, PingResult, time.Duration)                     {}
func (noopObserver) CandidateStart(uint16, byte)                                {}
func (noopObserver) Step(uint16, byte, Step, StepResult, Reason, time.Duration) {}
func (noopObserver) CandidateDone(uint16, byte, CandidateResult, Reason)        {}
func (noopObserver) Drained(uint16, byte, byte, int)                            {}
func (noopObserver) ConnectDone(ConnectResult, int, time.Duration)              {}

// NoopObserver is a zero-cost observer used when diagnostics are disabled.
var NoopObserver Observer = noopObserver{}

// AtomicObserver swaps its delegate at runtime.
type AtomicObserver struct {
	once sync.Once
	v    atomic.Value
}

type observerHolder struct {
	obs Observer
}

// NewAtomicObserver returns an initialized atomic observer.
func NewAtomicObserver() *AtomicObserver {
	a := &AtomicObserver{}
	a.once.Do(func() { a.v.Store(&observerHolder{obs: NoopObserver}) })
	return a
}

// Set replaces the delegate, falling back to the no-op observer on nil.
func (a *AtomicObserver) Set(obs Observer) {
	if obs == nil {
		obs = NoopObserver
	}
	a.once.Do(func() { a.v.Store(&observerHolder{obs: NoopObserver}) })
	a.v.Store(&observerHolder{obs: obs})
}

func (a *AtomicObserver) load() Observer {
	a.once.Do(func() { a.v.Store(&observerHolder{obs: NoopObserver}) })
	return a.v.Load().(*observerHolder).obs
}

func (a *AtomicObserver) Ping(port uint16, result PingResult, rtt time.Duration) {
	a.load().Ping(port, result, rtt)
}
func (a *AtomicObserver) CandidateStart(port uint16, version byte) {
	a.load().CandidateStart(port, version)
}
func (a *AtomicObserver) Step(port uint16, version byte, step Step, result StepResult, reason Reason, d time.Duration) {
	a.load().Step(port, version, step, result, reason, d)
}
func (a *AtomicObserver) CandidateDone(port uint16, version byte, result CandidateResult, reason Reason) {
	a.load().CandidateDone(port, version, result, reason)
}
func (a *AtomicObserver) Drained(port uint16, version byte, packetID byte, size int) {
	a.load().Drained(port, version, packetID, size)
}
func (a *AtomicObserver) ConnectDone(result ConnectResult, candidatesTried int, d time.Duration) {
	a.load().ConnectDone(result, candidatesTried, d)
}
