package observability

import (
	"testing"
	"time"
)

type countingObserver struct {
	pings, steps, candidates, drained, connects int
}

func (c *countingObserver) Ping(uint16, PingResult, time.Duration) { c.pings++ }
func (c *countingObserver) CandidateStart(uint16, byte)            {}
func (c *countingObserver) Step(uint16, byte, Step, StepResult, Reason, time.Duration) {
	c.steps++
}
func (c *countingObserver) CandidateDone(uint16, byte, CandidateResult, Reason) { c.candidates++ }
func (c *countingObserver) Drained(uint16, byte, byte, int)                     { c.drained++ }
func (c *countingObserver) ConnectDone(ConnectResult, int, time.Duration)       { c.connects++ }

func emitAll(obs Observer) {
	obs.Ping(19132, PingResultOK, time.Millisecond)
	obs.CandidateStart(19132, 11)
	obs.Step(19132, 11, StepReply1, StepResultOK, ReasonNone, time.Millisecond)
	obs.CandidateDone(19132, 11, CandidateResultEstablished, ReasonNone)
	obs.Drained(19132, 11, 0x84, 32)
	obs.ConnectDone(ConnectResultOK, 1, time.Millisecond)
}

func TestNoopObserverIsSafe(t *testing.T) {
	emitAll(NoopObserver)
}

func TestAtomicObserverZeroValueIsNoop(t *testing.T) {
	var a AtomicObserver
	emitAll(&a)
}

func TestAtomicObserverSwap(t *testing.T) {
	a := NewAtomicObserver()
	emitAll(a)

	c := &countingObserver{}
	a.Set(c)
	emitAll(a)
	if c.pings != 1 || c.steps != 1 || c.candidates != 1 || c.drained != 1 || c.connects != 1 {
		t.Fatalf("delegate missed events: %+v", c)
	}

	a.Set(nil)
	emitAll(a)
	if c.pings != 1 {
		t.Fatal("events still reached the replaced delegate")
	}
}

func TestTeeFansOut(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	obs := Tee(a, nil, b)
	emitAll(obs)
	if a.connects != 1 || b.connects != 1 {
		t.Fatalf("tee missed a branch: a=%+v b=%+v", a, b)
	}
}

func TestTeeEmpty(t *testing.T) {
	emitAll(Tee())
}
