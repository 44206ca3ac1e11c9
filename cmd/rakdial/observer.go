package main

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/kelvare/rakdial/observability"
)

// consoleObserver renders diagnostics events with pterm's prefixed printers.
type consoleObserver struct{}

func (consoleObserver) Ping(port uint16, result observability.PingResult, rtt time.Duration) {
	switch result {
	case observability.PingResultOK:
		pterm.Success.Println(fmt.Sprintf("port %d answered ping in %v", port, rtt.Round(time.Millisecond)))
	case observability.PingResultTimeout:
		pterm.Warning.Println(fmt.Sprintf("port %d did not answer ping", port))
	default:
		pterm.Warning.Println(fmt.Sprintf("port %d ping: %s", port, result))
	}
}

func (consoleObserver) CandidateStart(port uint16, version byte) {
	pterm.Info.Println(fmt.Sprintf("trying port %d, protocol version %d", port, version))
}

func (consoleObserver) Step(port uint16, version byte, step observability.Step, result observability.StepResult, reason observability.Reason, d time.Duration) {
	if result == observability.StepResultOK {
		return
	}
	pterm.Warning.Println(fmt.Sprintf("port %d v%d: %s failed (%s)", port, version, step, reason))
}

func (consoleObserver) CandidateDone(port uint16, version byte, result observability.CandidateResult, reason observability.Reason) {
	if result == observability.CandidateResultEstablished {
		pterm.Success.Println(fmt.Sprintf("handshake established on port %d, protocol version %d", port, version))
	}
}

func (consoleObserver) Drained(port uint16, version byte, packetID byte, size int) {
	pterm.Debug.Println(fmt.Sprintf("port %d v%d: observed packet id=0x%02x len=%d", port, version, packetID, size))
}

func (consoleObserver) ConnectDone(result observability.ConnectResult, candidatesTried int, d time.Duration) {
	pterm.Info.Println(fmt.Sprintf("connect finished: %s after %d candidate(s) in %v", result, candidatesTried, d.Round(time.Millisecond)))
}
