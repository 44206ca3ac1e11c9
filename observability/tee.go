package observability

import "time"

// Tee fans events out to several observers in order.
func Tee(obs ...Observer) Observer {
	out := make(teeObserver, 0, len(obs))
	for _, o := range obs {
		if o == nil {
			continue
		}
		out = append(out, o)
	}
	return out
}

type teeObserver []Observer

func (t teeObserver) Ping(port uint16, result PingResult, rtt time.Duration) {
	for _, o := range t {
		o.Ping(port, result, rtt)
	}
}

func (t teeObserver) CandidateStart(port uint16, version byte) {
	for _, o := range t {
		o.CandidateStart(port, version)
	}
}

func (t teeObserver) Step(port uint16, version byte, step Step, result StepResult, reason Reason, d time.Duration) {
	for _, o := range t {
		o.Step(port, version, step, result, reason, d)
	}
}

func (t teeObserver) CandidateDone(port uint16, version byte, result CandidateResult, reason Reason) {
	for _, o := range t {
		o.CandidateDone(port, version, result, reason)
	}
}

func (t teeObserver) Drained(port uint16, version byte, packetID byte, size int) {
	for _, o := range t {
		o.Drained(port, version, packetID, size)
	}
}

func (t teeObserver) ConnectDone(result ConnectResult, candidatesTried int, d time.Duration) {
	for _, o := range t {
		o.ConnectDone(result, candidatesTried, d)
	}
}
