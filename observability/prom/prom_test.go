package prom

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kelvare/rakdial/observability"
)

func TestObserverCounts(t *testing.T) {
	reg := NewRegistry()
	o := NewObserver(reg)

	o.Ping(19132, observability.PingResultOK, time.Millisecond)
	o.Ping(25565, observability.PingResultTimeout, 0)
	o.CandidateStart(19132, 11)
	o.Step(19132, 11, observability.StepReply1, observability.StepResultOK, observability.ReasonNone, 5*time.Millisecond)
	o.Step(19132, 11, observability.StepReply2, observability.StepResultFail, "timeout", 100*time.Millisecond)
	o.CandidateDone(19132, 11, observability.CandidateResultFailed, "timeout")
	o.Drained(19132, 10, 0x84, 32)
	o.ConnectDone(observability.ConnectResultExhausted, 2, time.Second)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int{}
	for _, mf := range mfs {
		counts[mf.GetName()] = len(mf.GetMetric())
	}

	if counts["rakdial_ping_total"] != 2 {
		t.Fatalf("ping series = %d, want 2", counts["rakdial_ping_total"])
	}
	if counts["rakdial_step_total"] != 2 {
		t.Fatalf("step series = %d, want 2", counts["rakdial_step_total"])
	}
	if counts["rakdial_candidate_total"] != 1 {
		t.Fatalf("candidate series = %d, want 1", counts["rakdial_candidate_total"])
	}
	if counts["rakdial_drained_total"] != 1 || counts["rakdial_connect_total"] != 1 {
		t.Fatalf("unexpected series counts: %v", counts)
	}
	if counts["rakdial_step_latency_seconds"] != 1 {
		t.Fatalf("latency series = %d, want 1", counts["rakdial_step_latency_seconds"])
	}
}

func TestHandlerExposition(t *testing.T) {
	reg := NewRegistry()
	o := NewObserver(reg)
	o.ConnectDone(observability.ConnectResultOK, 1, time.Second)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	if !strings.Contains(body, `rakdial_connect_total{result="ok"} 1`) {
		t.Fatalf("exposition missing connect counter:\n%s", body)
	}
}
