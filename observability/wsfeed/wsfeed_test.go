package wsfeed

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kelvare/rakdial/observability"
	"github.com/kelvare/rakdial/realtime/ws"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFeedStreamsEvents(t *testing.T) {
	feed := New()
	defer feed.Close()
	srv := httptest.NewServer(feed)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, wsURL(srv), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// The subscription registers inside the handler goroutine; publish until
	// the first frame arrives.
	type recv struct {
		ev  Event
		err error
	}
	got := make(chan recv, 1)
	go func() {
		_, b, err := conn.ReadMessage(ctx)
		if err != nil {
			got <- recv{err: err}
			return
		}
		var ev Event
		if err := json.Unmarshal(b, &ev); err != nil {
			got <- recv{err: err}
			return
		}
		got <- recv{ev: ev}
	}()

	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case r := <-got:
			if r.err != nil {
				t.Fatal(r.err)
			}
			if r.ev.Kind != "step" || r.ev.Port != 19132 || r.ev.Step != "reply1" || r.ev.Result != "ok" {
				t.Fatalf("unexpected event: %+v", r.ev)
			}
			if r.ev.Time.IsZero() {
				t.Fatal("event timestamp not set")
			}
			return
		case <-tick.C:
			feed.Step(19132, 11, observability.StepReply1, observability.StepResultOK, observability.ReasonNone, 3*time.Millisecond)
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestFeedCloseDisconnectsSubscribers(t *testing.T) {
	feed := New()
	srv := httptest.NewServer(feed)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, wsURL(srv), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Give the handler a moment to register the subscription, then close.
	time.Sleep(50 * time.Millisecond)
	feed.Close()

	if _, _, err := conn.ReadMessage(ctx); err == nil {
		t.Fatal("expected read to fail after feed close")
	}
}

func TestFeedPublishAfterCloseIsSafe(t *testing.T) {
	feed := New()
	feed.Close()
	feed.Ping(19132, observability.PingResultOK, time.Millisecond)
	feed.ConnectDone(observability.ConnectResultOK, 1, time.Second)
}

func TestFeedSlowSubscriberDoesNotBlock(t *testing.T) {
	feed := New()
	defer feed.Close()

	ch, ok := feed.subscribe()
	if !ok {
		t.Fatal("subscribe refused")
	}
	defer feed.unsubscribe(ch)

	// Nothing reads ch; publishing far past the buffer must not stall.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*4; i++ {
			feed.Drained(19132, 11, 0x84, i)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a lagging subscriber")
	}
}
