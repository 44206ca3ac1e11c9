// Package wsfeed broadcasts diagnostics events to websocket subscribers as
// structured JSON, so operators can follow a connect attempt live without
// scraping console output.
package wsfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kelvare/rakdial/observability"
	"github.com/kelvare/rakdial/realtime/ws"
)

// Event is one diagnostics record. Kind selects which fields are meaningful.
type Event struct {
	Kind string    `json:"kind"` // ping, candidate_start, step, candidate_done, drained, connect_done
	Time time.Time `json:"time"`

	Port    uint16 `json:"port,omitempty"`
	Version uint8  `json:"version,omitempty"`

	Step   string `json:"step,omitempty"`
	Result string `json:"result,omitempty"`
	Reason string `json:"reason,omitempty"`

	DurationMS int64 `json:"duration_ms,omitempty"`
	PacketID   uint8 `json:"packet_id,omitempty"`
	Size       int   `json:"size,omitempty"`
	Candidates int   `json:"candidates,omitempty"`
}

// subscriberBuffer is the per-subscriber event backlog; slow subscribers drop
// events rather than stall the negotiator.
const subscriberBuffer = 64

// Feed fans out events to websocket subscribers. It implements
// observability.Observer and is safe for concurrent use.
type Feed struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

// New returns an empty feed.
func New() *Feed {
	return &Feed{subs: make(map[chan Event]struct{})}
}

var _ observability.Observer = (*Feed)(nil)

func (f *Feed) publish(ev Event) {
	ev.Time = time.Now().UTC()
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is lagging; drop rather than block the handshake.
		}
	}
}

func (f *Feed) Ping(port uint16, result observability.PingResult, rtt time.Duration) {
	f.publish(Event{Kind: "ping", Port: port, Result: string(result), DurationMS: rtt.Milliseconds()})
}

func (f *Feed) CandidateStart(port uint16, version byte) {
	f.publish(Event{Kind: "candidate_start", Port: port, Version: version})
}

func (f *Feed) Step(port uint16, version byte, step observability.Step, result observability.StepResult, reason observability.Reason, d time.Duration) {
	f.publish(Event{Kind: "step", Port: port, Version: version, Step: string(step), Result: string(result), Reason: string(reason), DurationMS: d.Milliseconds()})
}

func (f *Feed) CandidateDone(port uint16, version byte, result observability.CandidateResult, reason observability.Reason) {
	f.publish(Event{Kind: "candidate_done", Port: port, Version: version, Result: string(result), Reason: string(reason)})
}

func (f *Feed) Drained(port uint16, version byte, packetID byte, size int) {
	f.publish(Event{Kind: "drained", Port: port, Version: version, PacketID: packetID, Size: size})
}

func (f *Feed) ConnectDone(result observability.ConnectResult, candidatesTried int, d time.Duration) {
	f.publish(Event{Kind: "connect_done", Result: string(result), Candidates: candidatesTried, DurationMS: d.Milliseconds()})
}

func (f *Feed) subscribe() (chan Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, false
	}
	ch := make(chan Event, subscriberBuffer)
	f.subs[ch] = struct{}{}
	return ch, true
}

func (f *Feed) unsubscribe(ch chan Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(ch)
	}
}

// Close disconnects all subscribers. New subscriptions are refused afterwards.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for ch := range f.subs {
		delete(f.subs, ch)
		close(ch)
	}
}

// ServeHTTP upgrades the request and streams events as JSON text frames until
// the subscriber disconnects or the feed closes.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Upgrade(w, r, ws.UpgraderOptions{})
	if err != nil {
		return
	}
	defer conn.Close()

	ch, ok := f.subscribe()
	if !ok {
		return
	}
	defer f.unsubscribe(ch)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain inbound frames only to notice the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(ctx, websocket.TextMessage, b); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
