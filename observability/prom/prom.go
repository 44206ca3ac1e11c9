// Package prom exports handshake diagnostics to Prometheus.
package prom

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kelvare/rakdial/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a fresh Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler returns a Prometheus HTTP handler bound to the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Observer exports discovery and handshake metrics to Prometheus.
type Observer struct {
	pingTotal      *prometheus.CounterVec
	candidateTotal *prometheus.CounterVec
	stepTotal      *prometheus.CounterVec
	stepLatency    prometheus.Histogram
	drainedTotal   prometheus.Counter
	connectTotal   *prometheus.CounterVec
}

// NewObserver registers handshake metrics on the registry.
func NewObserver(reg *prometheus.Registry) *Observer {
	o := &Observer{
		pingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rakdial_ping_total",
			Help: "Unconnected ping probes by port and result.",
		}, []string{"port", "result"}),
		candidateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rakdial_candidate_total",
			Help: "Handshake candidate attempts by result and reason.",
		}, []string{"result", "reason"}),
		stepTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rakdial_step_total",
			Help: "Handshake step outcomes by step, result, and reason.",
		}, []string{"step", "result", "reason"}),
		stepLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rakdial_step_latency_seconds",
			Help:    "Latency of each resolved handshake step.",
			Buckets: prometheus.DefBuckets,
		}),
		drainedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rakdial_drained_total",
			Help: "Datagrams observed during the post-handshake drain.",
		}),
		connectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rakdial_connect_total",
			Help: "Top-level connect outcomes.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		o.pingTotal,
		o.candidateTotal,
		o.stepTotal,
		o.stepLatency,
		o.drainedTotal,
		o.connectTotal,
	)
	return o
}

func (o *Observer) Ping(port uint16, result observability.PingResult, _ time.Duration) {
	o.pingTotal.WithLabelValues(strconv.Itoa(int(port)), string(result)).Inc()
}

func (o *Observer) CandidateStart(uint16, byte) {}

func (o *Observer) Step(_ uint16, _ byte, step observability.Step, result observability.StepResult, reason observability.Reason, d time.Duration) {
	o.stepTotal.WithLabelValues(string(step), string(result), string(reason)).Inc()
	o.stepLatency.Observe(d.Seconds())
}

func (o *Observer) CandidateDone(_ uint16, _ byte, result observability.CandidateResult, reason observability.Reason) {
	o.candidateTotal.WithLabelValues(string(result), string(reason)).Inc()
}

func (o *Observer) Drained(uint16, byte, byte, int) {
	o.drainedTotal.Inc()
}

func (o *Observer) ConnectDone(result observability.ConnectResult, _ int, _ time.Duration) {
	o.connectTotal.WithLabelValues(string(result)).Inc()
}

var _ observability.Observer = (*Observer)(nil)
