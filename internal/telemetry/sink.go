// Package telemetry records dispatch outcomes without altering control flow.
//
// Sinks are fire-and-forget: Record never returns an error, never panics,
// and never blocks the caller beyond an in-process metric update. Losing a
// telemetry event must not fail the call that produced it.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event describes one completed dispatch.
type Event struct {
	// Tool is the dispatched tool name.
	Tool string

	// Kind is "ok" or the failure kind (unknown_tool, invalid_input,
	// handler_failure, ...).
	Kind string

	// Duration is the time from lookup to normalized result.
	Duration time.Duration
}

// Sink receives dispatch events.
type Sink interface {
	Record(event Event)
}

// MetricsSink exposes dispatch outcomes as Prometheus metrics.
type MetricsSink struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetricsSink creates and registers dispatch metrics on reg. Passing
// prometheus.DefaultRegisterer wires them into the default /metrics output.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	factory := promauto.With(reg)
	return &MetricsSink{
		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_tool_executions_total",
				Help: "Total number of tool dispatches by tool name and outcome",
			},
			[]string{"tool", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "steward_tool_execution_duration_seconds",
				Help:    "Duration of tool dispatches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"tool"},
		),
	}
}

// Record implements Sink. It never raises: a panic from the metrics layer
// is swallowed, since telemetry loss must not fail the originating call.
func (s *MetricsSink) Record(event Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.executions.WithLabelValues(event.Tool, event.Kind).Inc()
	s.duration.WithLabelValues(event.Tool).Observe(event.Duration.Seconds())
}

// RecorderSink captures events in memory for tests.
type RecorderSink struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorderSink creates an empty recorder.
func NewRecorderSink() *RecorderSink {
	return &RecorderSink{}
}

// Record implements Sink.
func (s *RecorderSink) Record(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of everything recorded so far.
func (s *RecorderSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// NopSink discards all events.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(Event) {}
