// Package metrics provides the Prometheus collectors for push dispatches,
// tool calls and scheduled jobs, and the HTTP handler that exports them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tachiyu/line-mcp-server/internal/line"
)

const namespace = "line_mcp"

// Recorder owns a private registry so several instances (tests, one per
// process) never collide on the default registerer.
type Recorder struct {
	registry *prometheus.Registry

	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	toolCalls        *prometheus.CounterVec
	scheduledRuns    *prometheus.CounterVec
}

// NewRecorder builds a Recorder with Go runtime and process collectors
// already registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Push requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Round-trip time of push requests that reached the transport",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"operation"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "MCP tool invocations by tool and result",
			},
			[]string{"tool", "result"},
		),
		scheduledRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduled_runs_total",
				Help:      "Scheduled notification runs by job and result",
			},
			[]string{"job", "result"},
		),
	}
	r.registry.MustRegister(
		r.dispatches,
		r.dispatchDuration,
		r.toolCalls,
		r.scheduledRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveDispatch implements line.Observer.
func (r *Recorder) ObserveDispatch(op line.Operation, outcome string, elapsed time.Duration) {
	r.dispatches.WithLabelValues(string(op), outcome).Inc()
	if outcome != line.OutcomeInvalid {
		r.dispatchDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
	}
}

// IncToolCall counts one tool invocation; result is "ok" or "error".
func (r *Recorder) IncToolCall(tool, result string) {
	r.toolCalls.WithLabelValues(tool, result).Inc()
}

// IncScheduledRun counts one scheduled job firing.
func (r *Recorder) IncScheduledRun(job, result string) {
	r.scheduledRuns.WithLabelValues(job, result).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler returns an HTTP handler that exposes the recorder's metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

var _ line.Observer = (*Recorder)(nil)
