// Package metrics exposes Prometheus collectors for generation calls and
// reading sessions.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/pinyin-picturebook/internal/events"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/gemini"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "picturebook"

// OutcomeSuccess labels successful attempts. Failed attempts are labelled
// with their generation.Kind.
const OutcomeSuccess = "success"

// Metrics holds the application collectors on a dedicated registry.
type Metrics struct {
	registry       *prometheus.Registry
	attempts       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	activeSessions prometheus.Gauge
}

var (
	_ gemini.Observer     = (*Metrics)(nil)
	_ events.EventHandler = (*Metrics)(nil)
)

// New creates and registers the collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Backend generation attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of generation calls including retries.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Reading sessions currently open.",
		}),
	}

	m.registry.MustRegister(
		m.attempts,
		m.duration,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAttempt implements gemini.Observer.
func (m *Metrics) ObserveAttempt(operation string, err error) {
	m.attempts.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveCall implements gemini.Observer.
func (m *Metrics) ObserveCall(operation string, elapsed time.Duration, _ error) {
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// HandleEvent tracks the active session gauge from session lifecycle events.
func (m *Metrics) HandleEvent(_ context.Context, ev *events.SessionEvent) error {
	switch ev.Type {
	case events.TypeSessionCreated:
		m.activeSessions.Inc()
	case events.TypeSessionClosed:
		m.activeSessions.Dec()
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return string(generation.KindOf(err))
}
