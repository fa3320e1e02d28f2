// Package observability holds the Prometheus collectors of the bot.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lingo_spark"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	lessonsGenerated   prometheus.Counter
	generationFailures *prometheus.CounterVec
	gatewayFailures    *prometheus.CounterVec
	gatewayDuration    *prometheus.HistogramVec
	speechFailures     prometheus.Counter
	remindersSent      prometheus.Counter
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lessonsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lessons_generated_total",
			Help:      "Lessons generated and persisted.",
		}),
		generationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lesson_generation_failures_total",
			Help:      "Failed lesson generations by kind.",
		}, []string{"kind"}),
		gatewayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_failures_total",
			Help:      "Failed AI gateway calls by operation.",
		}, []string{"op"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "AI gateway call latency by operation.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 90},
		}, []string{"op"}),
		speechFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_failures_total",
			Help:      "Speech synthesis calls that failed and were dropped.",
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Daily reminders delivered.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.lessonsGenerated,
		m.generationFailures,
		m.gatewayFailures,
		m.gatewayDuration,
		m.speechFailures,
		m.remindersSent,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveGateway records the latency of a gateway call and counts it as failed when err is set.
func (m *Metrics) ObserveGateway(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.gatewayFailures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) LessonGenerated() {
	if m == nil {
		return
	}
	m.lessonsGenerated.Inc()
}

func (m *Metrics) GenerationFailed(kind string) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) SpeechFailed() {
	if m == nil {
		return
	}
	m.speechFailures.Inc()
}

func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}
