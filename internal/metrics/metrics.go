package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for dispatch cycles and briefing runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	pollCycles      *prometheus.CounterVec
	updatesFetched  prometheus.Counter
	triggers        prometheus.Counter
	cursor          prometheus.Gauge
	briefingRuns    *prometheus.CounterVec
	briefingSeconds prometheus.Histogram
}

// New creates and registers the metrics with the given registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_voice_poll_cycles_total",
			Help: "Dispatch cycles by outcome",
		}, []string{"outcome"}),
		updatesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_voice_updates_fetched_total",
			Help: "Telegram updates fetched by the dispatcher",
		}),
		triggers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_voice_triggers_total",
			Help: "Dispatch cycles that invoked the briefing runner",
		}),
		cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_voice_cursor",
			Help: "Last persisted Telegram update offset",
		}),
		briefingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_voice_briefing_runs_total",
			Help: "Briefing runs by outcome",
		}, []string{"outcome"}),
		briefingSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weather_voice_briefing_duration_seconds",
			Help:    "Wall time of briefing runs",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 60, 120},
		}),
	}

	registry.MustRegister(
		m.pollCycles,
		m.updatesFetched,
		m.triggers,
		m.cursor,
		m.briefingRuns,
		m.briefingSeconds,
	)

	return m
}

// PollCycle records one dispatch cycle.
func (m *Metrics) PollCycle(outcome string, fetched int, cursor int64, triggered bool) {
	if m == nil {
		return
	}
	m.pollCycles.WithLabelValues(outcome).Inc()
	m.updatesFetched.Add(float64(fetched))
	if fetched > 0 {
		m.cursor.Set(float64(cursor))
	}
	if triggered {
		m.triggers.Inc()
	}
}

// BriefingRun records one briefing run.
func (m *Metrics) BriefingRun(err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.briefingRuns.WithLabelValues(outcome).Inc()
	m.briefingSeconds.Observe(d.Seconds())
}
