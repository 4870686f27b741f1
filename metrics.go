package jsonfetch

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for a Fetcher. A nil *Metrics records nothing.
type Metrics struct {
	attemptsTotal   *prometheus.CounterVec
	retriesTotal    prometheus.Counter
	fetchesTotal    *prometheus.CounterVec
	attemptDuration prometheus.Histogram
}

// NewMetrics creates and registers fetch metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		attemptsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsonfetch_attempts_total",
				Help: "Total number of network attempts, by outcome",
			},
			[]string{"outcome"},
		),
		retriesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "jsonfetch_retries_total",
				Help: "Total number of retries scheduled after a transport failure",
			},
		),
		fetchesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsonfetch_fetches_total",
				Help: "Total number of fetches, by result",
			},
			[]string{"result"},
		),
		attemptDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jsonfetch_attempt_duration_seconds",
				Help:    "Duration of individual network attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) recordAttempt(outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.attemptsTotal.WithLabelValues(outcome).Inc()
	m.attemptDuration.Observe(d.Seconds())
}

func (m *Metrics) recordRetry() {
	if m == nil {
		return
	}

	m.retriesTotal.Inc()
}

func (m *Metrics) recordFetch(err error) {
	if m == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "unknown"

		var e *Error
		if errors.As(err, &e) {
			result = e.Kind.String()
		}
	}

	m.fetchesTotal.WithLabelValues(result).Inc()
}
