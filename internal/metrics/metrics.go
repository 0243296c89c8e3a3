// Package metrics collects and exposes Prometheus metrics for feed attempts.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photo_feed/internal/model"
)

// Collector records feed attempt outcomes.
type Collector struct {
	attempts *prometheus.CounterVec
	latency  prometheus.Histogram
	records  prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photofeed_attempts_total",
			Help: "Feed attempts by final status.",
		}, []string{"status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photofeed_attempt_duration_seconds",
			Help:    "Time from request to parsed result.",
			Buckets: prometheus.DefBuckets,
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photofeed_records_total",
			Help: "Photo records delivered to consumers.",
		}),
	}

	reg.MustRegister(c.attempts, c.latency, c.records)
	return c
}

// RecordAttempt records one finished attempt.
func (c *Collector) RecordAttempt(status model.StatusCode, duration time.Duration, records int) {
	c.attempts.WithLabelValues(status.String()).Inc()
	c.latency.Observe(duration.Seconds())
	c.records.Add(float64(records))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
