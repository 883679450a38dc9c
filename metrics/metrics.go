// Package metrics exposes the Prometheus collectors of the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dcode-github/listing_analytics/mirror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listings"

type Metrics struct {
	registry *prometheus.Registry

	syncRuns     *prometheus.CounterVec
	syncRecords  *prometheus.CounterVec
	syncDuration prometheus.Histogram
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers every collector on a private registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "sync_runs_total",
			Help:      "Mirror sync runs by result.",
		}, []string{"result"}),
		syncRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "sync_records_total",
			Help:      "Records seen by mirror sync runs, by outcome.",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "sync_duration_seconds",
			Help:      "Wall time of mirror sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.syncRuns, m.syncRecords, m.syncDuration,
		m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSync records the outcome of one sync run.
func (m *Metrics) ObserveSync(tally mirror.Tally, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.syncRuns.WithLabelValues(result).Inc()
	m.syncRecords.WithLabelValues("synced").Add(float64(tally.Synced))
	m.syncRecords.WithLabelValues("skipped").Add(float64(tally.Skipped))
	m.syncRecords.WithLabelValues("errored").Add(float64(tally.Errored))
	m.syncDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
