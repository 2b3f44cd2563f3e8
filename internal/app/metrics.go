package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide Prometheus collectors.
type Metrics struct {
	queryFallbacks *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *Metrics {
	return &Metrics{
		queryFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Name:      "query_fallbacks_total",
			Help:      "Grid queries the store could not translate and that were evaluated in memory.",
		}, []string{"entity", "reason"}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "erp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets: []float64{
				0.001, 0.005,
				0.01, 0.025, 0.05,
				0.1, 0.25, 0.5,
				1, 2.5, 5,
			},
		}, []string{"method", "route"}),
	}
})

// GetMetrics returns the registered collectors, registering them on first use.
func GetMetrics() *Metrics {
	return metricsSingleton()
}

// QueryFallback counts one in-memory fallback of the query engine.
func (m *Metrics) QueryFallback(entity, reason string) {
	m.queryFallbacks.WithLabelValues(entity, reason).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
