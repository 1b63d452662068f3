package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sync and cache Prometheus metrics.
var (
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "careerdex",
			Name:      "refresh_total",
			Help:      "Collection refreshes by outcome",
		},
		[]string{"collection", "status"}, // status: ok / error / skipped
	)

	RefreshDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "careerdex",
			Name:      "refresh_duration_seconds",
			Help:      "Collection refresh duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collection"},
	)

	RefreshRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "careerdex",
			Name:      "refresh_records",
			Help:      "Records written by the last successful refresh",
		},
		[]string{"collection"},
	)

	CacheReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "careerdex",
			Name:      "cache_reads_total",
			Help:      "Collection reads by serving tier",
		},
		[]string{"collection", "tier"}, // tier: memory / persistent / fallback
	)

	RemoteOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "careerdex",
			Name:      "remote_online",
			Help:      "1 when the remote provider answered the last connectivity probe",
		},
	)

	RemoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "careerdex",
			Name:      "remote_requests_total",
			Help:      "Remote provider calls by backend, operation and status",
		},
		[]string{"backend", "operation", "status"}, // status: ok / error
	)

	RemoteRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "careerdex",
			Name:      "remote_request_duration_seconds",
			Help:      "Remote provider call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "operation"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "careerdex",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "careerdex",
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // result: success / failure / rejected
	)
)

var syncMetricsRegistered bool

// ObserveRemote records one remote provider call.
func ObserveRemote(backend, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RemoteRequestsTotal.WithLabelValues(backend, operation, status).Inc()
	RemoteRequestDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}

// RegisterSyncMetrics registers sync, cache, remote and breaker metrics. Must be called once from main.
func RegisterSyncMetrics() {
	if syncMetricsRegistered {
		return
	}
	prometheus.MustRegister(RefreshTotal)
	prometheus.MustRegister(RefreshDuration)
	prometheus.MustRegister(RefreshRecords)
	prometheus.MustRegister(CacheReadsTotal)
	prometheus.MustRegister(RemoteOnline)
	prometheus.MustRegister(RemoteRequestsTotal)
	prometheus.MustRegister(RemoteRequestDuration)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	syncMetricsRegistered = true
}
