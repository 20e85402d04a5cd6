package keyenv

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics registers the client's Prometheus metrics with the default
// registry. Instrumentation is opt-in: without this call the client
// records nothing. Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		requestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyenv_requests_total",
				Help: "Total number of KeyEnv API requests by operation and status code",
			},
			[]string{"operation", "status"},
		)

		requestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keyenv_request_duration_seconds",
				Help:    "Duration of KeyEnv API requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		)

		metricsRegistered = true
	})
}

// recordRequest records one round trip. Status 0 means the server was
// never reached; 408 may be synthesized from a transport timeout.
func recordRequest(op string, status int, seconds float64) {
	if !metricsRegistered {
		return
	}

	if requestsTotal != nil {
		requestsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	}

	if requestDuration != nil {
		requestDuration.WithLabelValues(op).Observe(seconds)
	}
}

// MetricsRegistered returns whether InitMetrics has run.
func MetricsRegistered() bool {
	return metricsRegistered
}
