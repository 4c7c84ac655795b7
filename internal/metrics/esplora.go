// Package metrics exposes Prometheus collectors for the backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	esploraRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metawatch7000",
		Subsystem: "esplora_client",
		Name:      "operations_total",
		Help:      "Count of esplora API operations.",
	}, []string{"operation", "status"})
	esploraRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "metawatch7000",
		Subsystem: "esplora_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of esplora API operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
)

// Esplora tracks metrics for calls against the esplora API.
type Esplora struct{}

// NewEsplora constructs a metrics collector for esplora calls.
func NewEsplora() *Esplora {
	return &Esplora{}
}

// Observe records a single API call outcome and duration.
func (m Esplora) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	esploraRequestsTotal.WithLabelValues(operation, status).Inc()
	esploraRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
