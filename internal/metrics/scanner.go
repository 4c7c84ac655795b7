package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scanCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metawatch7000",
		Subsystem: "scanner",
		Name:      "cycles_total",
		Help:      "Count of scan cycles executed.",
	}, []string{"scanner", "status"})

	scanCycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "metawatch7000",
		Subsystem: "scanner",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of candidate listing per scan cycle.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"scanner", "status"})

	scanCandidates = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "metawatch7000",
		Subsystem: "scanner",
		Name:      "cycle_candidates",
		Help:      "Number of candidate ids listed per scan cycle.",
		Buckets:   prometheus.LinearBuckets(0, 1, 11),
	}, []string{"scanner"})

	scanFetchSkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metawatch7000",
		Subsystem: "scanner",
		Name:      "fetch_skips_total",
		Help:      "Count of candidates skipped after a fetch failure.",
	}, []string{"scanner"})

	scanMatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metawatch7000",
		Subsystem: "scanner",
		Name:      "matches_total",
		Help:      "Count of transactions with detected metaprotocol activity.",
	}, []string{"scanner", "protocol"})
)

// Scanner tracks metrics for the scan loops.
type Scanner struct{}

// NewScanner constructs a metrics collector for scan loops.
func NewScanner() *Scanner {
	return &Scanner{}
}

// ObserveCycle records the outcome of one candidate-listing cycle.
func (m Scanner) ObserveCycle(scanner string, err error, candidates int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	scanCyclesTotal.WithLabelValues(scanner, status).Inc()
	scanCycleDuration.WithLabelValues(scanner, status).Observe(time.Since(started).Seconds())
	scanCandidates.WithLabelValues(scanner).Observe(float64(candidates))
}

// ObserveFetchSkip records a candidate skipped due to a fetch failure.
func (m Scanner) ObserveFetchSkip(scanner string) {
	scanFetchSkipsTotal.WithLabelValues(scanner).Inc()
}

// ObserveMatch records one published match per detected protocol.
func (m Scanner) ObserveMatch(scanner string, protocols []string) {
	for _, protocol := range protocols {
		scanMatchesTotal.WithLabelValues(scanner, protocol).Inc()
	}
}
