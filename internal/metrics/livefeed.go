package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	livePublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metawatch7000",
		Subsystem: "live_feed",
		Name:      "published_total",
		Help:      "Count of live transactions published to the hub.",
	})

	liveDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metawatch7000",
		Subsystem: "live_feed",
		Name:      "dropped_total",
		Help:      "Count of backlog messages dropped for lagging subscribers.",
	})

	liveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "metawatch7000",
		Subsystem: "live_feed",
		Name:      "subscribers",
		Help:      "Current number of live feed subscribers.",
	})
)

// LiveFeed tracks metrics for the broadcast hub.
type LiveFeed struct{}

// NewLiveFeed constructs a metrics collector for the hub.
func NewLiveFeed() *LiveFeed {
	return &LiveFeed{}
}

// ObservePublish records one publish fan-out.
func (m LiveFeed) ObservePublish(subscribers int) {
	livePublishedTotal.Inc()
}

// ObserveDrop records one dropped backlog message.
func (m LiveFeed) ObserveDrop() {
	liveDroppedTotal.Inc()
}

// SetSubscribers records the current subscriber count.
func (m LiveFeed) SetSubscribers(count int) {
	liveSubscribers.Set(float64(count))
}
