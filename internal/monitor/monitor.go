package monitor

import (
	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// Monitor owns the live-feed hub and the stats aggregator. It is
// constructed once and passed explicitly to every producer and
// transport that needs it; there is no package-level instance.
type Monitor struct {
	hub    *Hub
	stats  *Stats
	logger *zap.Logger
}

// New builds a Monitor and returns it together with an initial
// subscription positioned at the head of the stream.
func New(logger *zap.Logger, backlog int, metrics HubMetrics) (*Monitor, *Subscription) {
	m := &Monitor{
		hub:    NewHub(backlog, metrics),
		stats:  NewStats(),
		logger: logger.Named("monitor"),
	}
	return m, m.hub.Subscribe()
}

// Publish folds the transaction into the stats and fans it out to all
// subscribers. Transactions without detected protocols are never
// published.
func (m *Monitor) Publish(lt model.LiveTransaction) {
	if len(lt.Protocols) == 0 {
		return
	}
	m.stats.Update(lt)
	m.hub.Publish(lt)
	m.logger.Debug("published live transaction",
		zap.String("txid", lt.TxID),
		zap.Strings("protocols", lt.Protocols),
	)
}

// Subscribe creates an independent reader on the live feed.
func (m *Monitor) Subscribe() *Subscription {
	return m.hub.Subscribe()
}

// StatsSnapshot returns a point-in-time copy of per-protocol counters.
func (m *Monitor) StatsSnapshot() map[string]model.ProtocolStats {
	return m.stats.Snapshot()
}
