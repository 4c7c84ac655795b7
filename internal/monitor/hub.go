// Package monitor holds the live-feed hub, the per-protocol stats
// aggregator, and the Monitor that ties them together.
package monitor

import (
	"sync"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// defaultBacklog is the per-subscriber pending message capacity.
const defaultBacklog = 1000

// Subscription is one reader handle on the hub. It observes every
// message published after the point of subscription, minus whatever the
// backlog dropped while the reader lagged.
type Subscription struct {
	hub  *Hub
	ch   chan model.LiveTransaction
	once sync.Once
}

// C returns the delivery channel. It is closed when the subscription or
// the hub is closed.
func (s *Subscription) C() <-chan model.LiveTransaction {
	return s.ch
}

// Close detaches the subscription from the hub. Other subscribers and
// the publisher are unaffected. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
}

// Hub is a single-writer multi-reader broadcast point. Publishing never
// blocks: a subscriber whose backlog is full loses its oldest unread
// messages instead.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	backlog int
	metrics HubMetrics
}

// HubMetrics records hub publish outcomes.
type HubMetrics interface {
	ObservePublish(subscribers int)
	ObserveDrop()
	SetSubscribers(count int)
}

// NewHub constructs a hub. A non-positive backlog falls back to the
// default capacity.
func NewHub(backlog int, metrics HubMetrics) *Hub {
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	return &Hub{
		subs:    make(map[*Subscription]struct{}),
		backlog: backlog,
		metrics: metrics,
	}
}

// Subscribe registers a new reader positioned at the current stream
// head; nothing published earlier is observed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub: h,
		ch:  make(chan model.LiveTransaction, h.backlog),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.SetSubscribers(count)
	}
	return s
}

// Publish fans the transaction out to every current subscriber. With no
// subscribers it is a no-op.
func (h *Hub) Publish(lt model.LiveTransaction) {
	h.mu.Lock()
	for s := range h.subs {
		select {
		case s.ch <- lt:
		default:
			// Backlog full: drop the oldest unread message to make room.
			select {
			case <-s.ch:
				if h.metrics != nil {
					h.metrics.ObserveDrop()
				}
			default:
			}
			select {
			case s.ch <- lt:
			default:
			}
		}
	}
	count := len(h.subs)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.ObservePublish(count)
	}
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	count := len(h.subs)
	// Closing under the hub lock keeps Publish from sending on a closed
	// channel.
	close(s.ch)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.SetSubscribers(count)
	}
}
