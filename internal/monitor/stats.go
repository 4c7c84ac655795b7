package monitor

import (
	"sync"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// Stats aggregates running per-protocol counters. The map is mutated
// only under the internal lock and never exposed directly; the lock is
// never held across a suspension point.
type Stats struct {
	mu        sync.RWMutex
	protocols map[string]*model.ProtocolStats
	tokens    map[string]map[string]struct{}
}

// NewStats constructs an empty aggregator.
func NewStats() *Stats {
	return &Stats{
		protocols: make(map[string]*model.ProtocolStats),
		tokens:    make(map[string]map[string]struct{}),
	}
}

// Update folds one published transaction into the counters of every
// protocol it carries. The last-activity timestamp is last-write-wins;
// interleaved scans may move it backward, which is accepted.
func (s *Stats) Update(lt model.LiveTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, protocol := range lt.Protocols {
		entry, ok := s.protocols[protocol]
		if !ok {
			entry = &model.ProtocolStats{Protocol: protocol}
			s.protocols[protocol] = entry
			s.tokens[protocol] = make(map[string]struct{})
		}
		entry.TxCount++
		entry.TotalValue += lt.TotalValue
		entry.LastActivity = lt.Timestamp
	}

	// Distinct-token counting is best-effort: only activities carrying a
	// ticker contribute.
	for _, a := range lt.Activities {
		tick, ok := a.Data["tick"]
		if !ok || tick == "" {
			continue
		}
		set, ok := s.tokens[a.Protocol]
		if !ok {
			continue
		}
		set[tick] = struct{}{}
		s.protocols[a.Protocol].TokenCount = uint64(len(set))
	}
}

// Snapshot returns a point-in-time copy. Callers never observe a
// partially updated entry and may retain the result freely.
func (s *Stats) Snapshot() map[string]model.ProtocolStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.ProtocolStats, len(s.protocols))
	for name, entry := range s.protocols {
		out[name] = *entry
	}
	return out
}
