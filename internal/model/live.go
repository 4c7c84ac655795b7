package model

import "time"

// LiveTransaction is a classified transaction published to live feed
// subscribers. Values are immutable once constructed and shared
// read-only between subscribers.
type LiveTransaction struct {
	TxID       string     `json:"txid"`
	Timestamp  time.Time  `json:"timestamp"`
	Protocols  []string   `json:"protocols"`
	TotalValue uint64     `json:"total_value"`
	Activities []Activity `json:"activities"`
	FeeRate    float64    `json:"fee_rate"`
	Size       uint32     `json:"size"`
}

// ProtocolStats holds running counters for one protocol. Counters only
// grow within a process lifetime; LastActivity is last-write-wins.
type ProtocolStats struct {
	Protocol     string    `json:"protocol"`
	TxCount      uint64    `json:"tx_count"`
	TotalValue   uint64    `json:"total_value"`
	TokenCount   uint64    `json:"token_count"`
	LastActivity time.Time `json:"last_activity"`
}
