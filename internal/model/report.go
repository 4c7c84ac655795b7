package model

// Summary condenses the activities of one analysis.
type Summary struct {
	TotalActivities int      `json:"total_activities"`
	Protocols       []string `json:"protocols"`
	Operations      []string `json:"operations"`
}

// AnalysisReport is the one-shot analysis result for a single
// transaction.
type AnalysisReport struct {
	TxID              string     `json:"txid"`
	Size              uint32     `json:"size"`
	Fee               *uint64    `json:"fee,omitempty"`
	FeeRate           float64    `json:"fee_rate"`
	Confirmations     uint32     `json:"confirmations"`
	TotalValue        uint64     `json:"total_value"`
	TotalValueBTC     string     `json:"total_value_btc"`
	ProtocolsDetected []string   `json:"protocols_detected"`
	Activities        []Activity `json:"activities"`
	IsMetaprotocol    bool       `json:"is_metaprotocol"`
	MaxImportance     uint8      `json:"max_importance"`
	TotalStateChanges int        `json:"total_state_changes"`
	Summary           Summary    `json:"summary"`
}
