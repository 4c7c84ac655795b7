// Package model defines domain models for metaprotocol detection.
package model

// Transaction represents a bitcoin transaction as served by an
// esplora-compatible API. Output and input order is positional and
// must be preserved.
type Transaction struct {
	TxID   string   `json:"txid"`
	Size   uint32   `json:"size"`
	Fee    *uint64  `json:"fee,omitempty"`
	Status TxStatus `json:"status"`
	Vout   []Output `json:"vout"`
	Vin    []Input  `json:"vin"`
}

// TxStatus describes the confirmation state of a transaction.
type TxStatus struct {
	Confirmed   bool    `json:"confirmed"`
	BlockHeight *uint32 `json:"block_height,omitempty"`
}

// Output is a single transaction output.
type Output struct {
	ScriptPubKey string `json:"scriptpubkey"`
	Value        uint64 `json:"value"`
	Address      string `json:"scriptpubkey_address,omitempty"`
}

// Input is a single transaction input. A missing witness stack means no
// witness-based detector applies to it.
type Input struct {
	TxID    string   `json:"txid"`
	Vout    uint32   `json:"vout"`
	Witness []string `json:"witness,omitempty"`
}

// TotalValue sums the values of all outputs.
func (t Transaction) TotalValue() uint64 {
	var total uint64
	for _, out := range t.Vout {
		total += out.Value
	}
	return total
}
