package utils

import (
	"github.com/btcsuite/btcd/btcutil"
)

// SatoshisToBTC converts a satoshi amount to its BTC float
// representation for display purposes.
func SatoshisToBTC(sats uint64) float64 {
	return btcutil.Amount(sats).ToBTC()
}
