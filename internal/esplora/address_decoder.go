package esplora

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// AddressDecoder extracts human-readable addresses from locking
// scripts.
type AddressDecoder struct {
	params *chaincfg.Params
}

// NewAddressDecoder initializes a decoder using params of the provided
// network.
func NewAddressDecoder(network string) (*AddressDecoder, error) {
	params, err := chainParamsForNetwork(network)
	if err != nil {
		return nil, err
	}
	return &AddressDecoder{params: params}, nil
}

// Decode returns the first address encoded by the script, or an empty
// string when the script carries none (data carriers, undecodable
// scripts).
func (d *AddressDecoder) Decode(scriptHex string) string {
	if scriptHex == "" {
		return ""
	}
	scriptBytes, err := hex.DecodeString(scriptHex)
	if err != nil {
		return ""
	}
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(scriptBytes, d.params)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	return addrs[0].EncodeAddress()
}

func chainParamsForNetwork(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "", "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}
