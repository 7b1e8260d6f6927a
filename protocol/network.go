package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

var ErrInvalidNetwork = errors.New("invalid network")

type Network string

const (
	NetworkBitcoin Network = "bitcoin"
	NetworkTestnet Network = "testnet"
	NetworkSignet  Network = "signet"
	NetworkRegtest Network = "regtest"
)

// ParseNetwork accepts the names used by bitcoind and by the hub's database.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bitcoin", "mainnet", "main":
		return NetworkBitcoin, nil
	case "testnet", "testnet3", "test":
		return NetworkTestnet, nil
	case "signet":
		return NetworkSignet, nil
	case "regtest":
		return NetworkRegtest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidNetwork, s)
	}
}

func (n Network) String() string {
	return string(n)
}

// Params returns the chain parameters for the network, nil for an unknown network.
func (n Network) Params() *chaincfg.Params {
	switch n {
	case NetworkBitcoin:
		return &chaincfg.MainNetParams
	case NetworkTestnet:
		return &chaincfg.TestNet3Params
	case NetworkSignet:
		return &chaincfg.SigNetParams
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams
	default:
		return nil
	}
}

// CoinType is the second derivation path component: 0 on mainnet, 1 on every test network.
func (n Network) CoinType() uint32 {
	if n == NetworkBitcoin {
		return 0
	}
	return 1
}
