package protocol

import (
	"errors"
	"testing"
)

func TestParseNetwork(t *testing.T) {
	cases := map[string]Network{
		"bitcoin":  NetworkBitcoin,
		"mainnet":  NetworkBitcoin,
		"testnet":  NetworkTestnet,
		"Signet":   NetworkSignet,
		" regtest": NetworkRegtest,
	}
	for in, want := range cases {
		got, err := ParseNetwork(in)
		if err != nil {
			t.Fatalf("ParseNetwork(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseNetwork(%q) = %s, want %s", in, got, want)
		}
		if got.Params() == nil {
			t.Errorf("no params for %s", got)
		}
	}

	if _, err := ParseNetwork("litecoin"); !errors.Is(err, ErrInvalidNetwork) {
		t.Errorf("expected ErrInvalidNetwork, got %v", err)
	}
}

func TestCoinType(t *testing.T) {
	if NetworkBitcoin.CoinType() != 0 {
		t.Error("mainnet coin type should be 0")
	}
	for _, n := range []Network{NetworkTestnet, NetworkSignet, NetworkRegtest} {
		if n.CoinType() != 1 {
			t.Errorf("%s coin type should be 1", n)
		}
	}
}
