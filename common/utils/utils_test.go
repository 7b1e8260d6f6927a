package utils

import (
	"bytes"
	"testing"
)

func TestHexToBytes(t *testing.T) {
	b, err := HexToBytes("0xDEADbeef")
	if err != nil {
		t.Fatalf("HexToBytes: %v", err)
	}
	if !bytes.Equal(b, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("unexpected bytes %x", b)
	}
	if BytesToHex(b) != "deadbeef" {
		t.Errorf("expected lowercase hex, got %s", BytesToHex(b))
	}

	if _, err := HexToBytes("zz"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestHexToFixedBytes(t *testing.T) {
	if _, err := HexToFixedBytes("0011", 3); err == nil {
		t.Error("expected length error")
	}
	if _, err := HexToFixedBytes("001122", 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWalletKey(t *testing.T) {
	key := GetWalletKey("Alice")
	if string(key) != "wallet:alice" {
		t.Errorf("unexpected key %s", key)
	}
	if UsernameFromWalletKey(key) != "alice" {
		t.Errorf("unexpected username %s", UsernameFromWalletKey(key))
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/lender")

	cases := map[string]string{
		"~":               "/home/lender",
		"~/.lendhub/db/":  "/home/lender/.lendhub/db",
		"/var/lib/lend":   "/var/lib/lend",
		"relative/~/path": "relative/~/path",
	}
	for in, want := range cases {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
