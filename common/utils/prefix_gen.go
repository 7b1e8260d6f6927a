package utils

import (
	"strings"

	prt "github.com/lendhub/lendhub-core/protocol"
)

// "wallet:"
func GetWalletKey(username string) []byte {
	return []byte(prt.PrefixWallet + strings.ToLower(username))
}

// UsernameFromWalletKey is the inverse of GetWalletKey.
func UsernameFromWalletKey(key []byte) string {
	return strings.TrimPrefix(string(key), prt.PrefixWallet)
}
