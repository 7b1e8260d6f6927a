package protocol

const (
	// Wallet record prefixes
	PrefixWallet = "wallet:" // wallet:Username = WalletRecord json
)
