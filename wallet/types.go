package wallet

// Contract key derivation: m/586'/{coin}'/{index}', every component hardened.
// coin is 0 on mainnet and 1 on any test network.
const (
	ContractPurpose = 586

	// MnemonicEntropyBits gives 12-word phrases.
	MnemonicEntropyBits = 128

	SaltSize = 32
)
