package protocol

// Salt is the per-wallet random salt that keys the mnemonic encryption.
type Salt [32]byte
