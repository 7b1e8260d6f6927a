package contract

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatchingKey      = errors.New("no matching key")
	ErrDerivationMismatch = fmt.Errorf("%w: derivation path does not yield the contract key", ErrNoMatchingKey)
	ErrInvalidPublicKey   = errors.New("invalid public key")
	ErrInvalidDescriptor  = errors.New("invalid descriptor")
	ErrKeyNotInDescriptor = errors.New("key is not part of the contract descriptor")
	ErrMalformedPsbt      = errors.New("malformed psbt")
	ErrNoContractInput    = errors.New("psbt has no input spending the contract")
	ErrFinalize           = errors.New("failed to finalize psbt")
	ErrInvalidSignature   = fmt.Errorf("%w: contract input fails script verification", ErrFinalize)
)
