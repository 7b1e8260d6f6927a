package wallet

import (
	"errors"

	"github.com/lendhub/lendhub-core/kdf"
	prt "github.com/lendhub/lendhub-core/protocol"
)

var (
	ErrWalletAlreadyLoaded = errors.New("wallet already loaded")
	ErrWalletNotLoaded     = errors.New("wallet not loaded")
	ErrMalformedCiphertext = errors.New("malformed mnemonic ciphertext")
	ErrInvalidMnemonic     = errors.New("invalid mnemonic")
	ErrInvalidPath         = errors.New("invalid derivation path")

	// ErrIncorrectPassphrase is shared with kdf so a failed hash check and a
	// failed decryption render the same way.
	ErrIncorrectPassphrase = kdf.ErrIncorrectPassphrase
	ErrInvalidNetwork      = prt.ErrInvalidNetwork
)
