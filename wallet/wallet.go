// Package wallet holds the BIP39 mnemonic and BIP32 master key of a lending
// client and derives the per-contract keys used in collateral multisigs.
package wallet

import (
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	prt "github.com/lendhub/lendhub-core/protocol"
	"github.com/tyler-smith/go-bip39"
)

// Wallet is a loaded seed. The master key is never serialized.
type Wallet struct {
	mnemonic      string
	xprv          *hdkeychain.ExtendedKey
	network       prt.Network
	contractIndex uint32
}

// GenerateMnemonic draws 128 bits of entropy from rng and returns a 12-word phrase.
func GenerateMnemonic(rng io.Reader) (string, error) {
	entropy := make([]byte, MnemonicEntropyBits/8)
	if _, err := io.ReadFull(rng, entropy); err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// New builds a wallet from mnemonic and seals the mnemonic under a fresh salt.
func New(rng io.Reader, mnemonic string, passphrase []byte, network prt.Network) (*Wallet, *MnemonicCiphertext, error) {
	w, err := fromMnemonic(mnemonic, passphrase, network)
	if err != nil {
		return nil, nil, err
	}

	ct, err := sealMnemonic(rng, w.mnemonic, passphrase)
	if err != nil {
		w.zero()
		return nil, nil, err
	}
	return w, ct, nil
}

// FromCiphertext decrypts a stored mnemonic and rebuilds the master key.
func FromCiphertext(ct *MnemonicCiphertext, passphrase []byte, network prt.Network) (*Wallet, error) {
	if ct == nil {
		return nil, ErrMalformedCiphertext
	}
	if network.Params() == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
	}

	mnemonic, err := ct.open(passphrase)
	if err != nil {
		return nil, err
	}

	w, err := fromMnemonic(mnemonic, passphrase, network)
	if err != nil {
		// an authentic ciphertext always holds a valid phrase
		return nil, ErrIncorrectPassphrase
	}
	return w, nil
}

func fromMnemonic(mnemonic string, passphrase []byte, network prt.Network) (*Wallet, error) {
	params := network.Params()
	if params == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
	}

	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, string(passphrase))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	defer clear(seed)

	xprv, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}

	// Derive lazily caches the parent public key; prime it so concurrent
	// derivations only read the master key.
	if _, err := xprv.ECPubKey(); err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}

	return &Wallet{
		mnemonic: mnemonic,
		xprv:     xprv,
		network:  network,
	}, nil
}

func (w *Wallet) Network() prt.Network {
	return w.network
}

// Mnemonic is for display and backup only. Never log it.
func (w *Wallet) Mnemonic() string {
	return w.mnemonic
}

func (w *Wallet) ContractIndex() uint32 {
	return w.contractIndex
}

// Xpub returns the serialized extended public key of the master node.
func (w *Wallet) Xpub() (string, error) {
	pub, err := w.xprv.Neuter()
	if err != nil {
		return "", fmt.Errorf("failed to neuter master key: %w", err)
	}
	return pub.String(), nil
}

// ContractPath is m/586'/{coin}'/{index}' for this wallet's network.
func (w *Wallet) ContractPath(index uint32) (DerivationPath, error) {
	return ContractPath(w.network, index)
}

func (w *Wallet) deriveKey(path DerivationPath) (*hdkeychain.ExtendedKey, error) {
	key := w.xprv
	for _, idx := range path {
		child, err := key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", path, err)
		}
		key = child
	}
	return key, nil
}

// PrivateKey derives the secret key at path.
func (w *Wallet) PrivateKey(path DerivationPath) (*btcec.PrivateKey, error) {
	key, err := w.deriveKey(path)
	if err != nil {
		return nil, err
	}
	return key.ECPrivKey()
}

// PublicKeyAt derives the public key at path.
func (w *Wallet) PublicKeyAt(path DerivationPath) (*btcec.PublicKey, error) {
	key, err := w.deriveKey(path)
	if err != nil {
		return nil, err
	}
	return key.ECPubKey()
}

// PublicKey returns the contract key at index. Same index, same key.
func (w *Wallet) PublicKey(index uint32) (*btcec.PublicKey, error) {
	path, err := w.ContractPath(index)
	if err != nil {
		return nil, err
	}
	return w.PublicKeyAt(path)
}

func (w *Wallet) zero() {
	if w.xprv != nil {
		w.xprv.Zero()
	}
	w.mnemonic = ""
}
