// Package contract builds collateral multisig descriptors and signs the PSBTs
// that release collateral to the borrower or the lender.
package contract

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lendhub/lendhub-core/common/logger"
	"github.com/lendhub/lendhub-core/wallet"
)

// LegacyScanBound is the number of contract indices (0..99) searched for
// contracts created before derivation paths were recorded. It is part of the
// public contract: keys at index 100 or above are never found by the scan.
const LegacyScanBound = 100

// KeyDeriver is implemented by *wallet.Wallet and *wallet.Handle.
type KeyDeriver interface {
	PrivateKey(path wallet.DerivationPath) (*btcec.PrivateKey, error)
	ContractPath(index uint32) (wallet.DerivationPath, error)
}

type Resolver struct {
	keys KeyDeriver
}

func NewResolver(keys KeyDeriver) *Resolver {
	return &Resolver{keys: keys}
}

// Resolve returns the secret key behind ownPK. With a path, it derives and
// verifies; a mismatch means corrupted contract data. Without a path it falls
// back to ScanLegacy.
func (r *Resolver) Resolve(ownPK *btcec.PublicKey, path wallet.DerivationPath) (*btcec.PrivateKey, error) {
	if ownPK == nil {
		return nil, ErrInvalidPublicKey
	}

	if path == nil {
		priv, _, err := r.ScanLegacy(ownPK)
		return priv, err
	}

	priv, err := r.keys.PrivateKey(path)
	if err != nil {
		return nil, err
	}
	if !priv.PubKey().IsEqual(ownPK) {
		priv.Zero()
		return nil, fmt.Errorf("%w: %s", ErrDerivationMismatch, path)
	}
	return priv, nil
}

// ScanLegacy tries m/586'/{coin}'/i' for i in [0, LegacyScanBound) and returns
// the first key matching ownPK together with its index.
func (r *Resolver) ScanLegacy(ownPK *btcec.PublicKey) (*btcec.PrivateKey, uint32, error) {
	if ownPK == nil {
		return nil, 0, ErrInvalidPublicKey
	}

	for i := uint32(0); i < LegacyScanBound; i++ {
		path, err := r.keys.ContractPath(i)
		if err != nil {
			return nil, 0, err
		}
		priv, err := r.keys.PrivateKey(path)
		if err != nil {
			return nil, 0, err
		}
		if priv.PubKey().IsEqual(ownPK) {
			logger.Debug("legacy key scan matched index ", i)
			return priv, i, nil
		}
		priv.Zero()
	}

	logger.Warn("legacy key scan exhausted ", LegacyScanBound, " indices")
	return nil, 0, fmt.Errorf("%w: not within the first %d contract indices", ErrNoMatchingKey, LegacyScanBound)
}
