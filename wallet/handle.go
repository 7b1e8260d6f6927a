package wallet

import (
	"io"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lendhub/lendhub-core/common/logger"
	prt "github.com/lendhub/lendhub-core/protocol"
)

// Handle owns at most one loaded Wallet for a session. Load and unload are
// exclusive; derivations on a loaded wallet run in parallel.
type Handle struct {
	mu sync.RWMutex
	w  *Wallet
}

func NewHandle() *Handle {
	return &Handle{}
}

// Create builds a wallet from mnemonic, loads it and returns the sealed
// mnemonic for storage.
func (h *Handle) Create(rng io.Reader, mnemonic string, passphrase []byte, network prt.Network) (*MnemonicCiphertext, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.w != nil {
		return nil, ErrWalletAlreadyLoaded
	}

	w, ct, err := New(rng, mnemonic, passphrase, network)
	if err != nil {
		return nil, err
	}
	h.w = w

	logger.Info("wallet created on ", network)
	return ct, nil
}

// Restore decrypts ct and loads the wallet. nextIndex is the first unused
// contract index as persisted by the caller.
func (h *Handle) Restore(ct *MnemonicCiphertext, passphrase []byte, network prt.Network, nextIndex uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.w != nil {
		return ErrWalletAlreadyLoaded
	}

	w, err := FromCiphertext(ct, passphrase, network)
	if err != nil {
		return err
	}
	w.contractIndex = nextIndex
	h.w = w

	logger.Info("wallet restored on ", network, " next contract index ", nextIndex)
	return nil
}

func (h *Handle) Loaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.w != nil
}

// Unload wipes the master key. Unloading an empty handle is a no-op.
func (h *Handle) Unload() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.w == nil {
		return
	}
	h.w.zero()
	h.w = nil
	logger.Info("wallet unloaded")
}

func (h *Handle) Network() (prt.Network, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.w == nil {
		return "", ErrWalletNotLoaded
	}
	return h.w.network, nil
}

func (h *Handle) Mnemonic() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.w == nil {
		return "", ErrWalletNotLoaded
	}
	return h.w.mnemonic, nil
}

func (h *Handle) Xpub() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.w == nil {
		return "", ErrWalletNotLoaded
	}
	return h.w.Xpub()
}

func (h *Handle) ContractIndex() (uint32, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.w == nil {
		return 0, ErrWalletNotLoaded
	}
	return h.w.contractIndex, nil
}

func (h *Handle) ContractPath(index uint32) (DerivationPath, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.w == nil {
		return nil, ErrWalletNotLoaded
	}
	return h.w.ContractPath(index)
}

func (h *Handle) PublicKey(index uint32) (*btcec.PublicKey, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.w == nil {
		return nil, ErrWalletNotLoaded
	}
	return h.w.PublicKey(index)
}

func (h *Handle) PrivateKey(path DerivationPath) (*btcec.PrivateKey, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.w == nil {
		return nil, ErrWalletNotLoaded
	}
	return h.w.PrivateKey(path)
}

// NextPublicKey hands out the key at the current contract index and advances it.
func (h *Handle) NextPublicKey() (DerivationPath, *btcec.PublicKey, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.w == nil {
		return nil, nil, ErrWalletNotLoaded
	}

	path, err := h.w.ContractPath(h.w.contractIndex)
	if err != nil {
		return nil, nil, err
	}
	pk, err := h.w.PublicKeyAt(path)
	if err != nil {
		return nil, nil, err
	}
	h.w.contractIndex++
	return path, pk, nil
}
