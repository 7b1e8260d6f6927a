package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lendhub/lendhub-core/common/logger"
	"github.com/lendhub/lendhub-core/contract"
	"github.com/lendhub/lendhub-core/kdf"
	prt "github.com/lendhub/lendhub-core/protocol"
	"github.com/lendhub/lendhub-core/storage"
	"github.com/lendhub/lendhub-core/wallet"
)

// Service manages per-user wallets: one Handle per unlocked user, records in the store.
type Service struct {
	store   *storage.WalletStore
	rng     io.Reader
	profile kdf.Profile
	network prt.Network
	limiter *UnlockLimiter

	mu      sync.Mutex
	handles map[string]*wallet.Handle
}

func NewService(store *storage.WalletStore, rng io.Reader, profile kdf.Profile, network prt.Network) *Service {
	return &Service{
		store:   store,
		rng:     rng,
		profile: profile,
		network: network,
		limiter: NewUnlockLimiter(nil, nil),
		handles: make(map[string]*wallet.Handle),
	}
}

func (s *Service) Network() prt.Network {
	return s.network
}

// CreateWallet generates a mnemonic for a new user and returns it for backup.
func (s *Service) CreateWallet(username string, passphrase []byte) (string, error) {
	mnemonic, err := wallet.GenerateMnemonic(s.rng)
	if err != nil {
		return "", err
	}
	if err := s.ImportWallet(username, mnemonic, passphrase); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// ImportWallet stores an existing mnemonic for a new user and leaves the wallet unlocked.
func (s *Service) ImportWallet(username, mnemonic string, passphrase []byte) error {
	username = normalize(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if _, err := s.store.Get(username); err == nil {
		return fmt.Errorf("%w: %s", storage.ErrRecordExists, username)
	}

	hash, err := kdf.HashPassphrase(s.rng, passphrase, s.profile)
	if err != nil {
		return err
	}

	h := wallet.NewHandle()
	ct, err := h.Create(s.rng, mnemonic, passphrase, s.network)
	if err != nil {
		return err
	}

	rec := &storage.WalletRecord{
		Username:     username,
		PasswordHash: hash,
		Ciphertext:   ct.Serialize(),
		Network:      s.network,
	}
	if err := s.store.Create(rec); err != nil {
		h.Unload()
		return err
	}

	s.setHandle(username, h)
	logger.Info("wallet created for ", username, " on ", s.network)
	return nil
}

// Unlock verifies the passphrase against the stored hash, then decrypts and
// loads the wallet with its persisted contract index.
func (s *Service) Unlock(username string, passphrase []byte) (*wallet.Handle, error) {
	username = normalize(username)
	rec, err := s.store.Get(username)
	if err != nil {
		return nil, err
	}
	if rec.Network != s.network {
		return nil, fmt.Errorf("%w: record is for %s, service runs on %s", prt.ErrInvalidNetwork, rec.Network, s.network)
	}

	if err := s.limiter.Allow(username); err != nil {
		logger.Warn("unlock locked out for ", username)
		return nil, err
	}
	if err := kdf.VerifyPassphrase(passphrase, rec.PasswordHash); err != nil {
		if errors.Is(err, kdf.ErrIncorrectPassphrase) {
			s.limiter.Failure(username)
		}
		logger.Warn("unlock rejected for ", username)
		return nil, err
	}
	s.limiter.Success(username)

	ct, err := wallet.ParseMnemonicCiphertext(rec.Ciphertext)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.handles[username]; ok && h.Loaded() {
		return nil, wallet.ErrWalletAlreadyLoaded
	}
	h := wallet.NewHandle()
	if err := h.Restore(ct, passphrase, rec.Network, rec.NextIndex); err != nil {
		return nil, err
	}
	s.handles[username] = h
	logger.Info("wallet unlocked for ", username)
	return h, nil
}

// Handle returns the unlocked wallet of a user.
func (s *Service) Handle(username string) (*wallet.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handles[normalize(username)]
	if !ok || !h.Loaded() {
		return nil, wallet.ErrWalletNotLoaded
	}
	return h, nil
}

// NextContractKey hands out the next contract key and persists the advanced index
// so a key is never reused across restarts.
func (s *Service) NextContractKey(username string) (wallet.DerivationPath, *btcec.PublicKey, error) {
	username = normalize(username)
	h, err := s.Handle(username)
	if err != nil {
		return nil, nil, err
	}

	path, pk, err := h.NextPublicKey()
	if err != nil {
		return nil, nil, err
	}
	next, err := h.ContractIndex()
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.SetNextIndex(username, next); err != nil {
		return nil, nil, err
	}

	logger.Debug("contract key allocated for ", username, " at ", path.String())
	return path, pk, nil
}

// Signer returns a PSBT signer bound to the user's unlocked wallet.
func (s *Service) Signer(username string) (*contract.Signer, error) {
	h, err := s.Handle(username)
	if err != nil {
		return nil, err
	}
	return contract.NewSigner(h), nil
}

func (s *Service) Unload(username string) {
	username = normalize(username)

	s.mu.Lock()
	h, ok := s.handles[username]
	delete(s.handles, username)
	s.mu.Unlock()

	if ok {
		h.Unload()
		logger.Info("wallet unloaded for ", username)
	}
}

// Prune drops stale unlock limiter entries.
func (s *Service) Prune() int {
	return s.limiter.Prune()
}

// UnloadAll is called on shutdown.
func (s *Service) UnloadAll() {
	s.mu.Lock()
	handles := s.handles
	s.handles = make(map[string]*wallet.Handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.Unload()
	}
}

func (s *Service) setHandle(username string, h *wallet.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.handles[username]; ok {
		old.Unload()
	}
	s.handles[username] = h
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
