package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lendhub/lendhub-core/common/utils"
	"github.com/lendhub/lendhub-core/kdf"
	prt "github.com/lendhub/lendhub-core/protocol"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	ErrRecordNotFound = errors.New("wallet record not found")
	ErrRecordExists   = errors.New("wallet record already exists")
)

// WalletRecord is everything persisted per user. The core round-trips it unchanged.
type WalletRecord struct {
	Username     string           `json:"username"`
	PasswordHash kdf.PasswordHash `json:"passwordHash"`
	Ciphertext   string           `json:"ciphertext"` // hex(salt)$hex(ct)
	Network      prt.Network      `json:"network"`
	NextIndex    uint32           `json:"nextIndex"` // next unused contract index
	CreatedAt    int64            `json:"createdAt"`
	UpdatedAt    int64            `json:"updatedAt"`
}

type WalletStore struct {
	mu sync.Mutex
	db *leveldb.DB
}

func NewWalletStore(db *leveldb.DB) *WalletStore {
	return &WalletStore{db: db}
}

// Get 사용자 지갑 레코드 조회
func (p *WalletStore) Get(username string) (*WalletRecord, error) {
	data, err := p.db.Get(utils.GetWalletKey(username), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, username)
		}
		return nil, fmt.Errorf("failed to get wallet record: %w", err)
	}

	var rec WalletRecord
	if err := utils.DeserializeData(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize wallet record: %w", err)
	}
	return &rec, nil
}

// Create stores a new record and fails if the user already has one.
func (p *WalletStore) Create(rec *WalletRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := utils.GetWalletKey(rec.Username)
	exists, err := p.db.Has(key, nil)
	if err != nil {
		return fmt.Errorf("failed to check wallet record: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrRecordExists, rec.Username)
	}

	now := time.Now().Unix()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return p.save(key, rec)
}

// SetNextIndex persists the contract index counter.
func (p *WalletStore) SetNextIndex(username string, next uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, err := p.Get(username)
	if err != nil {
		return err
	}
	if next < rec.NextIndex {
		return fmt.Errorf("contract index would move backwards: %d < %d", next, rec.NextIndex)
	}
	rec.NextIndex = next
	rec.UpdatedAt = time.Now().Unix()
	return p.save(utils.GetWalletKey(username), rec)
}

func (p *WalletStore) Delete(username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.db.Delete(utils.GetWalletKey(username), nil); err != nil {
		return fmt.Errorf("failed to delete wallet record: %w", err)
	}
	return nil
}

// List returns all records in key order.
func (p *WalletStore) List() ([]*WalletRecord, error) {
	iter := p.db.NewIterator(util.BytesPrefix([]byte(prt.PrefixWallet)), nil)
	defer iter.Release()

	var recs []*WalletRecord
	for iter.Next() {
		var rec WalletRecord
		if err := utils.DeserializeData(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("failed to deserialize wallet record %s: %w", iter.Key(), err)
		}
		recs = append(recs, &rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet records: %w", err)
	}
	return recs, nil
}

func (p *WalletStore) save(key []byte, rec *WalletRecord) error {
	data, err := utils.SerializeData(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize wallet record: %w", err)
	}
	if err := p.db.Put(key, data, nil); err != nil {
		return fmt.Errorf("failed to save wallet record: %w", err)
	}
	return nil
}
