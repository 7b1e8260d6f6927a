package storage

import (
	"fmt"
	"path"

	log "github.com/lendhub/lendhub-core/common/logger"
	"github.com/lendhub/lendhub-core/config"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// InitDB opens one database per network so regtest records never mix with mainnet ones.
func InitDB(cfg *config.Config) (*leveldb.DB, error) {
	dbName := fmt.Sprintf("leveldb_%s.db", cfg.Wallet.Network)
	dbPath := path.Join(cfg.DB.Path, dbName)

	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		log.Error("Failed to open db: ", err)
		return nil, err
	}

	log.Info("Successfully opened db: ", dbPath)
	return db, nil
}

// OpenMemDB is used by tests and the CLI self-check.
func OpenMemDB() (*leveldb.DB, error) {
	return leveldb.Open(storage.NewMemStorage(), nil)
}
