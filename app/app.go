package app

import (
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lendhub/lendhub-core/common/logger"
	conf "github.com/lendhub/lendhub-core/config"
	"github.com/lendhub/lendhub-core/kdf"
	prt "github.com/lendhub/lendhub-core/protocol"
	"github.com/lendhub/lendhub-core/srp"
	"github.com/lendhub/lendhub-core/storage"
	"github.com/syndtr/goleveldb/leveldb"
)

type App struct {
	stop    chan struct{}
	Conf    conf.Config
	DB      *leveldb.DB // Mutex within db should not be copied
	Network prt.Network
	Wallets *Service
	Auth    *srp.Authenticator
}

// New loads the config at configPath. debug switches logging to the alpha
// level with a console tee.
func New(configPath string, debug bool) (*App, error) {
	cfg, err := conf.NewConfig(configPath)
	if err != nil {
		fmt.Println("Failed to initialized application: ", err)
		return nil, err
	}
	if debug {
		cfg.Common.Level = "alpha"
	}

	if err := logger.InitLogger(cfg); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return nil, err
	}

	db, err := storage.InitDB(cfg)
	if err != nil {
		logger.Error("Failed to load db: ", err)
		return nil, err
	}

	app, err := NewWithDB(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

// NewWithDB wires the services on an already opened database.
func NewWithDB(cfg *conf.Config, db *leveldb.DB) (*App, error) {
	network, err := prt.ParseNetwork(cfg.Wallet.Network)
	if err != nil {
		logger.Error("Invalid network in config: ", err)
		return nil, err
	}
	profile, err := kdf.ParseProfile(cfg.Wallet.KdfProfile)
	if err != nil {
		logger.Error("Invalid kdf profile in config: ", err)
		return nil, err
	}
	if profile != kdf.ProfileProduction {
		logger.Warn("kdf profile ", profile, " is for tests only")
	}

	ttl := time.Duration(cfg.Srp.SessionTTLSeconds) * time.Second

	return &App{
		stop:    make(chan struct{}),
		Conf:    *cfg,
		DB:      db,
		Network: network,
		Wallets: NewService(storage.NewWalletStore(db), rand.Reader, profile, network),
		Auth:    srp.NewAuthenticator(rand.Reader, ttl),
	}, nil
}

// StartPruner drops expired SRP login attempts and stale unlock limits until Terminate.
func (p *App) StartPruner(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				if n := p.Auth.Prune(); n > 0 {
					logger.Debug("pruned expired srp attempts: ", n)
				}
				p.Wallets.Prune()
			}
		}
	}()
}

// Cleanup unloads every wallet and closes the db.
func (p *App) Cleanup() {
	if p.Wallets != nil {
		p.Wallets.UnloadAll()
	}

	if p.DB != nil {
		if err := p.DB.Close(); err != nil {
			logger.Error("Error closing DB connection:", err)
		}
	}

	logger.Info("All resources cleaned up")
	logger.Sync()
}

func (p *App) Wait() {
	<-p.stop
}

func (p *App) Terminate() {
	select {
	case <-p.stop:
		return
	default:
	}
	p.Cleanup()
	close(p.stop)
}

func (p *App) SigHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Arrived terminate signal: ", sig)
		p.Terminate()
	}()
}
