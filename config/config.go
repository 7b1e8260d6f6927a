package config

import (
	"fmt"
	"os"
	"path"

	"github.com/kelseyhightower/envconfig"
	"github.com/lendhub/lendhub-core/common/utils"
	"github.com/naoina/toml"
)

type Common struct {
	Level       string // local, alpha, prod
	ServiceName string
}

type LogInfo struct {
	Path       string
	MaxAgeHour int
	RotateHour int
}

type DB struct {
	Path string
}

type Wallet struct {
	Network    string `toml:"network"`    // bitcoin, testnet, signet, regtest
	KdfProfile string `toml:"kdfProfile"` // production, fast-test
}

type Srp struct {
	SessionTTLSeconds int `toml:"sessionTTLSeconds"`
}

type Config struct {
	Common  Common
	LogInfo LogInfo
	DB      DB
	Wallet  Wallet
	Srp     Srp
}

// Overrides are read from LENDHUB_* environment variables after the file is decoded.
type Overrides struct {
	Level      string `envconfig:"LEVEL"`
	DBPath     string `envconfig:"DB_PATH"`
	LogPath    string `envconfig:"LOG_PATH"`
	Network    string `envconfig:"NETWORK"`
	KdfProfile string `envconfig:"KDF_PROFILE"`
}

const envPrefix = "LENDHUB"

func NewConfig(filepath string) (*Config, error) {
	if filepath == "" {
		workDir, _ := os.Getwd()
		rootDir := utils.FindConfigRoot(workDir)
		filepath = path.Join(rootDir, "config", "config.toml")
	}

	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	c := new(Config)
	if err := toml.NewDecoder(file).Decode(c); err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.sanitize()
	return c, nil
}

func (p *Config) applyEnv() error {
	var o Overrides
	if err := envconfig.Process(envPrefix, &o); err != nil {
		return fmt.Errorf("failed to process env overrides: %w", err)
	}

	if o.Level != "" {
		p.Common.Level = o.Level
	}
	if o.DBPath != "" {
		p.DB.Path = o.DBPath
	}
	if o.LogPath != "" {
		p.LogInfo.Path = o.LogPath
	}
	if o.Network != "" {
		p.Wallet.Network = o.Network
	}
	if o.KdfProfile != "" {
		p.Wallet.KdfProfile = o.KdfProfile
	}
	return nil
}

// validate rejects configs that would silently fall back to a default KDF profile.
func (p *Config) validate() error {
	if p.Wallet.KdfProfile == "" {
		return fmt.Errorf("wallet.kdfProfile must be set explicitly")
	}
	if p.Wallet.Network == "" {
		return fmt.Errorf("wallet.network must be set")
	}
	if p.Srp.SessionTTLSeconds <= 0 {
		p.Srp.SessionTTLSeconds = 120
	}
	return nil
}

func (p *Config) sanitize() {
	p.LogInfo.Path = utils.ExpandHome(p.LogInfo.Path)
	p.DB.Path = utils.ExpandHome(p.DB.Path)
}
