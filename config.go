package waymark

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/louisbranch/waymark/grant"
	"github.com/louisbranch/waymark/oracle"
	"github.com/louisbranch/waymark/storage/sqlite"
)

// EnvStorePath names the environment variable holding the SQLite store path.
const EnvStorePath = "WAYMARK_STORE_PATH"

// moduleEnv holds raw env values before post-parse validation.
type moduleEnv struct {
	StorePath string `env:"WAYMARK_STORE_PATH"`
}

// Config carries everything needed to assemble a SQLite-backed module.
type Config struct {
	// StorePath is the SQLite database path.
	StorePath string
	// Grants configures posting-grant verification.
	Grants grant.Config
}

// LoadConfigFromEnv reads module configuration from WAYMARK_* variables.
// now feeds grant expiry checks; nil defaults to time.Now.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw moduleEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse module env: %w", err)
	}
	storePath := strings.TrimSpace(raw.StorePath)
	if storePath == "" {
		return Config{}, fmt.Errorf("WAYMARK_STORE_PATH is required")
	}

	grants, err := grant.LoadConfigFromEnv(now)
	if err != nil {
		return Config{}, err
	}

	return Config{
		StorePath: storePath,
		Grants:    grants,
	}, nil
}

// Open assembles a SQLite-backed module at cfg.StorePath. The returned module
// owns the store; Close releases it.
func Open(cfg Config, reserves oracle.ReserveOracle, opts ...Option) (*Module, error) {
	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	m, err := New(store, reserves, cfg.Grants, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return m, nil
}
