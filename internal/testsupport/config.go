package testsupport

import (
	"path/filepath"
	"testing"

	"songscout/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.ClientID = "test-id"
	cfg.Catalog.ClientSecret = "test-secret"
	cfg.Vault.Secret = "test-vault-secret-long-enough"
	cfg.Vault.TokenPath = filepath.Join(base, "data", "token.enc")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSchedulerEnabled flips the scheduler enable gate on the test config.
func WithSchedulerEnabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scheduler.Enabled = true
	}
}

// WithVaultSecret overrides the vault secret on the test config.
func WithVaultSecret(secret string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Vault.Secret = secret
	}
}
