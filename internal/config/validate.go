package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRegistry(); err != nil {
		return err
	}
	if err := c.validateVault(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.ClientID == "" || c.Catalog.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/songscout/config.toml"
		}
		return fmt.Errorf("catalog.client_id and catalog.client_secret are required. Set SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET env vars or edit %s (create with 'songscout config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateRegistry() error {
	switch c.Registry.FallbackPolicy {
	case FallbackAlways, FallbackNoDataOnly:
	default:
		return fmt.Errorf("registry.fallback_policy must be \"always\" or \"no-data-only\", got %q", c.Registry.FallbackPolicy)
	}
	return nil
}

func (c *Config) validateVault() error {
	if c.Credits.Enabled && strings.TrimSpace(c.Vault.Secret) == "" {
		return errors.New("vault.secret must be set when credits.enabled is true (or set SONGSCOUT_VAULT_SECRET)")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if err := ensurePositiveMap(map[string]int{
		"scheduler.playlist_batch_size": c.Scheduler.PlaylistBatchSize,
		"scheduler.retry_batch_size":    c.Scheduler.RetryBatchSize,
		"scheduler.retry_age_days":      c.Scheduler.RetryAgeDays,
		"scheduler.snapshot_chunk_size": c.Scheduler.SnapshotChunkSize,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval": c.Workflow.QueuePollInterval,
		"workflow.enrich_concurrency":  c.Workflow.EnrichConcurrency,
		"catalog.timeout_seconds":      c.Catalog.TimeoutSeconds,
		"credits.nav_timeout":          c.Credits.NavTimeout,
		"musicdb.timeout_seconds":      c.MusicDB.TimeoutSeconds,
		"chart.timeout_seconds":        c.Chart.TimeoutSeconds,
		"registry.timeout_seconds":     c.Registry.TimeoutSeconds,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
