package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeCredits()
	c.normalizeMusicDB()
	c.normalizeChart()
	c.normalizeRegistry()
	if err := c.normalizeVault(); err != nil {
		return err
	}
	c.normalizeScheduler()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.ClientID = strings.TrimSpace(c.Catalog.ClientID)
	if c.Catalog.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Catalog.ClientID = strings.TrimSpace(value)
		}
	}
	c.Catalog.ClientSecret = strings.TrimSpace(c.Catalog.ClientSecret)
	if c.Catalog.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Catalog.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Catalog.Market = strings.ToUpper(strings.TrimSpace(c.Catalog.Market))
	if c.Catalog.Market == "" {
		c.Catalog.Market = defaultCatalogMarket
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeout
	}
	if c.Catalog.BatchSize <= 0 || c.Catalog.BatchSize > 50 {
		c.Catalog.BatchSize = defaultCatalogBatchSize
	}
}

func (c *Config) normalizeCredits() {
	c.Credits.BaseURL = strings.TrimRight(strings.TrimSpace(c.Credits.BaseURL), "/")
	if c.Credits.BaseURL == "" {
		c.Credits.BaseURL = defaultCreditsBaseURL
	}
	c.Credits.CookiesPath = strings.TrimSpace(c.Credits.CookiesPath)
	if c.Credits.NavTimeout <= 0 {
		c.Credits.NavTimeout = defaultCreditsNavTimeout
	}
	if c.Credits.SessionTimeout <= 0 {
		c.Credits.SessionTimeout = defaultCreditsSession
	}
}

func (c *Config) normalizeMusicDB() {
	c.MusicDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicDB.BaseURL), "/")
	if c.MusicDB.BaseURL == "" {
		c.MusicDB.BaseURL = defaultMusicDBBaseURL
	}
	c.MusicDB.UserAgent = strings.TrimSpace(c.MusicDB.UserAgent)
	if c.MusicDB.UserAgent == "" {
		c.MusicDB.UserAgent = defaultMusicDBUserAgent
	}
	if c.MusicDB.TimeoutSeconds <= 0 {
		c.MusicDB.TimeoutSeconds = defaultMusicDBTimeout
	}
	if c.MusicDB.SimilarityThreshold <= 0 || c.MusicDB.SimilarityThreshold > 1 {
		c.MusicDB.SimilarityThreshold = defaultMusicDBSimilarity
	}
}

func (c *Config) normalizeChart() {
	c.Chart.APIKey = strings.TrimSpace(c.Chart.APIKey)
	if c.Chart.APIKey == "" {
		if value, ok := os.LookupEnv("CHARTMETRIC_API_KEY"); ok {
			c.Chart.APIKey = strings.TrimSpace(value)
		}
	}
	c.Chart.BaseURL = strings.TrimRight(strings.TrimSpace(c.Chart.BaseURL), "/")
	if c.Chart.BaseURL == "" {
		c.Chart.BaseURL = defaultChartBaseURL
	}
	if c.Chart.TimeoutSeconds <= 0 {
		c.Chart.TimeoutSeconds = defaultChartTimeout
	}
	if c.Chart.StalenessDays <= 0 {
		c.Chart.StalenessDays = defaultChartStalenessDays
	}
}

func (c *Config) normalizeRegistry() {
	c.Registry.ClientID = strings.TrimSpace(c.Registry.ClientID)
	if c.Registry.ClientID == "" {
		if value, ok := os.LookupEnv("MLC_CLIENT_ID"); ok {
			c.Registry.ClientID = strings.TrimSpace(value)
		}
	}
	c.Registry.ClientSecret = strings.TrimSpace(c.Registry.ClientSecret)
	if c.Registry.ClientSecret == "" {
		if value, ok := os.LookupEnv("MLC_CLIENT_SECRET"); ok {
			c.Registry.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Registry.BaseURL = strings.TrimRight(strings.TrimSpace(c.Registry.BaseURL), "/")
	if c.Registry.BaseURL == "" {
		c.Registry.BaseURL = defaultRegistryBaseURL
	}
	c.Registry.PortalURL = strings.TrimSpace(c.Registry.PortalURL)
	if c.Registry.PortalURL == "" {
		c.Registry.PortalURL = defaultRegistryPortalURL
	}
	c.Registry.FallbackPolicy = strings.ToLower(strings.TrimSpace(c.Registry.FallbackPolicy))
	if c.Registry.FallbackPolicy == "" {
		c.Registry.FallbackPolicy = defaultFallbackPolicy
	}
	if c.Registry.TimeoutSeconds <= 0 {
		c.Registry.TimeoutSeconds = defaultRegistryTimeout
	}
}

func (c *Config) normalizeVault() error {
	c.Vault.Secret = strings.TrimSpace(c.Vault.Secret)
	if c.Vault.Secret == "" {
		if value, ok := os.LookupEnv("SONGSCOUT_VAULT_SECRET"); ok {
			c.Vault.Secret = strings.TrimSpace(value)
		}
	}
	c.Vault.TokenPath = strings.TrimSpace(c.Vault.TokenPath)
	if c.Vault.TokenPath == "" {
		c.Vault.TokenPath = filepath.Join(c.Paths.DataDir, defaultVaultTokenFile)
	}
	var err error
	if c.Vault.TokenPath, err = expandPath(c.Vault.TokenPath); err != nil {
		return fmt.Errorf("vault.token_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeScheduler() {
	c.Scheduler.PlaylistCron = strings.TrimSpace(c.Scheduler.PlaylistCron)
	if c.Scheduler.PlaylistCron == "" {
		c.Scheduler.PlaylistCron = defaultPlaylistCron
	}
	c.Scheduler.RetryCron = strings.TrimSpace(c.Scheduler.RetryCron)
	if c.Scheduler.RetryCron == "" {
		c.Scheduler.RetryCron = defaultRetryCron
	}
	c.Scheduler.SnapshotCron = strings.TrimSpace(c.Scheduler.SnapshotCron)
	if c.Scheduler.SnapshotCron == "" {
		c.Scheduler.SnapshotCron = defaultSnapshotCron
	}
	if c.Scheduler.PlaylistBatchSize <= 0 {
		c.Scheduler.PlaylistBatchSize = defaultPlaylistBatchSize
	}
	if c.Scheduler.RetryBatchSize <= 0 {
		c.Scheduler.RetryBatchSize = defaultRetryBatchSize
	}
	if c.Scheduler.RetryAgeDays <= 0 {
		c.Scheduler.RetryAgeDays = defaultRetryAgeDays
	}
	if c.Scheduler.SnapshotChunkSize <= 0 {
		c.Scheduler.SnapshotChunkSize = defaultSnapshotChunkSize
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.EnrichConcurrency <= 0 {
		c.Workflow.EnrichConcurrency = defaultEnrichConcurrency
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
