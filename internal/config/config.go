package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Catalog contains configuration for the streaming catalog API.
type Catalog struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	Market         string `toml:"market"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BatchSize      int    `toml:"batch_size"`
}

// Credits contains configuration for the browser-driven credits scraper.
type Credits struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	CookiesPath    string `toml:"cookies_path"`
	NavTimeout     int    `toml:"nav_timeout"`
	Headless       bool   `toml:"headless"`
	SessionTimeout int    `toml:"session_timeout"`
}

// MusicDB contains configuration for the musicological database API.
type MusicDB struct {
	BaseURL             string  `toml:"base_url"`
	UserAgent           string  `toml:"user_agent"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Chart contains configuration for the charting/analytics API.
type Chart struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	StalenessDays  int    `toml:"staleness_days"`
}

// Registry portal fallback policies.
const (
	FallbackAlways     = "always"
	FallbackNoDataOnly = "no-data-only"
)

// Registry contains configuration for the mechanical-licensing registry.
type Registry struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	BaseURL        string `toml:"base_url"`
	PortalURL      string `toml:"portal_url"`
	FallbackPolicy string `toml:"fallback_policy"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Vault contains configuration for the credential vault.
type Vault struct {
	Secret    string `toml:"secret"`
	TokenPath string `toml:"token_path"`
}

// Scheduler contains cadence configuration for the three recurring jobs.
type Scheduler struct {
	Enabled           bool   `toml:"enabled"`
	PlaylistCron      string `toml:"playlist_cron"`
	RetryCron         string `toml:"retry_cron"`
	SnapshotCron      string `toml:"snapshot_cron"`
	PlaylistBatchSize int    `toml:"playlist_batch_size"`
	RetryBatchSize    int    `toml:"retry_batch_size"`
	RetryAgeDays      int    `toml:"retry_age_days"`
	SnapshotChunkSize int    `toml:"snapshot_chunk_size"`
}

// Workflow contains daemon timing and concurrency settings.
type Workflow struct {
	QueuePollInterval int `toml:"queue_poll_interval"`
	EnrichConcurrency int `toml:"enrich_concurrency"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	JobStarted     bool   `toml:"job_started"`
	JobCompleted   bool   `toml:"job_completed"`
	TrackEnriched  bool   `toml:"track_enriched"`
	Errors         bool   `toml:"errors"`
}

// Config encapsulates all configuration values for Songscout.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Catalog: streaming catalog API credentials
//   - Credits: browser-driven credits scraper
//   - MusicDB: musicological database API
//   - Chart: charting/analytics API
//   - Registry: mechanical-licensing registry API + portal fallback
//   - Vault: credential vault secret and token file
//   - Scheduler: recurring job cadences and batch caps
//   - Workflow: queue polling and enrichment concurrency
//   - Logging: log format, level, and retention
//   - Notifications: ntfy push notification settings
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	Credits       Credits       `toml:"credits"`
	MusicDB       MusicDB       `toml:"musicdb"`
	Chart         Chart         `toml:"chart"`
	Registry      Registry      `toml:"registry"`
	Vault         Vault         `toml:"vault"`
	Scheduler     Scheduler     `toml:"scheduler"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/songscout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/songscout/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("songscout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the sqlite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "songscout.db")
}

// AuthStatePath returns the location of the persisted auth-health record.
func (c *Config) AuthStatePath() string {
	return filepath.Join(c.Paths.DataDir, "auth_status.json")
}

// LockPath returns the location of the daemon singleton lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "songscout.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
