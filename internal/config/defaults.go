package config

const (
	defaultDataDir             = "~/.local/share/songscout"
	defaultLogDir              = "~/.local/share/songscout/logs"
	defaultLogRetentionDays    = 60
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultCatalogMarket       = "US"
	defaultCatalogTimeout      = 30
	defaultCatalogBatchSize    = 50
	defaultCreditsBaseURL      = "https://open.spotify.com"
	defaultCreditsNavTimeout   = 45
	defaultCreditsSession      = 300
	defaultMusicDBBaseURL      = "https://musicbrainz.org/ws/2"
	defaultMusicDBUserAgent    = "Songscout/dev ( https://github.com/songscout/songscout )"
	defaultMusicDBTimeout      = 20
	defaultMusicDBSimilarity   = 0.85
	defaultChartBaseURL        = "https://api.chartmetric.com/api"
	defaultChartTimeout        = 30
	defaultChartStalenessDays  = 7
	defaultRegistryBaseURL     = "https://api.themlc.com"
	defaultRegistryPortalURL   = "https://portal.themlc.com/search"
	defaultRegistryTimeout     = 30
	defaultFallbackPolicy      = FallbackAlways
	defaultVaultTokenFile      = "token.enc"
	defaultPlaylistCron        = "*/15 2-6 * * MON"
	defaultRetryCron           = "30 4 * * *"
	defaultSnapshotCron        = "0 6 * * MON"
	defaultPlaylistBatchSize   = 4
	defaultRetryBatchSize      = 100
	defaultRetryAgeDays        = 7
	defaultSnapshotChunkSize   = 50
	defaultQueuePollInterval   = 5
	defaultEnrichConcurrency   = 3
	defaultNotifyTimeout       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			Market:         defaultCatalogMarket,
			TimeoutSeconds: defaultCatalogTimeout,
			BatchSize:      defaultCatalogBatchSize,
		},
		Credits: Credits{
			Enabled:        true,
			BaseURL:        defaultCreditsBaseURL,
			NavTimeout:     defaultCreditsNavTimeout,
			Headless:       true,
			SessionTimeout: defaultCreditsSession,
		},
		MusicDB: MusicDB{
			BaseURL:             defaultMusicDBBaseURL,
			UserAgent:           defaultMusicDBUserAgent,
			TimeoutSeconds:      defaultMusicDBTimeout,
			SimilarityThreshold: defaultMusicDBSimilarity,
		},
		Chart: Chart{
			BaseURL:        defaultChartBaseURL,
			TimeoutSeconds: defaultChartTimeout,
			StalenessDays:  defaultChartStalenessDays,
		},
		Registry: Registry{
			BaseURL:        defaultRegistryBaseURL,
			PortalURL:      defaultRegistryPortalURL,
			FallbackPolicy: defaultFallbackPolicy,
			TimeoutSeconds: defaultRegistryTimeout,
		},
		Scheduler: Scheduler{
			PlaylistCron:      defaultPlaylistCron,
			RetryCron:         defaultRetryCron,
			SnapshotCron:      defaultSnapshotCron,
			PlaylistBatchSize: defaultPlaylistBatchSize,
			RetryBatchSize:    defaultRetryBatchSize,
			RetryAgeDays:      defaultRetryAgeDays,
			SnapshotChunkSize: defaultSnapshotChunkSize,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
			EnrichConcurrency: defaultEnrichConcurrency,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobStarted:     true,
			JobCompleted:   true,
			Errors:         true,
		},
	}
}
