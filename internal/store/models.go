package store

import (
	"fmt"
	"strings"
	"time"
)

// EnrichmentStatus tracks the outcome of one enrichment phase for one track.
type EnrichmentStatus string

const (
	EnrichmentPending EnrichmentStatus = "pending"
	EnrichmentSuccess EnrichmentStatus = "success"
	EnrichmentFailed  EnrichmentStatus = "failed"
	EnrichmentNoData  EnrichmentStatus = "no_data"
)

// JobStatus represents the lifecycle state of an enrichment job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

var jobStatusSet = map[JobStatus]struct{}{
	JobQueued:    {},
	JobRunning:   {},
	JobCompleted: {},
	JobFailed:    {},
}

// ParseJobStatus converts a raw string into a JobStatus.
func ParseJobStatus(value string) (JobStatus, error) {
	status := JobStatus(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := jobStatusSet[status]; !ok {
		return "", fmt.Errorf("unknown job status %q", value)
	}
	return status, nil
}

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ContactStage is the pipeline position of an aggregated songwriter.
type ContactStage string

const (
	StageDiscovery    ContactStage = "discovery"
	StageWatch        ContactStage = "watch"
	StageActiveSearch ContactStage = "active_search"
)

// Track is one discovered playlist track for one week, enriched in place by
// the phase executors.
type Track struct {
	ID           int64
	Week         string
	PlaylistID   int64
	PlaylistName string
	TrackName    string
	ArtistName   string
	SourceURL    string
	AlbumArt     string

	CatalogID   string
	ISRC        string
	ExternalURL string
	Popularity  int64
	Label       string
	Publisher   string
	WriterNames string
	Songwriter  string

	MetadataStatus EnrichmentStatus
	CreditsStatus  EnrichmentStatus
	ArtistStatus   EnrichmentStatus
	ChartStatus    EnrichmentStatus
	RegistryStatus EnrichmentStatus

	LastEnrichmentAttempt *time.Time
	ChartUpdatedAt        *time.Time
	RegistrySearched      bool
	RegistryFound         bool
	ISWC                  string

	ChartID      string
	StreamsTotal int64
	StreamsPrev  int64
	Followers    int64
	WowGrowthPct float64
	Momentum     string

	UnsignedScore int
	EnrichedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Playlist is a tracked source playlist.
type Playlist struct {
	ID              int64
	CatalogID       string
	Name            string
	Tracked         bool
	LastCheckedWeek string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Contact aggregates every track attributed to one songwriter.
type Contact struct {
	ID                    int64
	SongwriterName        string
	RegistrySearchedCount int64
	RegistryFoundCount    int64
	TotalStreams          int64
	WowGrowthPct          float64
	Stage                 ContactStage
	HotLead               bool
	UnsignedScore         int
	TrackCount            int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Artist is a canonical performer/songwriter identity resolved through the
// musicological database.
type Artist struct {
	ID        int64
	MusicDBID string
	Name      string
	LinksJSON string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Job is one enrichment request. The track set is immutable once queued and
// terminal rows are never mutated.
type Job struct {
	ID              string
	TrackIDs        []int64
	TargetPhase     string
	CaptureSnapshot bool
	Status          JobStatus
	TracksProcessed int64
	TracksEnriched  int64
	Errors          int64
	ErrorMessage    string
	CreatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// Snapshot is one point-in-time capture of aggregate streaming performance.
type Snapshot struct {
	ID           int64
	CapturedAt   time.Time
	TrackCount   int64
	TotalStreams int64
}

// TrackRow is the shape supplied by the playlist-fetch collaborator for upsert.
type TrackRow struct {
	Week         string
	PlaylistID   int64
	PlaylistName string
	TrackName    string
	ArtistName   string
	SourceURL    string
	AlbumArt     string
	Songwriter   string
}
