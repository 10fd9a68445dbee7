package enrich

import (
	"context"

	"songscout/internal/store"
)

// Phase names, in execution order.
const (
	PhaseMetadata  = "metadata"
	PhaseCredits   = "credits"
	PhaseArtist    = "artist"
	PhaseAnalytics = "analytics"
	PhaseRegistry  = "registry"
)

// Order returns the fixed phase sequence for a full enrichment run.
func Order() []string {
	return []string{PhaseMetadata, PhaseCredits, PhaseArtist, PhaseAnalytics, PhaseRegistry}
}

// ValidPhase reports whether name is a known phase.
func ValidPhase(name string) bool {
	for _, phase := range Order() {
		if phase == name {
			return true
		}
	}
	return false
}

// StatusFor returns the track's outcome for the named phase.
func StatusFor(track *store.Track, phase string) store.EnrichmentStatus {
	switch phase {
	case PhaseMetadata:
		return track.MetadataStatus
	case PhaseCredits:
		return track.CreditsStatus
	case PhaseArtist:
		return track.ArtistStatus
	case PhaseAnalytics:
		return track.ChartStatus
	case PhaseRegistry:
		return track.RegistryStatus
	default:
		return store.EnrichmentPending
	}
}

// Phase is one enrichment step against one external source. A single track's
// failure never aborts the batch.
type Phase interface {
	Name() string
	Run(ctx context.Context, tracks []*store.Track) Summary
}

// Summary is the per-batch outcome of one phase run.
type Summary struct {
	Processed int
	Enriched  int
	Failed    int
	NoData    int
	Skipped   int
}

func (s *Summary) record(status store.EnrichmentStatus) {
	s.Processed++
	switch status {
	case store.EnrichmentSuccess:
		s.Enriched++
	case store.EnrichmentNoData:
		s.NoData++
	default:
		s.Failed++
	}
}

// Merge folds another summary into this one.
func (s *Summary) Merge(other Summary) {
	s.Processed += other.Processed
	s.Enriched += other.Enriched
	s.Failed += other.Failed
	s.NoData += other.NoData
	s.Skipped += other.Skipped
}
