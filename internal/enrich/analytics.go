package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"songscout/internal/logging"
	"songscout/internal/scoring"
	"songscout/internal/services"
	"songscout/internal/services/chartdata"
	"songscout/internal/store"
)

// AnalyticsClient is the charting surface the analytics phase needs.
type AnalyticsClient interface {
	GetTrackStats(ctx context.Context, isrc string) (*chartdata.Stats, error)
}

// AnalyticsPhase fills streaming metrics for tracks with an ISRC that never
// had a successful pass or whose last pass is older than the staleness
// threshold. Lookups run with bounded parallelism.
type AnalyticsPhase struct {
	store       *store.Store
	client      AnalyticsClient
	logger      *slog.Logger
	concurrency int
	staleAfter  time.Duration
}

func NewAnalyticsPhase(st *store.Store, client AnalyticsClient, concurrency, stalenessDays int, logger *slog.Logger) *AnalyticsPhase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AnalyticsPhase{
		store:       st,
		client:      client,
		logger:      logging.NewComponentLogger(logger, "enrich-analytics"),
		concurrency: concurrency,
		staleAfter:  time.Duration(stalenessDays) * 24 * time.Hour,
	}
}

func (p *AnalyticsPhase) Name() string { return PhaseAnalytics }

func (p *AnalyticsPhase) Run(ctx context.Context, tracks []*store.Track) Summary {
	var summary Summary
	var eligible []*store.Track
	for _, track := range tracks {
		if p.needsRefresh(track) {
			eligible = append(eligible, track)
		} else {
			summary.Skipped++
		}
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.concurrency)
	)
	for _, track := range eligible {
		wg.Add(1)
		sem <- struct{}{}
		go func(track *store.Track) {
			defer wg.Done()
			defer func() { <-sem }()

			status := p.enrichOne(ctx, track)
			mu.Lock()
			summary.record(status)
			mu.Unlock()
		}(track)
	}
	wg.Wait()
	return summary
}

func (p *AnalyticsPhase) needsRefresh(track *store.Track) bool {
	if track.ISRC == "" {
		return false
	}
	if track.ChartStatus != store.EnrichmentSuccess {
		return true
	}
	return track.ChartUpdatedAt == nil || time.Since(*track.ChartUpdatedAt) > p.staleAfter
}

func (p *AnalyticsPhase) enrichOne(ctx context.Context, track *store.Track) store.EnrichmentStatus {
	stats, err := p.client.GetTrackStats(ctx, track.ISRC)
	if err != nil {
		status := services.StatusForError(err)
		if status == store.EnrichmentFailed {
			p.logger.Warn("analytics lookup failed",
				logging.Int64(logging.FieldTrackID, track.ID), logging.Error(err))
		}
		if dbErr := p.store.UpdateTrackAnalytics(ctx, track.ID,
			track.ChartID, track.StreamsTotal, track.StreamsPrev, track.Followers,
			track.WowGrowthPct, track.Momentum, status); dbErr != nil {
			p.logger.Error("persist analytics status",
				logging.Int64(logging.FieldTrackID, track.ID), logging.Error(dbErr))
			status = store.EnrichmentFailed
		}
		track.ChartStatus = status
		return status
	}

	momentum := scoring.ClassifyMomentum(stats.WowGrowthPct)
	if dbErr := p.store.UpdateTrackAnalytics(ctx, track.ID,
		stats.ChartID, stats.StreamsTotal, stats.StreamsPrev, stats.Followers,
		stats.WowGrowthPct, momentum, store.EnrichmentSuccess); dbErr != nil {
		p.logger.Error("persist analytics result",
			logging.Int64(logging.FieldTrackID, track.ID), logging.Error(dbErr))
		track.ChartStatus = store.EnrichmentFailed
		return store.EnrichmentFailed
	}

	track.ChartID = stats.ChartID
	track.StreamsTotal = stats.StreamsTotal
	track.StreamsPrev = stats.StreamsPrev
	track.Followers = stats.Followers
	track.WowGrowthPct = stats.WowGrowthPct
	track.Momentum = momentum
	track.ChartStatus = store.EnrichmentSuccess
	return store.EnrichmentSuccess
}
