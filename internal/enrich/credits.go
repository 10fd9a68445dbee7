package enrich

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/services/credits"
	"songscout/internal/store"
)

// CreditsScraper is the scraping surface the credits phase needs.
type CreditsScraper interface {
	Scrape(ctx context.Context, sourceURL string) (*credits.Credits, error)
}

// CreditsPhase scrapes writer and publisher text from track pages.
type CreditsPhase struct {
	store   *store.Store
	scraper CreditsScraper
	logger  *slog.Logger
}

func NewCreditsPhase(st *store.Store, scraper CreditsScraper, logger *slog.Logger) *CreditsPhase {
	return &CreditsPhase{
		store:   st,
		scraper: scraper,
		logger:  logging.NewComponentLogger(logger, "enrich-credits"),
	}
}

func (p *CreditsPhase) Name() string { return PhaseCredits }

// Run scrapes each track in turn. An expired session halts the rest of the
// batch; the session needs operator remediation and further navigations
// would only raise detection risk.
func (p *CreditsPhase) Run(ctx context.Context, tracks []*store.Track) Summary {
	var summary Summary
	for i, track := range tracks {
		if track.SourceURL == "" {
			summary.Skipped++
			continue
		}

		result, err := p.scraper.Scrape(ctx, track.SourceURL)
		if err != nil {
			status := services.StatusForError(err)
			if dbErr := p.store.UpdateTrackCredits(ctx, track.ID, track.WriterNames, track.Publisher, status); dbErr != nil {
				p.logger.Error("persist credits result",
					logging.Int64(logging.FieldTrackID, track.ID), logging.Error(dbErr))
				status = store.EnrichmentFailed
			}
			track.CreditsStatus = status
			summary.record(status)

			if errors.Is(err, services.ErrAuthExpired) {
				p.logger.Warn("halting credits batch on expired session",
					logging.Int("remaining", len(tracks)-i-1))
				summary.Skipped += len(tracks) - i - 1
				return summary
			}
			continue
		}

		writerNames := strings.Join(result.Writers, ", ")
		if dbErr := p.store.UpdateTrackCredits(ctx, track.ID, writerNames, result.Publisher, store.EnrichmentSuccess); dbErr != nil {
			p.logger.Error("persist credits result",
				logging.Int64(logging.FieldTrackID, track.ID), logging.Error(dbErr))
			summary.record(store.EnrichmentFailed)
			continue
		}
		track.WriterNames = writerNames
		track.Publisher = result.Publisher
		if track.Songwriter == "" && len(result.Writers) > 0 {
			track.Songwriter = result.Writers[0]
		}
		track.CreditsStatus = store.EnrichmentSuccess
		summary.record(store.EnrichmentSuccess)
	}
	return summary
}
