package enrich

import (
	"context"
	"log/slog"
	"strings"

	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/services/registry"
	"songscout/internal/store"
)

// RegistryLookup is the registry surface the registry phase needs.
type RegistryLookup interface {
	Lookup(ctx context.Context, isrc string) (*registry.Work, error)
}

// RegistryPhase fills authoritative publisher/writer data. Only tracks with
// an ISRC are attempted; the registry keys on recording identity.
type RegistryPhase struct {
	store  *store.Store
	client RegistryLookup
	logger *slog.Logger
}

func NewRegistryPhase(st *store.Store, client RegistryLookup, logger *slog.Logger) *RegistryPhase {
	return &RegistryPhase{
		store:  st,
		client: client,
		logger: logging.NewComponentLogger(logger, "enrich-registry"),
	}
}

func (p *RegistryPhase) Name() string { return PhaseRegistry }

func (p *RegistryPhase) Run(ctx context.Context, tracks []*store.Track) Summary {
	var summary Summary
	for _, track := range tracks {
		if track.ISRC == "" {
			summary.Skipped++
			continue
		}

		work, err := p.client.Lookup(ctx, track.ISRC)
		if err != nil {
			status := services.StatusForError(err)
			if status == store.EnrichmentFailed {
				p.logger.Warn("registry lookup failed",
					logging.Int64(logging.FieldTrackID, track.ID),
					logging.String("isrc", track.ISRC), logging.Error(err))
			}
			// Only a genuine no-match counts as a completed search. A timeout
			// or malformed response leaves the flags alone so the contact
			// rubric does not treat an outage as an empty registry.
			searched := status == store.EnrichmentNoData
			if dbErr := p.store.UpdateTrackRegistry(ctx, track.ID, "", "", "", searched, false, status); dbErr != nil {
				p.logger.Error("persist registry status",
					logging.Int64(logging.FieldTrackID, track.ID), logging.Error(dbErr))
				status = store.EnrichmentFailed
			}
			if searched {
				track.RegistrySearched = true
				track.RegistryFound = false
			}
			track.RegistryStatus = status
			summary.record(status)
			continue
		}

		publisher := strings.Join(work.Publishers, ", ")
		writers := strings.Join(work.Writers, ", ")
		if dbErr := p.store.UpdateTrackRegistry(ctx, track.ID, publisher, writers, work.ISWC, true, true, store.EnrichmentSuccess); dbErr != nil {
			p.logger.Error("persist registry result",
				logging.Int64(logging.FieldTrackID, track.ID), logging.Error(dbErr))
			summary.record(store.EnrichmentFailed)
			continue
		}

		track.RegistrySearched = true
		track.RegistryFound = true
		if publisher != "" {
			track.Publisher = publisher
		}
		if writers != "" {
			track.WriterNames = writers
		}
		track.ISWC = work.ISWC
		track.RegistryStatus = store.EnrichmentSuccess
		summary.record(store.EnrichmentSuccess)

		p.logger.Debug("registry work resolved",
			logging.Int64(logging.FieldTrackID, track.ID),
			logging.String("publisher_status", registry.ClassifyPublisherStatus(work.Publishers)))
	}
	return summary
}
