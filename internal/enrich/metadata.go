package enrich

import (
	"context"
	"log/slog"

	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/services/catalog"
	"songscout/internal/store"
)

// CatalogClient is the catalog surface the metadata phase needs.
type CatalogClient interface {
	SearchTrack(ctx context.Context, trackName, artistName string) (*catalog.TrackInfo, error)
	GetTracksBatch(ctx context.Context, catalogIDs []string) (map[string]*catalog.TrackInfo, error)
}

// MetadataPhase fills ISRC, external URL, popularity, and label from the
// streaming catalog.
type MetadataPhase struct {
	store   *store.Store
	catalog CatalogClient
	logger  *slog.Logger
}

func NewMetadataPhase(st *store.Store, client CatalogClient, logger *slog.Logger) *MetadataPhase {
	return &MetadataPhase{
		store:   st,
		catalog: client,
		logger:  logging.NewComponentLogger(logger, "enrich-metadata"),
	}
}

func (p *MetadataPhase) Name() string { return PhaseMetadata }

// Run resolves unknown tracks through search and refreshes known ones through
// the batch endpoint. A missing item in a batch response marks only that
// track no_data.
func (p *MetadataPhase) Run(ctx context.Context, tracks []*store.Track) Summary {
	var summary Summary
	var known []*store.Track

	for _, track := range tracks {
		if track.CatalogID != "" {
			known = append(known, track)
			continue
		}
		info, err := p.catalog.SearchTrack(ctx, track.TrackName, track.ArtistName)
		p.apply(ctx, track, info, err, &summary)
	}

	if len(known) == 0 {
		return summary
	}

	ids := make([]string, 0, len(known))
	for _, track := range known {
		ids = append(ids, track.CatalogID)
	}
	infos, err := p.catalog.GetTracksBatch(ctx, ids)
	if err != nil {
		for _, track := range known {
			p.apply(ctx, track, nil, err, &summary)
		}
		return summary
	}
	for _, track := range known {
		info, ok := infos[track.CatalogID]
		if !ok {
			missing := services.Wrap(services.ErrNoData, "catalog", "batch",
				"id absent from batch response", nil)
			p.apply(ctx, track, nil, missing, &summary)
			continue
		}
		p.apply(ctx, track, info, nil, &summary)
	}
	return summary
}

func (p *MetadataPhase) apply(ctx context.Context, track *store.Track, info *catalog.TrackInfo, err error, summary *Summary) {
	status := store.EnrichmentSuccess
	if err != nil {
		status = services.StatusForError(err)
		if status == store.EnrichmentFailed {
			p.logger.Warn("catalog lookup failed",
				logging.Int64(logging.FieldTrackID, track.ID), logging.Error(err))
		}
	} else {
		track.CatalogID = info.CatalogID
		track.ISRC = info.ISRC
		track.ExternalURL = info.ExternalURL
		track.Popularity = info.Popularity
		if info.Label != "" {
			track.Label = info.Label
		}
	}

	if dbErr := p.store.UpdateTrackMetadata(ctx, track.ID,
		track.CatalogID, track.ISRC, track.ExternalURL, track.Popularity, track.Label, status); dbErr != nil {
		p.logger.Error("persist metadata result",
			logging.Int64(logging.FieldTrackID, track.ID), logging.Error(dbErr))
		status = store.EnrichmentFailed
	}
	track.MetadataStatus = status
	summary.record(status)
}
