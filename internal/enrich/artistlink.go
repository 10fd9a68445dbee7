package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/services/musicdb"
	"songscout/internal/store"
)

// ArtistResolver is the musicological-database surface the linking phase needs.
type ArtistResolver interface {
	SearchArtist(ctx context.Context, name string) (*musicdb.ArtistMatch, error)
	GetArtistLinks(ctx context.Context, artistID string) (map[string]string, error)
}

// ArtistPhase resolves canonical artist identities for tracks with writer
// metadata and links them.
type ArtistPhase struct {
	store    *store.Store
	resolver ArtistResolver
	logger   *slog.Logger
}

func NewArtistPhase(st *store.Store, resolver ArtistResolver, logger *slog.Logger) *ArtistPhase {
	return &ArtistPhase{
		store:    st,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "enrich-artist"),
	}
}

func (p *ArtistPhase) Name() string { return PhaseArtist }

func (p *ArtistPhase) Run(ctx context.Context, tracks []*store.Track) Summary {
	var summary Summary
	for _, track := range tracks {
		name := writerIdentity(track)
		if name == "" {
			summary.Skipped++
			continue
		}

		match, err := p.resolver.SearchArtist(ctx, name)
		if err != nil {
			status := services.StatusForError(err)
			if status == store.EnrichmentFailed {
				p.logger.Warn("artist resolution failed",
					logging.Int64(logging.FieldTrackID, track.ID),
					logging.String("name", name), logging.Error(err))
			}
			p.setStatus(ctx, track, status, &summary)
			continue
		}

		// Link failures degrade to an artist without links, not a phase failure.
		links, err := p.resolver.GetArtistLinks(ctx, match.ID)
		if err != nil {
			p.logger.Debug("artist links unavailable",
				logging.String("musicdb_id", match.ID), logging.Error(err))
			links = nil
		}
		linksJSON := ""
		if len(links) > 0 {
			if encoded, err := json.Marshal(links); err == nil {
				linksJSON = string(encoded)
			}
		}

		artist, err := p.store.ResolveArtist(ctx, match.ID, match.Name, linksJSON)
		if err != nil {
			p.logger.Error("persist artist",
				logging.String("musicdb_id", match.ID), logging.Error(err))
			p.setStatus(ctx, track, store.EnrichmentFailed, &summary)
			continue
		}
		if err := p.store.LinkTrackArtist(ctx, track.ID, artist.ID); err != nil {
			p.logger.Error("link artist",
				logging.Int64(logging.FieldTrackID, track.ID), logging.Error(err))
			p.setStatus(ctx, track, store.EnrichmentFailed, &summary)
			continue
		}
		p.setStatus(ctx, track, store.EnrichmentSuccess, &summary)
	}
	return summary
}

func (p *ArtistPhase) setStatus(ctx context.Context, track *store.Track, status store.EnrichmentStatus, summary *Summary) {
	if err := p.store.UpdateTrackArtistStatus(ctx, track.ID, status); err != nil {
		p.logger.Error("persist artist status",
			logging.Int64(logging.FieldTrackID, track.ID), logging.Error(err))
		status = store.EnrichmentFailed
	}
	track.ArtistStatus = status
	summary.record(status)
}

// writerIdentity picks the name to resolve: the credited songwriter first,
// the first scraped writer otherwise.
func writerIdentity(track *store.Track) string {
	if track.Songwriter != "" {
		return track.Songwriter
	}
	if track.WriterNames != "" {
		parts := strings.SplitN(track.WriterNames, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	return ""
}
