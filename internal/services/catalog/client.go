package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"songscout/internal/config"
	"songscout/internal/logging"
	"songscout/internal/playlist"
	"songscout/internal/services"
	"songscout/internal/textutil"
)

const sourceName = "catalog"

// maxBatchIDs is the catalog API's hard limit on ids per batch request.
const maxBatchIDs = 50

// TrackInfo is the catalog metadata for one track.
type TrackInfo struct {
	CatalogID   string
	ISRC        string
	ExternalURL string
	Popularity  int64
	Label       string
}

// Client wraps the streaming catalog API behind client-credentials auth.
type Client struct {
	api     *spotify.Client
	cfg     config.Catalog
	limiter *rate.Limiter
	logger  *slog.Logger

	mu     sync.Mutex
	labels map[spotify.ID]string
}

// New builds a catalog client with a long-lived token source. The context
// governs token refresh requests for the life of the client.
func New(ctx context.Context, cfg config.Catalog, logger *slog.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, services.Wrap(services.ErrConfigurationMissing, sourceName, "init", "client credentials not configured", nil)
	}

	auth := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := auth.Client(ctx)
	httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	return &Client{
		api:     spotify.New(httpClient),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:  logging.NewComponentLogger(logger, sourceName),
		labels:  make(map[spotify.ID]string),
	}, nil
}

// SearchTrack resolves a (track, artist) pair to catalog metadata. Returns a
// no-data error when the catalog has no plausible match.
func (c *Client) SearchTrack(ctx context.Context, trackName, artistName string) (*TrackInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("track:%s artist:%s", trackName, artistName)
	opts := []spotify.RequestOption{spotify.Limit(5)}
	if c.cfg.Market != "" {
		opts = append(opts, spotify.Market(c.cfg.Market))
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		return nil, c.wrapAPIError("search", err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, services.Wrap(services.ErrNoData, sourceName, "search",
			fmt.Sprintf("no match for %q by %q", trackName, artistName), nil)
	}

	match := bestSearchMatch(result.Tracks.Tracks, artistName)
	if match == nil {
		return nil, services.Wrap(services.ErrNoData, sourceName, "search",
			fmt.Sprintf("no artist match for %q by %q", trackName, artistName), nil)
	}
	return c.buildInfo(ctx, match), nil
}

// GetTracksBatch fetches metadata for up to any number of catalog ids,
// chunked to the API's batch limit. Missing tracks in a batch response are
// tolerated per item; the returned map simply lacks entries for them.
func (c *Client) GetTracksBatch(ctx context.Context, catalogIDs []string) (map[string]*TrackInfo, error) {
	out := make(map[string]*TrackInfo, len(catalogIDs))

	for start := 0; start < len(catalogIDs); start += maxBatchIDs {
		end := start + maxBatchIDs
		if end > len(catalogIDs) {
			end = len(catalogIDs)
		}
		ids := make([]spotify.ID, 0, end-start)
		for _, id := range catalogIDs[start:end] {
			ids = append(ids, spotify.ID(id))
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		tracks, err := c.api.GetTracks(ctx, ids)
		if err != nil {
			return nil, c.wrapAPIError("get tracks", err)
		}
		for _, track := range tracks {
			if track == nil || track.ID == "" {
				continue
			}
			out[string(track.ID)] = c.buildInfo(ctx, track)
		}
	}
	return out, nil
}

// FetchPlaylist implements the playlist membership fetch against the catalog.
func (c *Client) FetchPlaylist(ctx context.Context, catalogID string) (string, []playlist.Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}

	full, err := c.api.GetPlaylist(ctx, spotify.ID(catalogID))
	if err != nil {
		return "", nil, c.wrapAPIError("get playlist", err)
	}

	var rows []playlist.Row
	page := full.Tracks
	for {
		for _, item := range page.Tracks {
			if item.Track.ID == "" || item.IsLocal {
				continue
			}
			rows = append(rows, playlist.Row{
				PlaylistCatalogID: catalogID,
				PlaylistName:      full.Name,
				TrackName:         item.Track.Name,
				ArtistName:        primaryArtist(item.Track),
				SourceURL:         item.Track.ExternalURLs["spotify"],
				AlbumArt:          albumArt(item.Track),
			})
		}

		err = c.api.NextPage(ctx, &page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return full.Name, rows, c.wrapAPIError("playlist pagination", err)
		}
	}
	return full.Name, rows, nil
}

func (c *Client) buildInfo(ctx context.Context, track *spotify.FullTrack) *TrackInfo {
	return &TrackInfo{
		CatalogID:   string(track.ID),
		ISRC:        track.ExternalIDs["isrc"],
		ExternalURL: track.ExternalURLs["spotify"],
		Popularity:  int64(track.Popularity),
		Label:       c.albumLabel(ctx, track.Album.ID),
	}
}

// albumLabel resolves an album's label from its copyright lines, memoized
// per album to keep batch enrichment within rate limits.
func (c *Client) albumLabel(ctx context.Context, albumID spotify.ID) string {
	if albumID == "" {
		return ""
	}
	c.mu.Lock()
	if label, ok := c.labels[albumID]; ok {
		c.mu.Unlock()
		return label
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return ""
	}
	album, err := c.api.GetAlbum(ctx, albumID)
	if err != nil {
		c.logger.Debug("album lookup failed", logging.String("album_id", string(albumID)), logging.Error(err))
		return ""
	}

	label := labelFromCopyrights(album.Copyrights)
	c.mu.Lock()
	c.labels[albumID] = label
	c.mu.Unlock()
	return label
}

func (c *Client) wrapAPIError(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return services.Wrap(services.ErrAuthExpired, sourceName, op, "catalog rejected credentials", err)
		case http.StatusNotFound:
			return services.Wrap(services.ErrNoData, sourceName, op, "not found", err)
		case http.StatusTooManyRequests:
			return services.Wrap(services.ErrSourceUnavailable, sourceName, op, "rate limited", err)
		}
	}
	return services.Wrap(services.ErrSourceUnavailable, sourceName, op, "request failed", err)
}

// bestSearchMatch picks the first result whose artist list actually contains
// the searched artist. Catalog full-text search is fuzzy enough to return
// unrelated covers first.
func bestSearchMatch(tracks []spotify.FullTrack, artistName string) *spotify.FullTrack {
	for i := range tracks {
		for _, artist := range tracks[i].Artists {
			if textutil.EqualNames(artist.Name, artistName) || textutil.ContainsName(artist.Name, artistName) {
				return &tracks[i]
			}
		}
	}
	return nil
}

func primaryArtist(track spotify.FullTrack) string {
	if len(track.Artists) == 0 {
		return ""
	}
	return track.Artists[0].Name
}

func albumArt(track spotify.FullTrack) string {
	if len(track.Album.Images) == 0 {
		return ""
	}
	return track.Album.Images[0].URL
}
