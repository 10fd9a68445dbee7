package musicdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"songscout/internal/config"
	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/textutil"
)

const sourceName = "musicdb"

// ArtistMatch is a resolved canonical artist identity.
type ArtistMatch struct {
	ID    string
	Name  string
	Exact bool
}

// Client queries the musicological database. The service enforces one
// request per second per client; the limiter keeps us inside that.
type Client struct {
	httpClient *http.Client
	cfg        config.MusicDB
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New builds a musicological database client.
func New(cfg config.MusicDB, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logging.NewComponentLogger(logger, sourceName),
	}
}

type artistSearchResponse struct {
	Artists []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"artists"`
}

// SearchArtist resolves a performer name to a canonical artist id: exact name
// match first, then the best fuzzy match above the configured threshold.
func (c *Client) SearchArtist(ctx context.Context, name string) (*ArtistMatch, error) {
	query := url.Values{}
	query.Set("query", fmt.Sprintf("artist:%q", name))
	query.Set("fmt", "json")
	query.Set("limit", "10")

	var decoded artistSearchResponse
	if err := c.get(ctx, "/artist", query, &decoded); err != nil {
		return nil, err
	}

	for _, candidate := range decoded.Artists {
		if textutil.EqualNames(candidate.Name, name) {
			return &ArtistMatch{ID: candidate.ID, Name: candidate.Name, Exact: true}, nil
		}
	}

	var best *ArtistMatch
	var bestScore float64
	for _, candidate := range decoded.Artists {
		score := textutil.Similarity(candidate.Name, name)
		if score >= c.cfg.SimilarityThreshold && score > bestScore {
			best = &ArtistMatch{ID: candidate.ID, Name: candidate.Name}
			bestScore = score
		}
	}
	if best == nil {
		return nil, services.Wrap(services.ErrNoData, sourceName, "search artist",
			fmt.Sprintf("no match for %q", name), nil)
	}
	c.logger.Debug("fuzzy artist match",
		logging.String("query", name),
		logging.String("matched", best.Name),
		logging.Float64("similarity", bestScore))
	return best, nil
}

type artistLookupResponse struct {
	Relations []struct {
		Type string `json:"type"`
		URL  struct {
			Resource string `json:"resource"`
		} `json:"url"`
	} `json:"relations"`
}

// GetArtistLinks fetches the social and website links recorded for an artist.
// The returned map keys are relation types ("official homepage", "social
// network", ...).
func (c *Client) GetArtistLinks(ctx context.Context, artistID string) (map[string]string, error) {
	query := url.Values{}
	query.Set("inc", "url-rels")
	query.Set("fmt", "json")

	var decoded artistLookupResponse
	if err := c.get(ctx, "/artist/"+url.PathEscape(artistID), query, &decoded); err != nil {
		return nil, err
	}

	links := make(map[string]string, len(decoded.Relations))
	for _, relation := range decoded.Relations {
		if relation.URL.Resource == "" {
			continue
		}
		if _, seen := links[relation.Type]; !seen {
			links[relation.Type] = relation.URL.Resource
		}
	}
	return links, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "build request", "invalid request", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "get "+path, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNoData, sourceName, "get "+path, "not found", nil)
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "get "+path, "service throttling", nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrMalformedResponse, sourceName, "get "+path,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrMalformedResponse, sourceName, "get "+path, "decode response", err)
	}
	return nil
}
