package chartdata

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
)

const sourceName = "chartdata"

// Stats is the streaming performance snapshot for one track.
type Stats struct {
	ChartID      string
	StreamsTotal int64
	StreamsPrev  int64
	Followers    int64
	WowGrowthPct float64
}

// Client queries the charting/analytics API with a bearer key.
type Client struct {
	httpClient *http.Client
	cfg        config.Chart
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New builds an analytics client.
func New(cfg config.Chart, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		logger:     logging.NewComponentLogger(logger, sourceName),
	}
}

type trackStatsResponse struct {
	Obj struct {
		ID      json.Number `json:"id"`
		Streams struct {
			Total    int64 `json:"total"`
			Previous int64 `json:"previous"`
		} `json:"streams"`
		Followers int64    `json:"followers"`
		GrowthPct *float64 `json:"wow_growth_pct"`
	} `json:"obj"`
}

// GetTrackStats fetches stream, follower, and growth metrics by ISRC. An
// unknown ISRC is a no-data outcome, not a failure.
func (c *Client) GetTrackStats(ctx context.Context, isrc string) (*Stats, error) {
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfigurationMissing, sourceName, "get stats", "api key not configured", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/track/isrc/%s/stats", c.cfg.BaseURL, url.PathEscape(isrc))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, sourceName, "build request", "invalid request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, sourceName, "get stats", "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNoData, sourceName, "get stats",
			fmt.Sprintf("no analytics record for isrc %s", isrc), nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, services.Wrap(services.ErrAuthExpired, sourceName, "get stats", "api key rejected", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, services.Wrap(services.ErrSourceUnavailable, sourceName, "get stats", "rate limited", nil)
	case resp.StatusCode != http.StatusOK:
		return nil, services.Wrap(services.ErrMalformedResponse, sourceName, "get stats",
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var decoded trackStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, sourceName, "get stats", "decode response", err)
	}

	stats := &Stats{
		ChartID:      decoded.Obj.ID.String(),
		StreamsTotal: decoded.Obj.Streams.Total,
		StreamsPrev:  decoded.Obj.Streams.Previous,
		Followers:    decoded.Obj.Followers,
	}
	if decoded.Obj.GrowthPct != nil {
		stats.WowGrowthPct = *decoded.Obj.GrowthPct
	} else {
		stats.WowGrowthPct = GrowthPct(stats.StreamsTotal, stats.StreamsPrev)
	}
	return stats, nil
}

// GrowthPct derives week-over-week growth when the API omits it.
func GrowthPct(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
