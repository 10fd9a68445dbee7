package registry

import (
	"context"
	"encoding/json"
	"errors"
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

const sourceName = "registry"

// Work is the publishing record behind a recording.
type Work struct {
	Publishers []string
	Writers    []string
	ISWC       string
}

// PortalSearcher is the browser-driven fallback over the public portal.
type PortalSearcher interface {
	Search(ctx context.Context, isrc string) (*Work, error)
}

// Client is the two-tier registry lookup: authenticated JSON API first, the
// public-portal scrape as fallback per the configured policy.
type Client struct {
	httpClient *http.Client
	cfg        config.Registry
	tokens     *tokenSource
	portal     PortalSearcher
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New builds a registry client. portal may be nil to disable the fallback.
func New(cfg config.Registry, portal PortalSearcher, logger *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		tokens:     newTokenSource(cfg, httpClient),
		portal:     portal,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logging.NewComponentLogger(logger, sourceName),
	}
}

// Lookup resolves a recording's publishing work by ISRC. API auth failures
// never fall back to the portal; they indicate remediation, not absence of
// data.
func (c *Client) Lookup(ctx context.Context, isrc string) (*Work, error) {
	work, apiErr := c.lookupAPI(ctx, isrc)
	if apiErr == nil {
		return work, nil
	}
	if !c.shouldFallBack(apiErr) {
		return nil, apiErr
	}

	c.logger.Debug("falling back to portal search",
		logging.String("isrc", isrc), logging.Error(apiErr))
	work, portalErr := c.portal.Search(ctx, isrc)
	if portalErr != nil {
		// The API verdict is the more precise one to surface.
		if errors.Is(apiErr, services.ErrNoData) || errors.Is(apiErr, services.ErrConfigurationMissing) {
			return nil, portalErr
		}
		return nil, apiErr
	}
	return work, nil
}

func (c *Client) shouldFallBack(apiErr error) bool {
	if c.portal == nil || errors.Is(apiErr, services.ErrAuthExpired) {
		return false
	}
	if errors.Is(apiErr, services.ErrNoData) || errors.Is(apiErr, services.ErrConfigurationMissing) {
		return true
	}
	return c.cfg.FallbackPolicy == config.FallbackAlways
}

func (c *Client) lookupAPI(ctx context.Context, isrc string) (*Work, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil, services.Wrap(services.ErrConfigurationMissing, sourceName, "lookup", "api credentials not configured", nil)
	}

	workCode, err := c.searchRecording(ctx, isrc)
	if err != nil {
		return nil, err
	}
	return c.getWork(ctx, workCode)
}

type recordingSearchResponse struct {
	Recordings []struct {
		WorkCode string `json:"workCode"`
	} `json:"recordings"`
}

func (c *Client) searchRecording(ctx context.Context, isrc string) (string, error) {
	var decoded recordingSearchResponse
	if err := c.get(ctx, "/recordings?isrc="+url.QueryEscape(isrc), &decoded); err != nil {
		return "", err
	}
	for _, recording := range decoded.Recordings {
		if recording.WorkCode != "" {
			return recording.WorkCode, nil
		}
	}
	return "", services.Wrap(services.ErrNoData, sourceName, "search recording",
		fmt.Sprintf("no registered work for isrc %s", isrc), nil)
}

type workResponse struct {
	ISWC       string `json:"iswc"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	Writers []struct {
		Name string `json:"name"`
	} `json:"writers"`
}

func (c *Client) getWork(ctx context.Context, workCode string) (*Work, error) {
	var decoded workResponse
	if err := c.get(ctx, "/works/"+url.PathEscape(workCode), &decoded); err != nil {
		return nil, err
	}

	work := &Work{ISWC: decoded.ISWC}
	for _, publisher := range decoded.Publishers {
		if publisher.Name != "" {
			work.Publishers = append(work.Publishers, publisher.Name)
		}
	}
	for _, writer := range decoded.Writers {
		if writer.Name != "" {
			work.Writers = append(work.Writers, writer.Name)
		}
	}
	return work, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	token, err := c.tokens.bearer(ctx)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "build request", "invalid request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "get "+path, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNoData, sourceName, "get "+path, "not found", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrAuthExpired, sourceName, "get "+path, "bearer token rejected", nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrSourceUnavailable, sourceName, "get "+path,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrMalformedResponse, sourceName, "get "+path, "decode response", err)
	}
	return nil
}
