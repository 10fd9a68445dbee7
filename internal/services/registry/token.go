package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"songscout/internal/config"
	"songscout/internal/services"
)

// tokenLeeway is the margin before expiry at which a cached bearer token is
// considered stale. A redundant concurrent refresh is harmless.
const tokenLeeway = 5 * time.Minute

type tokenSource struct {
	httpClient *http.Client
	cfg        config.Registry

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(cfg config.Registry, httpClient *http.Client) *tokenSource {
	return &tokenSource{httpClient: httpClient, cfg: cfg}
}

// bearer returns a valid short-lived token, exchanging client credentials
// when the cached one is absent or near expiry.
func (t *tokenSource) bearer(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Until(t.expiry) > tokenLeeway {
		return t.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.cfg.ClientID)
	form.Set("client_secret", t.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", services.Wrap(services.ErrSourceUnavailable, sourceName, "token", "invalid request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrSourceUnavailable, sourceName, "token", "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", services.Wrap(services.ErrAuthExpired, sourceName, "token", "registry rejected credentials", nil)
	case resp.StatusCode != http.StatusOK:
		return "", services.Wrap(services.ErrSourceUnavailable, sourceName, "token",
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", services.Wrap(services.ErrMalformedResponse, sourceName, "token", "decode response", err)
	}
	if decoded.AccessToken == "" {
		return "", services.Wrap(services.ErrMalformedResponse, sourceName, "token", "empty access token", nil)
	}

	t.token = decoded.AccessToken
	t.expiry = time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second)
	return t.token, nil
}
