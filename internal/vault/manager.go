package vault

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"songscout/internal/logging"
	"songscout/internal/services"
)

// refreshLeeway is the safety margin before expiry at which the manager
// refreshes the access token.
const refreshLeeway = 5 * time.Minute

// Refresher exchanges a refresh token for a fresh token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (TokenRecord, error)
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context, refreshToken string) (TokenRecord, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (TokenRecord, error) {
	return f(ctx, refreshToken)
}

// Manager hands out valid credentials, transparently refreshing the access
// token when it is within the safety margin of expiry. Refreshed pairs are
// persisted before being returned.
type Manager struct {
	store     *FileTokenStore
	refresher Refresher
	logger    *slog.Logger

	mu     sync.Mutex
	cached *TokenRecord
}

// NewManager builds a credential manager over the given store. The refresher
// may be nil when the credential has no refresh flow (cookie sessions).
func NewManager(store *FileTokenStore, refresher Refresher, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		refresher: refresher,
		logger:    logging.NewComponentLogger(logger, "vault"),
	}
}

// StoreToken persists a new token pair issued out-of-band.
func (m *Manager) StoreToken(accessToken, refreshToken string, expiresInSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := TokenRecord{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresInSeconds) * time.Second),
	}
	if err := m.store.Store(record); err != nil {
		return err
	}
	m.cached = &record
	return nil
}

// StoreCookies persists session cookies for the browser-driven scraper.
func (m *Manager) StoreCookies(cookies []Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := TokenRecord{}
	if m.cached != nil {
		record = *m.cached
	} else if loaded, err := m.store.Load(); err == nil && loaded != nil {
		record = *loaded
	}
	record.Cookies = cookies
	if err := m.store.Store(record); err != nil {
		return err
	}
	m.cached = &record
	return nil
}

// ValidToken returns a token record whose access token is valid for at least
// the refresh leeway. Refresh failures surface as a typed auth-expired error;
// they are never swallowed.
func (m *Manager) ValidToken(ctx context.Context) (*TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := m.cached
	if record == nil {
		loaded, err := m.store.Load()
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			return nil, services.Wrap(services.ErrConfigurationMissing, "vault", "load", "no credentials stored", nil)
		}
		record = loaded
		m.cached = record
	}

	if !record.ExpiresWithin(refreshLeeway) {
		return record, nil
	}

	if m.refresher == nil || record.RefreshToken == "" {
		return nil, services.Wrap(services.ErrAuthExpired, "vault", "refresh", "token expired and no refresh path available", nil)
	}

	refreshed, err := m.refresher.Refresh(ctx, record.RefreshToken)
	if err != nil {
		return nil, services.Wrap(services.ErrAuthExpired, "vault", "refresh", "token refresh failed", err)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = record.RefreshToken
	}
	if refreshed.Cookies == nil {
		refreshed.Cookies = record.Cookies
	}
	if err := m.store.Store(refreshed); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}
	m.cached = &refreshed
	m.logger.Info("access token refreshed",
		logging.String("expires_at", refreshed.ExpiresAt.UTC().Format(time.RFC3339)))
	return m.cached, nil
}

// Cookies returns the persisted session cookies, if any.
func (m *Manager) Cookies() ([]Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil {
		return m.cached.Cookies, nil
	}
	loaded, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, nil
	}
	m.cached = loaded
	return loaded.Cookies, nil
}
