package vault_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"songscout/internal/logging"
	"songscout/internal/services"
	"songscout/internal/vault"
)

func newStore(t *testing.T, secret string) *vault.FileTokenStore {
	t.Helper()
	cipher := vault.NewCipher(secret, logging.NewNop())
	return vault.NewFileTokenStore(filepath.Join(t.TempDir(), "token.enc"), cipher)
}

func TestCipherRoundTrip(t *testing.T) {
	cipher := vault.NewCipher("a-long-enough-secret-value", logging.NewNop())
	blob, err := cipher.Encrypt([]byte("hello"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	plain, err := cipher.Decrypt(blob)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(plain) != "hello" {
		t.Fatalf("round trip mismatch: %q", plain)
	}

	// Each blob carries a fresh salt and nonce.
	second, err := cipher.Encrypt([]byte("hello"))
	if err != nil {
		t.Fatalf("encrypt again: %v", err)
	}
	if blob == second {
		t.Fatal("expected distinct ciphertexts for identical plaintext")
	}
}

func TestCipherFailsClosedWithoutSecret(t *testing.T) {
	cipher := vault.NewCipher("", logging.NewNop())
	if _, err := cipher.Encrypt([]byte("x")); !errors.Is(err, vault.ErrSecretMissing) {
		t.Fatalf("expected secret-missing on encrypt, got %v", err)
	}
	if _, err := cipher.Decrypt("anything"); !errors.Is(err, vault.ErrSecretMissing) {
		t.Fatalf("expected secret-missing on decrypt, got %v", err)
	}
}

func TestCipherRejectsWrongSecret(t *testing.T) {
	blob, err := vault.NewCipher("correct-secret-0123456789", logging.NewNop()).Encrypt([]byte("x"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := vault.NewCipher("wrong-secret-0123456789ab", logging.NewNop()).Decrypt(blob); err == nil {
		t.Fatal("expected authentication failure with wrong secret")
	}
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	store := newStore(t, "a-long-enough-secret-value")

	if record, err := store.Load(); err != nil || record != nil {
		t.Fatalf("expected empty store, got %+v %v", record, err)
	}

	want := vault.TokenRecord{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		Cookies:      []vault.Cookie{{Name: "sp_dc", Value: "v", Domain: ".example.com"}},
	}
	if err := store.Store(want); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Fatalf("token mismatch: %+v", got)
	}
	if len(got.Cookies) != 1 || got.Cookies[0].Name != "sp_dc" {
		t.Fatalf("cookie mismatch: %+v", got.Cookies)
	}
}

func TestManagerRefreshesNearExpiry(t *testing.T) {
	store := newStore(t, "a-long-enough-secret-value")
	if err := store.Store(vault.TokenRecord{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Minute),
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	var refreshed int
	refresher := vault.RefresherFunc(func(ctx context.Context, refreshToken string) (vault.TokenRecord, error) {
		refreshed++
		if refreshToken != "refresh-1" {
			t.Fatalf("unexpected refresh token %q", refreshToken)
		}
		return vault.TokenRecord{
			AccessToken: "fresh",
			ExpiresAt:   time.Now().Add(time.Hour),
		}, nil
	})

	manager := vault.NewManager(store, refresher, logging.NewNop())
	record, err := manager.ValidToken(context.Background())
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if record.AccessToken != "fresh" {
		t.Fatalf("expected refreshed token, got %q", record.AccessToken)
	}
	if record.RefreshToken != "refresh-1" {
		t.Fatal("expected refresh token carried forward")
	}
	if refreshed != 1 {
		t.Fatalf("expected one refresh, got %d", refreshed)
	}

	// A second call uses the cache without refreshing again.
	if _, err := manager.ValidToken(context.Background()); err != nil {
		t.Fatalf("second valid token: %v", err)
	}
	if refreshed != 1 {
		t.Fatalf("unexpected extra refresh: %d", refreshed)
	}

	// The refreshed pair was persisted.
	stored, err := store.Load()
	if err != nil || stored == nil {
		t.Fatalf("load persisted: %+v %v", stored, err)
	}
	if stored.AccessToken != "fresh" {
		t.Fatalf("expected persisted refresh, got %q", stored.AccessToken)
	}
}

func TestManagerRefreshFailureIsAuthExpired(t *testing.T) {
	store := newStore(t, "a-long-enough-secret-value")
	if err := store.Store(vault.TokenRecord{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	refresher := vault.RefresherFunc(func(ctx context.Context, refreshToken string) (vault.TokenRecord, error) {
		return vault.TokenRecord{}, errors.New("401 invalid_grant")
	})

	manager := vault.NewManager(store, refresher, logging.NewNop())
	if _, err := manager.ValidToken(context.Background()); !errors.Is(err, services.ErrAuthExpired) {
		t.Fatalf("expected auth-expired, got %v", err)
	}
}

func TestManagerWithoutStoredCredentials(t *testing.T) {
	manager := vault.NewManager(newStore(t, "a-long-enough-secret-value"), nil, logging.NewNop())
	if _, err := manager.ValidToken(context.Background()); !errors.Is(err, services.ErrConfigurationMissing) {
		t.Fatalf("expected configuration-missing, got %v", err)
	}
}
