package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Cookie is one browser session cookie persisted alongside the token pair.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path,omitempty"`
}

// TokenRecord is the singleton credential payload the vault protects.
type TokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Cookies      []Cookie  `json:"cookies,omitempty"`
}

// ExpiresWithin reports whether the access token expires inside the margin.
func (r TokenRecord) ExpiresWithin(margin time.Duration) bool {
	if r.ExpiresAt.IsZero() {
		return true
	}
	return time.Until(r.ExpiresAt) <= margin
}

// FileTokenStore persists the encrypted token record as a single file.
type FileTokenStore struct {
	path   string
	cipher *Cipher
}

// NewFileTokenStore builds a store writing to path with the given cipher.
func NewFileTokenStore(path string, cipher *Cipher) *FileTokenStore {
	return &FileTokenStore{path: path, cipher: cipher}
}

// Store encrypts and writes the record, replacing any previous one.
func (s *FileTokenStore) Store(record TokenRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode token record: %w", err)
	}
	blob, err := s.cipher.Encrypt(payload)
	if err != nil {
		return fmt.Errorf("encrypt token record: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(blob), 0o600); err != nil {
		return fmt.Errorf("write token record: %w", err)
	}
	return nil
}

// Load reads and decrypts the record. Returns (nil, nil) when no record has
// been stored yet.
func (s *FileTokenStore) Load() (*TokenRecord, error) {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token record: %w", err)
	}
	payload, err := s.cipher.Decrypt(string(blob))
	if err != nil {
		return nil, fmt.Errorf("decrypt token record: %w", err)
	}
	var record TokenRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode token record: %w", err)
	}
	return &record, nil
}
