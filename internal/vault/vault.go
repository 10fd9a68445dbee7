package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/pbkdf2"

	"songscout/internal/logging"
)

const (
	saltLength     = 16
	keyLength      = 32
	pbkdf2Rounds   = 100_000
	minSecretChars = 16
)

// ErrSecretMissing indicates no vault secret is configured; encrypted records
// cannot be read or written without one.
var ErrSecretMissing = errors.New("vault secret missing")

// Cipher encrypts and decrypts credential blobs with AES-256-GCM keyed by a
// PBKDF2-derived key. Each blob carries its own random salt and nonce.
type Cipher struct {
	secret string
	logger *slog.Logger
}

// NewCipher validates the secret and returns a ready cipher. A short secret is
// tolerated with a warning; an empty one fails closed on first use.
func NewCipher(secret string, logger *slog.Logger) *Cipher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if secret != "" && len(secret) < minSecretChars {
		logging.WarnWithContext(logger, "vault secret is shorter than recommended", "vault_weak_secret",
			logging.Int("length", len(secret)),
			logging.String(logging.FieldErrorHint, "use at least 16 characters for the vault secret"))
	}
	return &Cipher{secret: secret, logger: logger}
}

// Encrypt seals plaintext into a base64 blob of salt | nonce | ciphertext.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	if c.secret == "" {
		return "", ErrSecretMissing
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	blob := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. Fails closed: a missing secret, a
// truncated blob, or an authentication failure all return an error.
func (c *Cipher) Decrypt(encoded string) ([]byte, error) {
	if c.secret == "" {
		return nil, ErrSecretMissing
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode blob: %w", err)
	}
	if len(blob) < saltLength {
		return nil, errors.New("blob too short")
	}

	salt := blob[:saltLength]
	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}
	if len(blob) < saltLength+gcm.NonceSize() {
		return nil, errors.New("blob too short")
	}
	nonce := blob[saltLength : saltLength+gcm.NonceSize()]
	sealed := blob[saltLength+gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt blob: %w", err)
	}
	return plaintext, nil
}

func (c *Cipher) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(c.secret), salt, pbkdf2Rounds, keyLength, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}
