// Package vault encrypts and persists long-lived credentials: OAuth token
// pairs and browser session cookies. Records are sealed with AES-256-GCM
// under a PBKDF2-derived key; each blob carries its own salt and nonce.
// The manager refreshes access tokens within a five minute expiry margin and
// surfaces refresh failures as typed auth-expired errors.
package vault
