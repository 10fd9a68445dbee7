// Package config loads, normalizes, and validates Songscout configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPOTIFY_CLIENT_ID and SONGSCOUT_VAULT_SECRET. The Config type centralizes
// every knob the daemon and CLI need, from source-client credentials to
// scheduler cadences.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical fallback policies, and clear validation errors.
package config
