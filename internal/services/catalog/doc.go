// Package catalog wraps the streaming catalog API: track search, batched
// metadata lookups with per-item null tolerance, playlist membership fetch,
// and label resolution from album copyright lines.
package catalog
