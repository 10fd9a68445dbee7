// Package store persists tracks, contacts, artists, jobs, and activity in a
// single SQLite database. All timestamps are stored as RFC 3339 text in UTC.
// Writes go through a busy-retry wrapper so concurrent scheduler and worker
// access degrades to short waits instead of errors.
package store
