package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const playlistColumns = "id, catalog_id, name, tracked, last_checked_week, created_at, updated_at"

func scanPlaylist(scanner interface{ Scan(dest ...any) error }) (*Playlist, error) {
	var (
		id          int64
		catalogID   string
		name        string
		tracked     sql.NullInt64
		checkedWeek sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(&id, &catalogID, &name, &tracked, &checkedWeek, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	playlist := &Playlist{
		ID:              id,
		CatalogID:       catalogID,
		Name:            name,
		LastCheckedWeek: checkedWeek.String,
	}
	if tracked.Valid {
		playlist.Tracked = tracked.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		playlist.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		playlist.UpdatedAt = updated
	}
	return playlist, nil
}

// UpsertPlaylist inserts or updates a tracked playlist keyed by catalog id.
func (s *Store) UpsertPlaylist(ctx context.Context, catalogID, name string, tracked bool) (*Playlist, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(ctx,
		`INSERT INTO playlists (catalog_id, name, tracked, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(catalog_id) DO UPDATE SET name = excluded.name, tracked = excluded.tracked, updated_at = excluded.updated_at`,
		catalogID, name, boolToInt(tracked), now, now,
	); err != nil {
		return nil, fmt.Errorf("upsert playlist: %w", err)
	}
	return s.PlaylistByCatalogID(ctx, catalogID)
}

// PlaylistByCatalogID fetches a playlist by its catalog identifier.
func (s *Store) PlaylistByCatalogID(ctx context.Context, catalogID string) (*Playlist, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+playlistColumns+` FROM playlists WHERE catalog_id = ?`, catalogID)
	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	return playlist, nil
}

// PlaylistsDueForRefresh selects tracked playlists not yet refreshed in the
// given ISO week, oldest check first, capped at limit.
func (s *Store) PlaylistsDueForRefresh(ctx context.Context, week string, limit int) ([]*Playlist, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+playlistColumns+` FROM playlists
         WHERE tracked = 1 AND (last_checked_week IS NULL OR last_checked_week != ?)
         ORDER BY last_checked_week, id LIMIT ?`,
		week, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

// ListPlaylists returns every playlist, tracked first, then by name.
func (s *Store) ListPlaylists(ctx context.Context) ([]*Playlist, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+playlistColumns+` FROM playlists ORDER BY tracked DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

// MarkPlaylistChecked records that the playlist was refreshed in the given week.
func (s *Store) MarkPlaylistChecked(ctx context.Context, id int64, week string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE playlists SET last_checked_week = ?, updated_at = ? WHERE id = ?`,
		week, now, id,
	)
}
