package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const artistColumns = "id, musicdb_id, name, links_json, created_at, updated_at"

func scanArtist(scanner interface{ Scan(dest ...any) error }) (*Artist, error) {
	var (
		id         int64
		musicdbID  string
		name       string
		links      sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &musicdbID, &name, &links, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	artist := &Artist{
		ID:        id,
		MusicDBID: musicdbID,
		Name:      name,
		LinksJSON: links.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		artist.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		artist.UpdatedAt = updated
	}
	return artist, nil
}

// ResolveArtist inserts or updates the canonical artist keyed by its
// musicological database id and returns the stored row.
func (s *Store) ResolveArtist(ctx context.Context, musicdbID, name, linksJSON string) (*Artist, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(ctx,
		`INSERT INTO artists (musicdb_id, name, links_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(musicdb_id) DO UPDATE SET name = excluded.name,
             links_json = COALESCE(excluded.links_json, artists.links_json),
             updated_at = excluded.updated_at`,
		musicdbID, name, nullableString(linksJSON), now, now,
	); err != nil {
		return nil, fmt.Errorf("resolve artist: %w", err)
	}
	return s.ArtistByMusicDBID(ctx, musicdbID)
}

// ArtistByMusicDBID fetches an artist by its external id. Returns nil when absent.
func (s *Store) ArtistByMusicDBID(ctx context.Context, musicdbID string) (*Artist, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+artistColumns+` FROM artists WHERE musicdb_id = ?`, musicdbID)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artist: %w", err)
	}
	return artist, nil
}

// LinkTrackArtist records the many-to-many association between a track and an
// artist. Relinking is a no-op.
func (s *Store) LinkTrackArtist(ctx context.Context, trackID, artistID int64) error {
	return s.execWithoutResultRetry(ctx,
		`INSERT OR IGNORE INTO track_artists (track_id, artist_id) VALUES (?, ?)`,
		trackID, artistID,
	)
}

// ArtistsForTrack returns the artists linked to a track.
func (s *Store) ArtistsForTrack(ctx context.Context, trackID int64) ([]*Artist, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT a.id, a.musicdb_id, a.name, a.links_json, a.created_at, a.updated_at
         FROM artists a JOIN track_artists ta ON ta.artist_id = a.id
         WHERE ta.track_id = ? ORDER BY a.id`,
		trackID,
	)
	if err != nil {
		return nil, fmt.Errorf("query track artists: %w", err)
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}
