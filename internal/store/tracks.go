package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// InsertTracks upserts playlist-fetch rows keyed by (week, playlist, source
// URL). Re-scraping the same track in the same week overwrites mutable fields
// instead of duplicating the row. The returned ids cover newly inserted tracks
// only; those are the ones the scheduler enqueues for enrichment.
func (s *Store) InsertTracks(ctx context.Context, rows []TrackRow) ([]int64, error) {
	ctx = ensureContext(ctx)
	inserted := make([]int64, 0, len(rows))
	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, row := range rows {
		var existingID int64
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM tracks WHERE week = ? AND playlist_id = ? AND source_url = ?`,
			row.Week, row.PlaylistID, row.SourceURL,
		).Scan(&existingID)
		switch {
		case err == nil:
			if err := s.execWithoutResultRetry(ctx,
				`UPDATE tracks SET playlist_name = ?, track_name = ?, artist_name = ?, album_art = ?,
                     songwriter = COALESCE(?, songwriter), updated_at = ?
                 WHERE id = ?`,
				row.PlaylistName,
				row.TrackName,
				row.ArtistName,
				nullableString(row.AlbumArt),
				nullableString(row.Songwriter),
				now,
				existingID,
			); err != nil {
				return nil, fmt.Errorf("update track: %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			res, err := s.execWithRetry(ctx,
				`INSERT INTO tracks (
                     week, playlist_id, playlist_name, track_name, artist_name, source_url,
                     album_art, songwriter, created_at, updated_at
                 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				row.Week,
				row.PlaylistID,
				row.PlaylistName,
				row.TrackName,
				row.ArtistName,
				row.SourceURL,
				nullableString(row.AlbumArt),
				nullableString(row.Songwriter),
				now,
				now,
			)
			if err != nil {
				return nil, fmt.Errorf("insert track: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("last insert id: %w", err)
			}
			inserted = append(inserted, id)
		default:
			return nil, fmt.Errorf("find track: %w", err)
		}
	}
	return inserted, nil
}

// GetTrack fetches a track by identifier. Returns nil when absent.
func (s *Store) GetTrack(ctx context.Context, id int64) (*Track, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	return track, nil
}

// GetTracks fetches the tracks matching ids, preserving database order.
func (s *Store) GetTracks(ctx context.Context, ids []int64) ([]*Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id IN (` + makePlaceholders(len(ids)) + `) ORDER BY id`
	return s.queryTracks(ctx, query, args...)
}

func (s *Store) queryTracks(ctx context.Context, query string, args ...any) ([]*Track, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// UpdateTrackMetadata persists the catalog phase result.
func (s *Store) UpdateTrackMetadata(ctx context.Context, id int64, catalogID, isrc, externalURL string, popularity int64, label string, status EnrichmentStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE tracks SET catalog_id = ?, isrc = ?, external_url = ?, popularity = ?, label = ?,
             metadata_status = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(catalogID),
		nullableString(isrc),
		nullableString(externalURL),
		popularity,
		nullableString(label),
		string(status),
		now,
		id,
	)
}

// UpdateTrackCredits persists the credits phase result. The first credited
// writer becomes the track's songwriter identity unless one is already set;
// contact aggregation keys on that column.
func (s *Store) UpdateTrackCredits(ctx context.Context, id int64, writerNames, publisher string, status EnrichmentStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE tracks SET writer_names = ?, publisher = ?,
             songwriter = COALESCE(songwriter, ?), credits_status = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(writerNames),
		nullableString(publisher),
		nullableString(primaryWriter(writerNames)),
		string(status),
		now,
		id,
	)
}

func primaryWriter(writerNames string) string {
	first, _, _ := strings.Cut(writerNames, ",")
	return strings.TrimSpace(first)
}

// UpdateTrackArtistStatus persists the musicological-linking phase status.
func (s *Store) UpdateTrackArtistStatus(ctx context.Context, id int64, status EnrichmentStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE tracks SET artist_status = ?, updated_at = ? WHERE id = ?`,
		string(status), now, id,
	)
}

// UpdateTrackAnalytics persists the analytics phase result. A successful pass
// also stamps chart_updated_at for staleness selection.
func (s *Store) UpdateTrackAnalytics(ctx context.Context, id int64, chartID string, streamsTotal, streamsPrev, followers int64, growthPct float64, momentum string, status EnrichmentStatus) error {
	now := time.Now().UTC()
	var chartUpdated any
	if status == EnrichmentSuccess {
		chartUpdated = now.Format(time.RFC3339Nano)
	}
	return s.execWithoutResultRetry(ctx,
		`UPDATE tracks SET chart_id = ?, streams_total = ?, streams_prev = ?, followers = ?,
             wow_growth_pct = ?, momentum = ?, chart_status = ?,
             chart_updated_at = COALESCE(?, chart_updated_at), updated_at = ?
         WHERE id = ?`,
		nullableString(chartID),
		streamsTotal,
		streamsPrev,
		followers,
		growthPct,
		nullableString(momentum),
		string(status),
		chartUpdated,
		now.Format(time.RFC3339Nano),
		id,
	)
}

// UpdateTrackRegistry persists the registry phase result. Publisher and writer
// values from the registry take precedence over scraped credits when present.
// The searched and found flags only move on a conclusive lookup; a transient
// failure must not read as "searched and nothing found" when contacts are
// scored, and it never clears a found flag from an earlier pass.
func (s *Store) UpdateTrackRegistry(ctx context.Context, id int64, publisher, writerNames, iswc string, searched, found bool, status EnrichmentStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE tracks SET publisher = COALESCE(?, publisher), writer_names = COALESCE(?, writer_names),
             iswc = COALESCE(?, iswc),
             registry_searched = CASE WHEN ? THEN 1 ELSE registry_searched END,
             registry_found = CASE WHEN ? THEN ? ELSE registry_found END,
             registry_status = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(publisher),
		nullableString(writerNames),
		nullableString(iswc),
		boolToInt(searched),
		boolToInt(searched),
		boolToInt(found),
		string(status),
		now,
		id,
	)
}

// SetUnsignedScore records the scoring engine output and marks the track enriched.
func (s *Store) SetUnsignedScore(ctx context.Context, id int64, score int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE tracks SET unsigned_score = ?, enriched_at = ?, updated_at = ? WHERE id = ?`,
		score, now, now, id,
	)
}

// MarkEnrichmentAttempt stamps last_enrichment_attempt for a batch of tracks.
// Called at enqueue time so a second scheduler pass does not re-select tracks
// already claimed by an in-flight job.
func (s *Store) MarkEnrichmentAttempt(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	args := make([]any, 0, len(ids)+1)
	args = append(args, now)
	for _, id := range ids {
		args = append(args, id)
	}
	return s.execWithoutResultRetry(ctx,
		`UPDATE tracks SET last_enrichment_attempt = ? WHERE id IN (`+makePlaceholders(len(ids))+`)`,
		args...,
	)
}

// TracksNeedingArtistEnrichment selects tracks with writer metadata whose
// musicological link has not been attempted yet.
func (s *Store) TracksNeedingArtistEnrichment(ctx context.Context, limit int) ([]*Track, error) {
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks
         WHERE artist_status = ? AND (writer_names IS NOT NULL OR songwriter IS NOT NULL)
         ORDER BY id LIMIT ?`,
		string(EnrichmentPending), limit,
	)
}

// TracksNeedingChartEnrichment selects tracks with an ISRC that never had a
// successful analytics pass.
func (s *Store) TracksNeedingChartEnrichment(ctx context.Context, limit int) ([]*Track, error) {
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks
         WHERE chart_status = ? AND isrc IS NOT NULL
         ORDER BY id LIMIT ?`,
		string(EnrichmentPending), limit,
	)
}

// StaleChartTracks selects tracks whose last successful analytics pass is
// older than daysOld.
func (s *Store) StaleChartTracks(ctx context.Context, daysOld, limit int) ([]*Track, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysOld).Format(time.RFC3339Nano)
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks
         WHERE chart_status = ? AND chart_updated_at IS NOT NULL AND chart_updated_at < ?
         ORDER BY chart_updated_at LIMIT ?`,
		string(EnrichmentSuccess), cutoff, limit,
	)
}

// TracksNeedingRetry selects tracks with a failed or empty enrichment outcome
// whose last attempt is older than the cutoff.
func (s *Store) TracksNeedingRetry(ctx context.Context, cutoff time.Time, limit int) ([]*Track, error) {
	failed := string(EnrichmentFailed)
	noData := string(EnrichmentNoData)
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks
         WHERE (metadata_status IN (?, ?) OR credits_status IN (?, ?) OR artist_status IN (?, ?)
                OR chart_status IN (?, ?) OR registry_status IN (?, ?))
           AND (last_enrichment_attempt IS NULL OR last_enrichment_attempt < ?)
         ORDER BY id LIMIT ?`,
		failed, noData, failed, noData, failed, noData, failed, noData, failed, noData,
		cutoff.UTC().Format(time.RFC3339Nano), limit,
	)
}

// TracksWithStreams selects every track that has any streaming metric recorded.
func (s *Store) TracksWithStreams(ctx context.Context) ([]*Track, error) {
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE streams_total IS NOT NULL ORDER BY id`,
	)
}

// TracksBySongwriter returns every track attributed to the given songwriter.
func (s *Store) TracksBySongwriter(ctx context.Context, songwriter string) ([]*Track, error) {
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE songwriter = ? ORDER BY id`,
		songwriter,
	)
}

// SongwritersForTracks returns the distinct non-empty songwriter names across
// the given track ids.
func (s *Store) SongwritersForTracks(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT DISTINCT songwriter FROM tracks
         WHERE id IN (`+makePlaceholders(len(ids))+`) AND songwriter IS NOT NULL`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query songwriters: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan songwriter: %w", err)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}
