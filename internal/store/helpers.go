package store

import (
	"database/sql"
	"errors"
	"time"
)

const trackColumns = "id, week, playlist_id, playlist_name, track_name, artist_name, source_url, album_art, " +
	"catalog_id, isrc, external_url, popularity, label, publisher, writer_names, songwriter, " +
	"metadata_status, credits_status, artist_status, chart_status, registry_status, " +
	"last_enrichment_attempt, chart_updated_at, registry_searched, registry_found, iswc, " +
	"chart_id, streams_total, streams_prev, followers, wow_growth_pct, momentum, " +
	"unsigned_score, enriched_at, created_at, updated_at"

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*Track, error) {
	var (
		id             int64
		week           string
		playlistID     int64
		playlistName   string
		trackName      string
		artistName     string
		sourceURL      string
		albumArt       sql.NullString
		catalogID      sql.NullString
		isrc           sql.NullString
		externalURL    sql.NullString
		popularity     sql.NullInt64
		label          sql.NullString
		publisher      sql.NullString
		writerNames    sql.NullString
		songwriter     sql.NullString
		metadataStatus string
		creditsStatus  string
		artistStatus   string
		chartStatus    string
		registryStatus string
		lastAttemptRaw sql.NullString
		chartUpdatedAt sql.NullString
		regSearched    sql.NullInt64
		regFound       sql.NullInt64
		iswc           sql.NullString
		chartID        sql.NullString
		streamsTotal   sql.NullInt64
		streamsPrev    sql.NullInt64
		followers      sql.NullInt64
		wowGrowth      sql.NullFloat64
		momentum       sql.NullString
		unsignedScore  sql.NullInt64
		enrichedRaw    sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&week,
		&playlistID,
		&playlistName,
		&trackName,
		&artistName,
		&sourceURL,
		&albumArt,
		&catalogID,
		&isrc,
		&externalURL,
		&popularity,
		&label,
		&publisher,
		&writerNames,
		&songwriter,
		&metadataStatus,
		&creditsStatus,
		&artistStatus,
		&chartStatus,
		&registryStatus,
		&lastAttemptRaw,
		&chartUpdatedAt,
		&regSearched,
		&regFound,
		&iswc,
		&chartID,
		&streamsTotal,
		&streamsPrev,
		&followers,
		&wowGrowth,
		&momentum,
		&unsignedScore,
		&enrichedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	track := &Track{
		ID:             id,
		Week:           week,
		PlaylistID:     playlistID,
		PlaylistName:   playlistName,
		TrackName:      trackName,
		ArtistName:     artistName,
		SourceURL:      sourceURL,
		AlbumArt:       albumArt.String,
		CatalogID:      catalogID.String,
		ISRC:           isrc.String,
		ExternalURL:    externalURL.String,
		Popularity:     popularity.Int64,
		Label:          label.String,
		Publisher:      publisher.String,
		WriterNames:    writerNames.String,
		Songwriter:     songwriter.String,
		MetadataStatus: EnrichmentStatus(metadataStatus),
		CreditsStatus:  EnrichmentStatus(creditsStatus),
		ArtistStatus:   EnrichmentStatus(artistStatus),
		ChartStatus:    EnrichmentStatus(chartStatus),
		RegistryStatus: EnrichmentStatus(registryStatus),
		ISWC:           iswc.String,
		ChartID:        chartID.String,
		StreamsTotal:   streamsTotal.Int64,
		StreamsPrev:    streamsPrev.Int64,
		Followers:      followers.Int64,
		WowGrowthPct:   wowGrowth.Float64,
		Momentum:       momentum.String,
		UnsignedScore:  int(unsignedScore.Int64),
	}
	if regSearched.Valid {
		track.RegistrySearched = regSearched.Int64 != 0
	}
	if regFound.Valid {
		track.RegistryFound = regFound.Int64 != 0
	}
	if lastAttemptRaw.Valid {
		if t, err := parseTimeString(lastAttemptRaw.String); err == nil {
			track.LastEnrichmentAttempt = &t
		}
	}
	if chartUpdatedAt.Valid {
		if t, err := parseTimeString(chartUpdatedAt.String); err == nil {
			track.ChartUpdatedAt = &t
		}
	}
	if enrichedRaw.Valid {
		if t, err := parseTimeString(enrichedRaw.String); err == nil {
			track.EnrichedAt = &t
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		track.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		track.UpdatedAt = updated
	}
	return track, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
