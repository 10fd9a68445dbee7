package playlist

import (
	"context"
	"fmt"
	"time"

	"songscout/internal/store"
)

// Row is one track supplied by a playlist membership fetch.
type Row struct {
	PlaylistCatalogID string
	PlaylistName      string
	TrackName         string
	ArtistName        string
	SourceURL         string
	AlbumArt          string
}

// Fetcher lists the current membership of a playlist by its catalog id.
// Implementations own their transport; the pipeline treats membership as given.
type Fetcher interface {
	FetchPlaylist(ctx context.Context, catalogID string) (name string, rows []Row, err error)
}

// ISOWeek renders the ISO 8601 week of t, e.g. "2026-W35". Track upserts and
// the playlist refresh cadence both key on this value.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ToTrackRows converts fetched rows into store upsert rows for one playlist
// and week.
func ToTrackRows(rows []Row, week string, playlistID int64) []store.TrackRow {
	out := make([]store.TrackRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.TrackRow{
			Week:         week,
			PlaylistID:   playlistID,
			PlaylistName: row.PlaylistName,
			TrackName:    row.TrackName,
			ArtistName:   row.ArtistName,
			SourceURL:    row.SourceURL,
			AlbumArt:     row.AlbumArt,
		})
	}
	return out
}
