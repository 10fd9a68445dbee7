package testsupport

import (
	"context"
	"testing"

	"songscout/internal/config"
	"songscout/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewPlaylist creates a tracked playlist for tests.
func NewPlaylist(t testing.TB, st *store.Store, catalogID, name string) *store.Playlist {
	t.Helper()

	playlist, err := st.UpsertPlaylist(context.Background(), catalogID, name, true)
	if err != nil {
		t.Fatalf("store.UpsertPlaylist: %v", err)
	}
	return playlist
}

// NewTrack inserts one playlist-fetch row and returns the stored track.
func NewTrack(t testing.TB, st *store.Store, playlist *store.Playlist, week, name, artist, url string) *store.Track {
	t.Helper()

	ids, err := st.InsertTracks(context.Background(), []store.TrackRow{{
		Week:         week,
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		TrackName:    name,
		ArtistName:   artist,
		SourceURL:    url,
	}})
	if err != nil {
		t.Fatalf("store.InsertTracks: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected one inserted track, got %d", len(ids))
	}
	track, err := st.GetTrack(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("store.GetTrack: %v", err)
	}
	return track
}
