package store_test

import (
	"context"
	"testing"
	"time"

	"songscout/internal/store"
	"songscout/internal/testsupport"
)

func TestInsertTracksUpsertsByWeekPlaylistURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	playlist := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds")

	first, err := st.InsertTracks(ctx, []store.TrackRow{{
		Week: "2026-W35", PlaylistID: playlist.ID, PlaylistName: playlist.Name,
		TrackName: "Song", ArtistName: "Jane", SourceURL: "https://x/track/1",
		AlbumArt: "old.jpg",
	}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one inserted id, got %d", len(first))
	}

	second, err := st.InsertTracks(ctx, []store.TrackRow{{
		Week: "2026-W35", PlaylistID: playlist.ID, PlaylistName: playlist.Name,
		TrackName: "Song", ArtistName: "Jane", SourceURL: "https://x/track/1",
		AlbumArt: "new.jpg",
	}})
	if err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no new ids on upsert, got %d", len(second))
	}

	track, err := st.GetTrack(ctx, first[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if track.AlbumArt != "new.jpg" {
		t.Fatalf("expected mutable field overwrite, got %q", track.AlbumArt)
	}

	// A different week is a new row.
	third, err := st.InsertTracks(ctx, []store.TrackRow{{
		Week: "2026-W36", PlaylistID: playlist.ID, PlaylistName: playlist.Name,
		TrackName: "Song", ArtistName: "Jane", SourceURL: "https://x/track/1",
	}})
	if err != nil {
		t.Fatalf("insert new week: %v", err)
	}
	if len(third) != 1 {
		t.Fatalf("expected new row for new week, got %d ids", len(third))
	}
}

func TestTracksNeedingRetryHonorsCutoff(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	playlist := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds")
	stale := testsupport.NewTrack(t, st, playlist, "2026-W35", "Old", "A", "https://x/t/1")
	fresh := testsupport.NewTrack(t, st, playlist, "2026-W35", "New", "B", "https://x/t/2")

	if err := st.UpdateTrackMetadata(ctx, stale.ID, "", "", "", 0, "", store.EnrichmentFailed); err != nil {
		t.Fatalf("update stale: %v", err)
	}
	if err := st.UpdateTrackMetadata(ctx, fresh.ID, "", "", "", 0, "", store.EnrichmentFailed); err != nil {
		t.Fatalf("update fresh: %v", err)
	}
	if err := st.MarkEnrichmentAttempt(ctx, []int64{stale.ID, fresh.ID}); err != nil {
		t.Fatalf("mark attempts: %v", err)
	}

	// A cutoff between the two attempt ages: stale attempted 8 days ago,
	// fresh attempted now. Simulate by selecting with a cutoff in the future
	// for stale only; MarkEnrichmentAttempt stamps "now", so move the cutoff.
	cutoff := time.Now().Add(time.Minute)
	tracks, err := st.TracksNeedingRetry(ctx, cutoff, 10)
	if err != nil {
		t.Fatalf("retry query: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected both tracks before cutoff, got %d", len(tracks))
	}

	cutoff = time.Now().Add(-24 * time.Hour)
	tracks, err = st.TracksNeedingRetry(ctx, cutoff, 10)
	if err != nil {
		t.Fatalf("retry query: %v", err)
	}
	if len(tracks) != 0 {
		t.Fatalf("expected no tracks with day-old cutoff, got %d", len(tracks))
	}
}

func TestJobLifecycleAndAuditImmutability(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, []int64{1, 2, 3}, "", true)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.Status != store.JobQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}
	if !job.CaptureSnapshot {
		t.Fatal("expected snapshot flag")
	}
	if len(job.TrackIDs) != 3 {
		t.Fatalf("unexpected track ids: %v", job.TrackIDs)
	}

	next, err := st.NextQueuedJob(ctx)
	if err != nil || next == nil || next.ID != job.ID {
		t.Fatalf("next queued job: %v %v", next, err)
	}

	if err := st.MarkJobRunning(ctx, job.ID); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := st.FinishJob(ctx, job.ID, store.JobCompleted, 3, 2, 1, ""); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Terminal rows are never mutated.
	if err := st.FinishJob(ctx, job.ID, store.JobFailed, 0, 0, 0, "late"); err != nil {
		t.Fatalf("second finish: %v", err)
	}
	got, err := st.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != store.JobCompleted || got.TracksEnriched != 2 {
		t.Fatalf("terminal job mutated: %+v", got)
	}
	if got.StartedAt == nil || got.FinishedAt == nil {
		t.Fatal("expected timestamps on terminal job")
	}
}

func TestFinishJobRejectsNonTerminalStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	job, err := st.CreateJob(context.Background(), []int64{1}, "analytics", false)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := st.FinishJob(context.Background(), job.ID, store.JobRunning, 0, 0, 0, ""); err == nil {
		t.Fatal("expected error for non-terminal status")
	}
}

func TestPlaylistsDueForRefreshFiltersByISOWeek(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	due := testsupport.NewPlaylist(t, st, "pl-due", "Fresh Finds")
	done := testsupport.NewPlaylist(t, st, "pl-done", "Fresh Finds Pop")
	if err := st.MarkPlaylistChecked(ctx, done.ID, "2026-W35"); err != nil {
		t.Fatalf("mark checked: %v", err)
	}

	playlists, err := st.PlaylistsDueForRefresh(ctx, "2026-W35", 10)
	if err != nil {
		t.Fatalf("due query: %v", err)
	}
	if len(playlists) != 1 || playlists[0].ID != due.ID {
		t.Fatalf("expected only unchecked playlist, got %+v", playlists)
	}

	// A new week makes the checked playlist due again.
	playlists, err = st.PlaylistsDueForRefresh(ctx, "2026-W36", 10)
	if err != nil {
		t.Fatalf("due query: %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("expected both playlists due in new week, got %d", len(playlists))
	}
}

func TestContactUpsertPreservesStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	contact := &store.Contact{SongwriterName: "Jane Doe", UnsignedScore: 7, TrackCount: 2}
	if err := st.UpsertContact(ctx, contact); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.SetContactStage(ctx, "Jane Doe", store.StageWatch); err != nil {
		t.Fatalf("set stage: %v", err)
	}

	contact.UnsignedScore = 9
	if err := st.UpsertContact(ctx, contact); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err := st.ContactBySongwriter(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	if got.Stage != store.StageWatch {
		t.Fatalf("expected manual stage preserved, got %q", got.Stage)
	}
	if got.UnsignedScore != 9 {
		t.Fatalf("expected score updated, got %d", got.UnsignedScore)
	}
}

func TestResolveArtistAndLinking(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	playlist := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds")
	track := testsupport.NewTrack(t, st, playlist, "2026-W35", "Song", "Jane", "https://x/t/1")

	artist, err := st.ResolveArtist(ctx, "mbid-1", "Jane Doe", `{"website":"https://jane.example"}`)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	again, err := st.ResolveArtist(ctx, "mbid-1", "Jane Doe", "")
	if err != nil {
		t.Fatalf("re-resolve: %v", err)
	}
	if artist.ID != again.ID {
		t.Fatal("expected stable artist row across resolves")
	}
	if again.LinksJSON == "" {
		t.Fatal("expected links preserved when re-resolving without links")
	}

	if err := st.LinkTrackArtist(ctx, track.ID, artist.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := st.LinkTrackArtist(ctx, track.ID, artist.ID); err != nil {
		t.Fatalf("relink: %v", err)
	}
	linked, err := st.ArtistsForTrack(ctx, track.ID)
	if err != nil {
		t.Fatalf("artists for track: %v", err)
	}
	if len(linked) != 1 {
		t.Fatalf("expected one linked artist, got %d", len(linked))
	}
}

func TestCaptureSnapshotAggregatesStreams(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	playlist := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds")
	a := testsupport.NewTrack(t, st, playlist, "2026-W35", "A", "X", "https://x/t/1")
	b := testsupport.NewTrack(t, st, playlist, "2026-W35", "B", "Y", "https://x/t/2")
	testsupport.NewTrack(t, st, playlist, "2026-W35", "C", "Z", "https://x/t/3")

	if err := st.UpdateTrackAnalytics(ctx, a.ID, "cm-1", 1000, 800, 50, 25, "rising", store.EnrichmentSuccess); err != nil {
		t.Fatalf("analytics a: %v", err)
	}
	if err := st.UpdateTrackAnalytics(ctx, b.ID, "cm-2", 500, 400, 20, 25, "rising", store.EnrichmentSuccess); err != nil {
		t.Fatalf("analytics b: %v", err)
	}

	snapshot, err := st.CaptureSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.TrackCount != 2 || snapshot.TotalStreams != 1500 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	latest, err := st.LatestSnapshot(ctx)
	if err != nil || latest == nil || latest.ID != snapshot.ID {
		t.Fatalf("latest snapshot: %+v %v", latest, err)
	}
}

func TestStaleChartTrackSelection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	playlist := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds")
	track := testsupport.NewTrack(t, st, playlist, "2026-W35", "A", "X", "https://x/t/1")

	if err := st.UpdateTrackAnalytics(ctx, track.ID, "cm-1", 100, 80, 10, 25, "rising", store.EnrichmentSuccess); err != nil {
		t.Fatalf("analytics: %v", err)
	}

	// Fresh pass: not stale at the default 7 days.
	stale, err := st.StaleChartTracks(ctx, 7, 10)
	if err != nil {
		t.Fatalf("stale query: %v", err)
	}
	if len(stale) != 0 {
		t.Fatalf("expected no stale tracks, got %d", len(stale))
	}

	// With a negative age the cutoff is in the future, so the pass is stale.
	stale, err = st.StaleChartTracks(ctx, -1, 10)
	if err != nil {
		t.Fatalf("stale query: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected one stale track, got %d", len(stale))
	}
}
