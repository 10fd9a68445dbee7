package scheduler_test

import (
	"context"
	"testing"
	"time"

	"songscout/internal/enrich"
	"songscout/internal/jobqueue"
	"songscout/internal/logging"
	"songscout/internal/playlist"
	"songscout/internal/scheduler"
	"songscout/internal/store"
	"songscout/internal/testsupport"
)

type fakeFetcher struct {
	rows  map[string][]playlist.Row
	calls int
}

func (f *fakeFetcher) FetchPlaylist(ctx context.Context, catalogID string) (string, []playlist.Row, error) {
	f.calls++
	rows := f.rows[catalogID]
	name := "Fresh Finds Test"
	return name, rows, nil
}

func newScheduler(t *testing.T, st *store.Store, fetcher playlist.Fetcher) (*scheduler.Scheduler, *jobqueue.Manager) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithSchedulerEnabled())
	queue := jobqueue.NewManager(st, nil, time.Second, logging.NewNop())
	return scheduler.New(cfg.Scheduler, st, queue, fetcher, nil, logging.NewNop()), queue
}

func TestPlaylistRefreshSkipsCurrentWeek(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds Test")

	fetcher := &fakeFetcher{rows: map[string][]playlist.Row{
		"pl-1": {
			{PlaylistName: "Fresh Finds Test", TrackName: "Song A", ArtistName: "Jane", SourceURL: "https://example.com/a"},
			{PlaylistName: "Fresh Finds Test", TrackName: "Song B", ArtistName: "Kim", SourceURL: "https://example.com/b"},
		},
	}}
	sched, _ := newScheduler(t, st, fetcher)

	count, err := sched.RunPlaylistUpdateJob(ctx)
	if err != nil {
		t.Fatalf("playlist job: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 new tracks, got %d", count)
	}
	if depth, err := st.QueueDepth(ctx); err != nil || depth != 1 {
		t.Fatalf("expected one queued job, got %d %v", depth, err)
	}

	// The playlist was marked checked for this ISO week; a second run in the
	// same week finds nothing due.
	count, err = sched.RunPlaylistUpdateJob(ctx)
	if err != nil {
		t.Fatalf("second playlist job: %v", err)
	}
	if count != 0 || fetcher.calls != 1 {
		t.Fatalf("expected idempotent second run, count=%d calls=%d", count, fetcher.calls)
	}
}

func TestRetryJobSelectsOldFailures(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	pl := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds Test")
	track := testsupport.NewTrack(t, st, pl, "2026-W36", "Song", "Jane", "https://example.com/a")

	if err := st.UpdateTrackMetadata(ctx, track.ID, "", "", "", 0, "", store.EnrichmentFailed); err != nil {
		t.Fatalf("seed failure: %v", err)
	}

	sched, _ := newScheduler(t, st, &fakeFetcher{})
	count, err := sched.RunRetryJob(ctx)
	if err != nil {
		t.Fatalf("retry job: %v", err)
	}
	// The attempt timestamp is null, which counts as older than any cutoff.
	if count != 1 {
		t.Fatalf("expected one retry, got %d", count)
	}

	// The enqueue stamped the attempt; an immediate second run selects nothing.
	count, err = sched.RunRetryJob(ctx)
	if err != nil || count != 0 {
		t.Fatalf("expected fenced second run, got %d %v", count, err)
	}
}

func TestSnapshotJobFlagsOnlyLastChunk(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	pl := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds Test")

	for i := 0; i < 5; i++ {
		track := testsupport.NewTrack(t, st, pl, "2026-W36", "Song", "Jane",
			"https://example.com/"+string(rune('a'+i)))
		if err := st.UpdateTrackAnalytics(ctx, track.ID, "c", 100, 90, 10, 11, "steady", store.EnrichmentSuccess); err != nil {
			t.Fatalf("seed analytics: %v", err)
		}
	}

	cfg := testsupport.NewConfig(t, testsupport.WithSchedulerEnabled())
	cfg.Scheduler.SnapshotChunkSize = 2
	queue := jobqueue.NewManager(st, nil, time.Second, logging.NewNop())
	sched := scheduler.New(cfg.Scheduler, st, queue, &fakeFetcher{}, nil, logging.NewNop())

	count, err := sched.RunPerformanceSnapshotJob(ctx)
	if err != nil {
		t.Fatalf("snapshot job: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 tracks, got %d", count)
	}

	jobs, err := st.ListJobs(ctx, 10)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 chunk jobs, got %d", len(jobs))
	}
	flagged := 0
	for _, job := range jobs {
		if job.TargetPhase != enrich.PhaseAnalytics {
			t.Fatalf("expected analytics target, got %q", job.TargetPhase)
		}
		if job.CaptureSnapshot {
			flagged++
			if len(job.TrackIDs) != 1 {
				t.Fatalf("expected the short final chunk to carry the flag, got %d tracks", len(job.TrackIDs))
			}
		}
	}
	if flagged != 1 {
		t.Fatalf("expected exactly one flagged chunk, got %d", flagged)
	}
}

func TestStatusListsAllThreeJobs(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	sched, _ := newScheduler(t, st, &fakeFetcher{})

	infos := sched.Status()
	if len(infos) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(infos))
	}
	if infos[0].Name != scheduler.JobPlaylistRefresh || infos[0].Schedule == "" {
		t.Fatalf("unexpected first job: %+v", infos[0])
	}
	for _, info := range infos {
		if info.LastRun != nil {
			t.Fatalf("expected no runs yet: %+v", info)
		}
	}
}
