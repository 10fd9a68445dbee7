package jobqueue_test

import (
	"context"
	"testing"
	"time"

	"songscout/internal/enrich"
	"songscout/internal/jobqueue"
	"songscout/internal/logging"
	"songscout/internal/store"
	"songscout/internal/testsupport"
)

type fakePhase struct {
	name string
	runs *[]string
}

func (p *fakePhase) Name() string { return p.name }

func (p *fakePhase) Run(ctx context.Context, tracks []*store.Track) enrich.Summary {
	*p.runs = append(*p.runs, p.name)
	return enrich.Summary{Processed: len(tracks), Enriched: len(tracks)}
}

func newManager(t *testing.T, st *store.Store, runs *[]string) *jobqueue.Manager {
	t.Helper()
	phases := make([]enrich.Phase, 0, len(enrich.Order()))
	for _, name := range enrich.Order() {
		phases = append(phases, &fakePhase{name: name, runs: runs})
	}
	return jobqueue.NewManager(st, phases, time.Second, logging.NewNop())
}

func seedTrackIDs(t *testing.T, st *store.Store, n int) []int64 {
	t.Helper()
	pl := testsupport.NewPlaylist(t, st, "pl-1", "Fresh Finds Test")
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		track := testsupport.NewTrack(t, st, pl, "2026-W36",
			"Song", "Jane", "https://example.com/t/"+string(rune('a'+i)))
		ids = append(ids, track.ID)
	}
	return ids
}

func TestJobRunsPhasesInOrder(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	var runs []string
	manager := newManager(t, st, &runs)
	ids := seedTrackIDs(t, st, 2)

	events, cancel := manager.Events().Subscribe(16)
	defer cancel()

	job, err := manager.Enqueue(ctx, ids, "", false)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if processed, err := manager.ProcessQueuedJobs(ctx); err != nil || processed != 1 {
		t.Fatalf("process: %d %v", processed, err)
	}

	want := enrich.Order()
	if len(runs) != len(want) {
		t.Fatalf("expected %d phase runs, got %v", len(want), runs)
	}
	for i, name := range want {
		if runs[i] != name {
			t.Fatalf("phase order mismatch: %v", runs)
		}
	}

	final, err := manager.Status(ctx, job.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if final.Status != store.JobCompleted {
		t.Fatalf("expected completed, got %s", final.Status)
	}
	if final.TracksProcessed != int64(2*len(want)) {
		t.Fatalf("unexpected processed count %d", final.TracksProcessed)
	}

	types := drainEventTypes(events)
	if types[0] != jobqueue.EventJobStarted {
		t.Fatalf("expected job_started first, got %v", types)
	}
	if types[len(types)-1] != jobqueue.EventJobCompleted {
		t.Fatalf("expected job_completed last, got %v", types)
	}
}

func TestTargetPhaseRunsAlone(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	var runs []string
	manager := newManager(t, st, &runs)
	ids := seedTrackIDs(t, st, 1)

	if _, err := manager.Enqueue(ctx, ids, enrich.PhaseAnalytics, false); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := manager.ProcessQueuedJobs(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(runs) != 1 || runs[0] != enrich.PhaseAnalytics {
		t.Fatalf("expected single analytics run, got %v", runs)
	}
}

func TestEnqueueRejectsUnknownPhase(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	manager := newManager(t, st, &[]string{})
	ids := seedTrackIDs(t, st, 1)

	if _, err := manager.Enqueue(context.Background(), ids, "bogus", false); err == nil {
		t.Fatal("expected unknown phase to be rejected")
	}
	if _, err := manager.Enqueue(context.Background(), nil, "", false); err == nil {
		t.Fatal("expected empty track set to be rejected")
	}
}

func TestSnapshotFiresOnlyOnFlaggedChunk(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	var runs []string
	manager := newManager(t, st, &runs)
	ids := seedTrackIDs(t, st, 6)

	// Three chunks; only the last carries the snapshot flag.
	chunks := [][]int64{ids[0:2], ids[2:4], ids[4:6]}
	for i, chunk := range chunks {
		last := i == len(chunks)-1
		if _, err := manager.Enqueue(ctx, chunk, enrich.PhaseAnalytics, last); err != nil {
			t.Fatalf("enqueue chunk %d: %v", i, err)
		}
		if _, err := manager.ProcessQueuedJobs(ctx); err != nil {
			t.Fatalf("process chunk %d: %v", i, err)
		}

		snapshot, err := st.LatestSnapshot(ctx)
		if err != nil {
			t.Fatalf("latest snapshot: %v", err)
		}
		if !last && snapshot != nil {
			t.Fatalf("snapshot captured before last chunk (chunk %d)", i)
		}
		if last && snapshot == nil {
			t.Fatal("expected snapshot after last chunk")
		}
	}
}

func TestEnqueueFencesRetrySelection(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	manager := newManager(t, st, &[]string{})
	ids := seedTrackIDs(t, st, 1)

	if err := st.UpdateTrackMetadata(ctx, ids[0], "", "", "", 0, "", store.EnrichmentFailed); err != nil {
		t.Fatalf("seed failure: %v", err)
	}

	// Before the enqueue the track is retry-eligible.
	eligible, err := st.TracksNeedingRetry(ctx, time.Now().Add(time.Minute), 10)
	if err != nil || len(eligible) != 1 {
		t.Fatalf("expected one eligible track, got %d %v", len(eligible), err)
	}

	if _, err := manager.Enqueue(ctx, ids, "", false); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// The attempt stamp fences a second selection pass.
	eligible, err = st.TracksNeedingRetry(ctx, time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("retry query: %v", err)
	}
	if len(eligible) != 0 {
		t.Fatalf("expected fenced track, got %d", len(eligible))
	}
}

type stampingPhase struct{}

func (stampingPhase) Name() string { return enrich.PhaseMetadata }

func (stampingPhase) Run(ctx context.Context, tracks []*store.Track) enrich.Summary {
	for _, track := range tracks {
		track.MetadataStatus = store.EnrichmentSuccess
	}
	return enrich.Summary{Processed: len(tracks), Enriched: len(tracks)}
}

func TestTrackEnrichedEventPerSuccessfulTrack(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	manager := jobqueue.NewManager(st, []enrich.Phase{stampingPhase{}}, time.Second, logging.NewNop())
	ids := seedTrackIDs(t, st, 2)

	events, cancel := manager.Events().Subscribe(16)
	defer cancel()

	if _, err := manager.Enqueue(ctx, ids, enrich.PhaseMetadata, false); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := manager.ProcessQueuedJobs(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	var seen []int64
drain:
	for {
		select {
		case event := <-events:
			if event.Type != jobqueue.EventTrackEnriched {
				continue
			}
			if event.Phase != enrich.PhaseMetadata {
				t.Fatalf("unexpected phase on track event: %+v", event)
			}
			seen = append(seen, event.TrackID)
		default:
			break drain
		}
	}
	if len(seen) != len(ids) {
		t.Fatalf("expected %d track events, got %v", len(ids), seen)
	}
	for i, id := range ids {
		if seen[i] != id {
			t.Fatalf("track event order mismatch: got %v want %v", seen, ids)
		}
	}
}

func TestJobStartedEventCarriesTrackCount(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	manager := newManager(t, st, &[]string{})
	ids := seedTrackIDs(t, st, 3)

	events, cancel := manager.Events().Subscribe(16)
	defer cancel()

	if _, err := manager.Enqueue(ctx, ids, "", false); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := manager.ProcessQueuedJobs(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	started := <-events
	if started.Type != jobqueue.EventJobStarted {
		t.Fatalf("expected job_started first, got %s", started.Type)
	}
	if started.TrackCount != 3 {
		t.Fatalf("expected track count 3, got %d", started.TrackCount)
	}
}

type fakeLeadNotifier struct {
	alerts []string
}

func (f *fakeLeadNotifier) NotifyHotLead(ctx context.Context, songwriter string, score int) error {
	f.alerts = append(f.alerts, songwriter)
	return nil
}

func TestHotLeadAlertFiresOnceOnTransition(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	manager := newManager(t, st, &[]string{})
	notifier := &fakeLeadNotifier{}
	manager.SetLeadNotifier(notifier)
	ids := seedTrackIDs(t, st, 1)

	// A credited writer with no publisher whose registry search found nothing
	// clears the hot-lead threshold.
	if err := st.UpdateTrackCredits(ctx, ids[0], "Jane Doe", "", store.EnrichmentSuccess); err != nil {
		t.Fatalf("seed credits: %v", err)
	}
	if err := st.UpdateTrackRegistry(ctx, ids[0], "", "", "", true, false, store.EnrichmentNoData); err != nil {
		t.Fatalf("seed registry: %v", err)
	}

	if _, err := manager.Enqueue(ctx, ids, "", false); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := manager.ProcessQueuedJobs(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(notifier.alerts) != 1 || notifier.alerts[0] != "Jane Doe" {
		t.Fatalf("expected one hot-lead alert, got %v", notifier.alerts)
	}

	// Rescoring an already-hot contact does not alert again.
	if _, err := manager.Enqueue(ctx, ids, "", false); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if _, err := manager.ProcessQueuedJobs(ctx); err != nil {
		t.Fatalf("second process: %v", err)
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("expected no repeat alert, got %v", notifier.alerts)
	}
}

func TestBroadcasterDropsWhenSubscriberLags(t *testing.T) {
	b := jobqueue.NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	for i := 0; i < 5; i++ {
		b.Publish(jobqueue.ProgressEvent{Type: jobqueue.EventPhaseCompleted})
	}
	// Only the buffered event is retained; publishing never blocked.
	if got := len(ch); got != 1 {
		t.Fatalf("expected one buffered event, got %d", got)
	}
}

func drainEventTypes(ch <-chan jobqueue.ProgressEvent) []jobqueue.EventType {
	var types []jobqueue.EventType
	for {
		select {
		case event := <-ch:
			types = append(types, event.Type)
		default:
			return types
		}
	}
}
