package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"songscout/internal/config"
	"songscout/internal/jobqueue"
	"songscout/internal/logging"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newTestService(t *testing.T, status int) (*ntfyService, *[]captured) {
	t.Helper()
	var got []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	svc := NewService(config.Notifications{NtfyTopic: server.URL, RequestTimeout: 5})
	ntfy, ok := svc.(*ntfyService)
	if !ok {
		t.Fatalf("expected ntfy service, got %T", svc)
	}
	return ntfy, &got
}

func TestNotifyJobCompletedSetsHeaders(t *testing.T) {
	svc, got := newTestService(t, http.StatusOK)

	if err := svc.NotifyJobCompleted(context.Background(), "0123456789abcdef", 50, 40, 0); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected one request, got %d", len(*got))
	}
	req := (*got)[0]
	if req.title != "Songscout - Job Complete" {
		t.Fatalf("unexpected title %q", req.title)
	}
	if req.tags != "songscout,job,completed" {
		t.Fatalf("unexpected tags %q", req.tags)
	}
	if req.priority != "" {
		t.Fatalf("expected no priority header, got %q", req.priority)
	}
	// The job ID is shortened to its first eight characters.
	if !strings.Contains(req.body, "01234567") || strings.Contains(req.body, "89abcdef") {
		t.Fatalf("unexpected body %q", req.body)
	}
	if !strings.Contains(req.body, "50 processed") || !strings.Contains(req.body, "40 enriched") {
		t.Fatalf("unexpected body %q", req.body)
	}
}

func TestNotifyJobFailedIsHighPriority(t *testing.T) {
	svc, got := newTestService(t, http.StatusOK)

	if err := svc.NotifyJobFailed(context.Background(), "job-1", "no tracks found"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	req := (*got)[0]
	if req.priority != "high" {
		t.Fatalf("expected high priority, got %q", req.priority)
	}
	if !strings.Contains(req.body, "no tracks found") {
		t.Fatalf("unexpected body %q", req.body)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	svc, _ := newTestService(t, http.StatusForbidden)

	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestEmptyTopicReturnsNoop(t *testing.T) {
	svc := NewService(config.Notifications{})
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyHotLead(context.Background(), "Jane Doe", 9); err != nil {
		t.Fatalf("noop should never fail: %v", err)
	}
}

type recordingService struct {
	noopService
	started      int
	startedCount int
	tracks       []int64
	completed    int
	failed       int
}

func (r *recordingService) NotifyJobStarted(_ context.Context, _ string, trackCount int) error {
	r.started++
	r.startedCount = trackCount
	return nil
}

func (r *recordingService) NotifyTrackEnriched(_ context.Context, _, _ string, trackID int64) error {
	r.tracks = append(r.tracks, trackID)
	return nil
}

func (r *recordingService) NotifyJobCompleted(context.Context, string, int, int, int) error {
	r.completed++
	return nil
}

func (r *recordingService) NotifyJobFailed(context.Context, string, string) error {
	r.failed++
	return nil
}

func TestPumpFiltersByConfigFlags(t *testing.T) {
	rec := &recordingService{}
	pump := NewPump(config.Notifications{JobCompleted: true, Errors: true}, rec, logging.NewNop())

	for _, event := range []jobqueue.ProgressEvent{
		{Type: jobqueue.EventJobStarted, JobID: "j1"},
		{Type: jobqueue.EventTrackEnriched, JobID: "j1", Phase: "metadata", TrackID: 7},
		{Type: jobqueue.EventPhaseCompleted, JobID: "j1", Phase: "metadata"},
		{Type: jobqueue.EventJobCompleted, JobID: "j1"},
		{Type: jobqueue.EventJobFailed, JobID: "j2", Message: "boom"},
	} {
		pump.handle(context.Background(), event)
	}

	if rec.started != 0 {
		t.Fatalf("job_started is disabled, got %d notifications", rec.started)
	}
	if len(rec.tracks) != 0 {
		t.Fatalf("track_enriched is disabled, got %v", rec.tracks)
	}
	if rec.completed != 1 || rec.failed != 1 {
		t.Fatalf("expected one completed and one failed, got %d/%d", rec.completed, rec.failed)
	}
}

func TestPumpCarriesTypedEventFields(t *testing.T) {
	rec := &recordingService{}
	pump := NewPump(config.Notifications{JobStarted: true, TrackEnriched: true}, rec, logging.NewNop())

	pump.handle(context.Background(), jobqueue.ProgressEvent{
		Type: jobqueue.EventJobStarted, JobID: "j1", TrackCount: 25,
	})
	pump.handle(context.Background(), jobqueue.ProgressEvent{
		Type: jobqueue.EventTrackEnriched, JobID: "j1", Phase: "registry", TrackID: 42,
	})

	if rec.startedCount != 25 {
		t.Fatalf("expected track count 25 on job start, got %d", rec.startedCount)
	}
	if len(rec.tracks) != 1 || rec.tracks[0] != 42 {
		t.Fatalf("expected track 42 forwarded, got %v", rec.tracks)
	}
}
