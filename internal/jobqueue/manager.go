package jobqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"songscout/internal/enrich"
	"songscout/internal/logging"
	"songscout/internal/scoring"
	"songscout/internal/services"
	"songscout/internal/store"
)

// LeadNotifier receives an alert when a songwriter first crosses the
// hot-lead threshold.
type LeadNotifier interface {
	NotifyHotLead(ctx context.Context, songwriter string, score int) error
}

// Manager accepts enrichment requests, sequences phase execution per job,
// and publishes progress events. One worker loop processes jobs in queue
// order; phases within a job run strictly in sequence.
type Manager struct {
	store        *store.Store
	phases       map[string]enrich.Phase
	events       *Broadcaster
	logger       *slog.Logger
	pollInterval time.Duration
	wake         chan struct{}
	leads        LeadNotifier
}

// NewManager wires the queue over the given phases. Phases missing from the
// list are skipped at run time, which keeps partial deployments (no browser,
// no analytics key) functional.
func NewManager(st *store.Store, phases []enrich.Phase, pollInterval time.Duration, logger *slog.Logger) *Manager {
	byName := make(map[string]enrich.Phase, len(phases))
	for _, phase := range phases {
		byName[phase.Name()] = phase
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Manager{
		store:        st,
		phases:       byName,
		events:       NewBroadcaster(),
		logger:       logging.NewComponentLogger(logger, "jobqueue"),
		pollInterval: pollInterval,
		wake:         make(chan struct{}, 1),
	}
}

// Events exposes the progress broadcaster for subscribers.
func (m *Manager) Events() *Broadcaster { return m.events }

// SetLeadNotifier registers the hot-lead alert sink. Call before Start.
func (m *Manager) SetLeadNotifier(n LeadNotifier) { m.leads = n }

// Enqueue creates a job for the given tracks. The attempt timestamp is
// stamped immediately so a concurrent scheduler pass does not re-select the
// same tracks while this job is in flight.
func (m *Manager) Enqueue(ctx context.Context, trackIDs []int64, targetPhase string, captureSnapshot bool) (*store.Job, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("enqueue: no track ids")
	}
	if targetPhase != "" && !enrich.ValidPhase(targetPhase) {
		return nil, fmt.Errorf("enqueue: unknown phase %q", targetPhase)
	}

	if err := m.store.MarkEnrichmentAttempt(ctx, trackIDs); err != nil {
		return nil, fmt.Errorf("mark enrichment attempt: %w", err)
	}
	job, err := m.store.CreateJob(ctx, trackIDs, targetPhase, captureSnapshot)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	m.logger.Info("job enqueued",
		logging.String(logging.FieldJobID, job.ID),
		logging.Int("tracks", len(trackIDs)),
		logging.String(logging.FieldPhase, targetPhase),
		logging.Bool("capture_snapshot", captureSnapshot))

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return job, nil
}

// Status fetches a job by id.
func (m *Manager) Status(ctx context.Context, jobID string) (*store.Job, error) {
	job, err := m.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	return job, nil
}

// Start runs the worker loop until the context is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.logger.Info("queue worker started", logging.Duration("poll_interval", m.pollInterval))
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := m.ProcessQueuedJobs(ctx); err != nil {
			m.logger.Error("queue pass failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			m.logger.Info("queue worker stopped")
			return
		case <-m.wake:
		case <-ticker.C:
		}
	}
}

// ProcessQueuedJobs drains the queue synchronously and reports how many jobs
// ran. The daemon loop and the CLI entry points both use it.
func (m *Manager) ProcessQueuedJobs(ctx context.Context) (int, error) {
	processed := 0
	for {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		job, err := m.store.NextQueuedJob(ctx)
		if err != nil {
			return processed, fmt.Errorf("next queued job: %w", err)
		}
		if job == nil {
			return processed, nil
		}
		m.runJob(ctx, job)
		processed++
	}
}

func (m *Manager) runJob(ctx context.Context, job *store.Job) {
	logger := m.logger.With(logging.String(logging.FieldJobID, job.ID))
	ctx = services.WithJobID(ctx, job.ID)

	if err := m.store.MarkJobRunning(ctx, job.ID); err != nil {
		logger.Error("mark job running", logging.Error(err))
		return
	}
	m.events.Publish(ProgressEvent{
		Type:       EventJobStarted,
		JobID:      job.ID,
		Phase:      job.TargetPhase,
		TrackCount: int64(len(job.TrackIDs)),
		Message:    fmt.Sprintf("%d tracks", len(job.TrackIDs)),
	})

	tracks, err := m.store.GetTracks(ctx, job.TrackIDs)
	if err != nil {
		m.failJob(ctx, job, fmt.Errorf("load tracks: %w", err))
		return
	}
	if len(tracks) == 0 {
		m.failJob(ctx, job, fmt.Errorf("no tracks found for job"))
		return
	}

	order := enrich.Order()
	if job.TargetPhase != "" {
		order = []string{job.TargetPhase}
	}

	var total enrich.Summary
	for _, name := range order {
		phase, ok := m.phases[name]
		if !ok {
			logger.Debug("phase not configured, skipping", logging.String(logging.FieldPhase, name))
			continue
		}
		summary := phase.Run(services.WithPhase(ctx, name), tracks)
		total.Merge(summary)

		for _, track := range tracks {
			if enrich.StatusFor(track, name) != store.EnrichmentSuccess {
				continue
			}
			m.events.Publish(ProgressEvent{
				Type:    EventTrackEnriched,
				JobID:   job.ID,
				Phase:   name,
				TrackID: track.ID,
			})
		}

		if err := m.store.UpdateJobProgress(ctx, job.ID,
			int64(total.Processed), int64(total.Enriched), int64(total.Failed)); err != nil {
			logger.Error("update job progress", logging.Error(err))
		}
		m.events.Publish(ProgressEvent{
			Type:            EventPhaseCompleted,
			JobID:           job.ID,
			Phase:           name,
			TracksProcessed: int64(summary.Processed),
			TracksEnriched:  int64(summary.Enriched),
			Errors:          int64(summary.Failed),
		})
		logger.Info("phase completed",
			logging.String(logging.FieldPhase, name),
			logging.Int("processed", summary.Processed),
			logging.Int("enriched", summary.Enriched),
			logging.Int("failed", summary.Failed),
			logging.Int("no_data", summary.NoData),
			logging.Int("skipped", summary.Skipped))
	}

	m.rescoreTracks(ctx, tracks, logger)
	m.rescoreContacts(ctx, job.TrackIDs, logger)

	// The snapshot flag rides only on the last chunk of a large job, so this
	// fires exactly once per chunked request.
	if job.CaptureSnapshot {
		if snapshot, err := m.store.CaptureSnapshot(ctx); err != nil {
			logger.Error("capture snapshot", logging.Error(err))
		} else {
			logger.Info("performance snapshot captured",
				logging.Int64("tracks", snapshot.TrackCount),
				logging.Int64("total_streams", snapshot.TotalStreams))
		}
	}

	if err := m.store.FinishJob(ctx, job.ID, store.JobCompleted,
		int64(total.Processed), int64(total.Enriched), int64(total.Failed), ""); err != nil {
		logger.Error("finish job", logging.Error(err))
	}
	if err := m.store.LogActivity(ctx, "job_completed",
		fmt.Sprintf("job %s: %d processed, %d enriched, %d errors", job.ID, total.Processed, total.Enriched, total.Failed)); err != nil {
		logger.Debug("log activity", logging.Error(err))
	}
	m.events.Publish(ProgressEvent{
		Type:            EventJobCompleted,
		JobID:           job.ID,
		TracksProcessed: int64(total.Processed),
		TracksEnriched:  int64(total.Enriched),
		Errors:          int64(total.Failed),
	})
}

func (m *Manager) failJob(ctx context.Context, job *store.Job, cause error) {
	m.logger.Error("job failed",
		logging.String(logging.FieldJobID, job.ID), logging.Error(cause))
	if err := m.store.FinishJob(ctx, job.ID, store.JobFailed, 0, 0, 1, cause.Error()); err != nil {
		m.logger.Error("finish failed job", logging.Error(err))
	}
	m.events.Publish(ProgressEvent{
		Type:    EventJobFailed,
		JobID:   job.ID,
		Errors:  1,
		Message: cause.Error(),
	})
}

func (m *Manager) rescoreTracks(ctx context.Context, tracks []*store.Track, logger *slog.Logger) {
	for _, track := range tracks {
		score := scoring.CalculateUnsignedScore(scoring.InputFromTrack(track))
		if err := m.store.SetUnsignedScore(ctx, track.ID, score); err != nil {
			logger.Error("persist unsigned score",
				logging.Int64(logging.FieldTrackID, track.ID), logging.Error(err))
			continue
		}
		track.UnsignedScore = score
	}
}

func (m *Manager) rescoreContacts(ctx context.Context, trackIDs []int64, logger *slog.Logger) {
	names, err := m.store.SongwritersForTracks(ctx, trackIDs)
	if err != nil {
		logger.Error("list songwriters", logging.Error(err))
		return
	}
	for _, name := range names {
		tracks, err := m.store.TracksBySongwriter(ctx, name)
		if err != nil || len(tracks) == 0 {
			continue
		}
		input := scoring.ContactInputFromTracks(tracks)
		score := scoring.CalculateContactScore(input)

		var totalStreams int64
		for _, track := range tracks {
			totalStreams += track.StreamsTotal
		}
		contact := &store.Contact{
			SongwriterName:        name,
			RegistrySearchedCount: int64(input.RegistrySearchedCount),
			RegistryFoundCount:    int64(input.RegistryFoundCount),
			TotalStreams:          totalStreams,
			WowGrowthPct:          input.AvgWowGrowthPct,
			HotLead:               scoring.HotLead(score),
			UnsignedScore:         score,
			TrackCount:            int64(len(tracks)),
		}
		previous, err := m.store.ContactBySongwriter(ctx, name)
		if err != nil {
			logger.Debug("load contact", logging.String("songwriter", name), logging.Error(err))
		}
		if err := m.store.UpsertContact(ctx, contact); err != nil {
			logger.Error("upsert contact",
				logging.String("songwriter", name), logging.Error(err))
			continue
		}
		// Alert only on the transition into hot-lead territory.
		if m.leads != nil && contact.HotLead && (previous == nil || !previous.HotLead) {
			if err := m.leads.NotifyHotLead(ctx, name, score); err != nil {
				logger.Warn("hot lead notification failed",
					logging.String("songwriter", name), logging.Error(err))
			}
		}
	}
}
