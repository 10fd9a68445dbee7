package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"songscout/internal/authhealth"
	"songscout/internal/config"
	"songscout/internal/enrich"
	"songscout/internal/jobqueue"
	"songscout/internal/logging"
	"songscout/internal/playlist"
	"songscout/internal/store"
)

// Job names as registered with the cron runner.
const (
	JobPlaylistRefresh = "playlist_refresh"
	JobRetry           = "failed_enrichment_retry"
	JobSnapshot        = "performance_snapshot"
)

// JobInfo is the inspectable state of one recurring job.
type JobInfo struct {
	Name      string
	Schedule  string
	LastRun   *time.Time
	LastError string
	LastCount int
}

// Scheduler drives the three recurring cadences. Nothing runs until Start is
// called, and Start is a no-op unless the enable flag is set.
type Scheduler struct {
	cfg     config.Scheduler
	store   *store.Store
	queue   *jobqueue.Manager
	fetcher playlist.Fetcher
	health  *authhealth.Monitor
	logger  *slog.Logger

	cron *cron.Cron

	mu     sync.Mutex
	status map[string]*JobInfo
}

// New builds a scheduler over the queue and playlist fetcher.
func New(cfg config.Scheduler, st *store.Store, queue *jobqueue.Manager, fetcher playlist.Fetcher, health *authhealth.Monitor, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		store:   st,
		queue:   queue,
		fetcher: fetcher,
		health:  health,
		logger:  logging.NewComponentLogger(logger, "scheduler"),
		status:  make(map[string]*JobInfo),
	}
	s.status[JobPlaylistRefresh] = &JobInfo{Name: JobPlaylistRefresh, Schedule: cfg.PlaylistCron}
	s.status[JobRetry] = &JobInfo{Name: JobRetry, Schedule: cfg.RetryCron}
	s.status[JobSnapshot] = &JobInfo{Name: JobSnapshot, Schedule: cfg.SnapshotCron}
	return s
}

// Start registers the recurring jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("scheduler disabled, recurring jobs will not run")
		return nil
	}
	if s.health != nil && !s.health.EverSucceeded() {
		logging.WarnWithContext(s.logger,
			"no successful scraping auth has ever been recorded", "auth_never_succeeded",
			logging.String(logging.FieldErrorHint,
				"import session cookies with 'songscout auth import' before the first credits run"))
	}

	s.cron = cron.New()
	entries := map[string]struct {
		spec string
		run  func(context.Context) (int, error)
	}{
		JobPlaylistRefresh: {s.cfg.PlaylistCron, s.RunPlaylistUpdateJob},
		JobRetry:           {s.cfg.RetryCron, s.RunRetryJob},
		JobSnapshot:        {s.cfg.SnapshotCron, s.RunPerformanceSnapshotJob},
	}
	for name, entry := range entries {
		if _, err := s.cron.AddFunc(entry.spec, s.wrap(name, entry.run)); err != nil {
			return fmt.Errorf("register %s (%q): %w", name, entry.spec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		logging.String("playlist_cron", s.cfg.PlaylistCron),
		logging.String("retry_cron", s.cfg.RetryCron),
		logging.String("snapshot_cron", s.cfg.SnapshotCron))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Status reports the three recurring jobs and their last outcomes.
func (s *Scheduler) Status() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.status))
	for _, name := range []string{JobPlaylistRefresh, JobRetry, JobSnapshot} {
		out = append(out, *s.status[name])
	}
	return out
}

func (s *Scheduler) wrap(name string, run func(context.Context) (int, error)) func() {
	return func() {
		count, err := run(context.Background())
		now := time.Now().UTC()

		s.mu.Lock()
		info := s.status[name]
		info.LastRun = &now
		info.LastCount = count
		info.LastError = ""
		if err != nil {
			info.LastError = err.Error()
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("recurring job failed",
				logging.String("job", name), logging.Error(err))
			return
		}
		s.logger.Info("recurring job finished",
			logging.String("job", name), logging.Int("count", count))
	}
}

// RunPlaylistUpdateJob refreshes membership for tracked playlists not yet
// checked this ISO week, capped per run, and enqueues newly discovered
// tracks. Idempotent: a second run in the same week finds nothing due.
func (s *Scheduler) RunPlaylistUpdateJob(ctx context.Context) (int, error) {
	week := playlist.ISOWeek(time.Now().UTC())
	due, err := s.store.PlaylistsDueForRefresh(ctx, week, s.cfg.PlaylistBatchSize)
	if err != nil {
		return 0, fmt.Errorf("select due playlists: %w", err)
	}

	inserted := 0
	for _, pl := range due {
		name, rows, err := s.fetcher.FetchPlaylist(ctx, pl.CatalogID)
		if err != nil {
			s.logger.Warn("playlist fetch failed",
				logging.String("playlist", pl.CatalogID), logging.Error(err))
			continue
		}
		if name != "" && name != pl.Name {
			if _, err := s.store.UpsertPlaylist(ctx, pl.CatalogID, name, pl.Tracked); err != nil {
				s.logger.Warn("playlist rename failed",
					logging.String("playlist", pl.CatalogID), logging.Error(err))
			}
		}

		newIDs, err := s.store.InsertTracks(ctx, playlist.ToTrackRows(rows, week, pl.ID))
		if err != nil {
			return inserted, fmt.Errorf("upsert tracks for %s: %w", pl.CatalogID, err)
		}
		if len(newIDs) > 0 {
			if _, err := s.queue.Enqueue(ctx, newIDs, "", false); err != nil {
				return inserted, fmt.Errorf("enqueue new tracks: %w", err)
			}
		}
		if err := s.store.MarkPlaylistChecked(ctx, pl.ID, week); err != nil {
			return inserted, fmt.Errorf("mark playlist checked: %w", err)
		}
		inserted += len(newIDs)

		s.logger.Info("playlist refreshed",
			logging.String("playlist", pl.CatalogID),
			logging.Int("tracks", len(rows)),
			logging.Int("new", len(newIDs)))
	}

	if inserted > 0 {
		if err := s.store.LogActivity(ctx, "playlist_refresh",
			fmt.Sprintf("%d new tracks across %d playlists", inserted, len(due))); err != nil {
			s.logger.Debug("log activity", logging.Error(err))
		}
	}
	return inserted, nil
}

// RunRetryJob enqueues tracks whose enrichment failed or found nothing and
// whose last attempt is older than the retry age, capped per day.
func (s *Scheduler) RunRetryJob(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetryAgeDays)
	tracks, err := s.store.TracksNeedingRetry(ctx, cutoff, s.cfg.RetryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("select retry tracks: %w", err)
	}
	if len(tracks) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}
	if _, err := s.queue.Enqueue(ctx, ids, "", false); err != nil {
		return 0, fmt.Errorf("enqueue retries: %w", err)
	}
	return len(ids), nil
}

// RunPerformanceSnapshotJob enqueues analytics refreshes for every track with
// streaming metrics, chunked, with the snapshot flag riding only on the last
// chunk. Idempotent: re-running enqueues fresh analytics passes and captures
// a new snapshot.
func (s *Scheduler) RunPerformanceSnapshotJob(ctx context.Context) (int, error) {
	tracks, err := s.store.TracksWithStreams(ctx)
	if err != nil {
		return 0, fmt.Errorf("select tracks with streams: %w", err)
	}
	if len(tracks) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}

	chunkSize := s.cfg.SnapshotChunkSize
	if chunkSize < 1 {
		chunkSize = len(ids)
	}
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		last := end == len(ids)
		if _, err := s.queue.Enqueue(ctx, ids[start:end], enrich.PhaseAnalytics, last); err != nil {
			return 0, fmt.Errorf("enqueue snapshot chunk: %w", err)
		}
	}
	return len(ids), nil
}
