package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const jobColumns = "id, track_ids_json, target_phase, capture_snapshot, status, tracks_processed, " +
	"tracks_enriched, errors, error_message, created_at, started_at, finished_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id          string
		trackIDs    string
		targetPhase sql.NullString
		snapshot    sql.NullInt64
		status      string
		processed   sql.NullInt64
		enriched    sql.NullInt64
		errCount    sql.NullInt64
		errMessage  sql.NullString
		createdRaw  sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &trackIDs, &targetPhase, &snapshot, &status, &processed, &enriched, &errCount, &errMessage, &createdRaw, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		TargetPhase:     targetPhase.String,
		Status:          JobStatus(status),
		TracksProcessed: processed.Int64,
		TracksEnriched:  enriched.Int64,
		Errors:          errCount.Int64,
		ErrorMessage:    errMessage.String,
	}
	if snapshot.Valid {
		job.CaptureSnapshot = snapshot.Int64 != 0
	}
	if err := json.Unmarshal([]byte(trackIDs), &job.TrackIDs); err != nil {
		return nil, fmt.Errorf("decode track ids: %w", err)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if startedRaw.Valid {
		if t, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &t
		}
	}
	if finishedRaw.Valid {
		if t, err := parseTimeString(finishedRaw.String); err == nil {
			job.FinishedAt = &t
		}
	}
	return job, nil
}

// CreateJob persists a queued enrichment job and returns it.
func (s *Store) CreateJob(ctx context.Context, trackIDs []int64, targetPhase string, captureSnapshot bool) (*Job, error) {
	if len(trackIDs) == 0 {
		return nil, errors.New("job requires at least one track id")
	}
	encoded, err := json.Marshal(trackIDs)
	if err != nil {
		return nil, fmt.Errorf("encode track ids: %w", err)
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(ctx,
		`INSERT INTO jobs (id, track_ids_json, target_phase, capture_snapshot, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(encoded), nullableString(targetPhase), boolToInt(captureSnapshot), string(JobQueued), now,
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.GetJob(ctx, id)
}

// GetJob fetches a job by identifier. Returns nil when absent.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// NextQueuedJob returns the oldest queued job, or nil when the queue is empty.
func (s *Store) NextQueuedJob(ctx context.Context) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
		string(JobQueued),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next queued job: %w", err)
	}
	return job, nil
}

// MarkJobRunning transitions a queued job to running.
func (s *Store) MarkJobRunning(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE jobs SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
		string(JobRunning), now, id, string(JobQueued),
	)
}

// FinishJob records the terminal outcome of a job. Jobs already in a terminal
// state are left untouched for audit.
func (s *Store) FinishJob(ctx context.Context, id string, status JobStatus, processed, enriched, errCount int64, errMessage string) error {
	if !status.Terminal() {
		return fmt.Errorf("finish job: %q is not a terminal status", status)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE jobs SET status = ?, tracks_processed = ?, tracks_enriched = ?, errors = ?,
             error_message = ?, finished_at = ?
         WHERE id = ? AND status = ?`,
		string(status), processed, enriched, errCount, nullableString(errMessage), now, id, string(JobRunning),
	)
}

// UpdateJobProgress refreshes the running counters on an in-flight job.
func (s *Store) UpdateJobProgress(ctx context.Context, id string, processed, enriched, errCount int64) error {
	return s.execWithoutResultRetry(ctx,
		`UPDATE jobs SET tracks_processed = ?, tracks_enriched = ?, errors = ? WHERE id = ? AND status = ?`,
		processed, enriched, errCount, id, string(JobRunning),
	)
}

// ListJobs returns the most recent jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// QueueDepth returns the number of queued jobs.
func (s *Store) QueueDepth(ctx context.Context) (int64, error) {
	var depth int64
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1) FROM jobs WHERE status = ?`, string(JobQueued)).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return depth, nil
}
