package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ActivityEvent is one operator-visible line in the activity log.
type ActivityEvent struct {
	ID        int64
	Event     string
	Detail    string
	CreatedAt time.Time
}

// LogActivity appends an event to the activity log. Best effort; callers may
// ignore the error.
func (s *Store) LogActivity(ctx context.Context, event, detail string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`INSERT INTO activity_log (event, detail, created_at) VALUES (?, ?, ?)`,
		event, nullableString(detail), now,
	)
}

// RecentActivity returns the newest activity entries.
func (s *Store) RecentActivity(ctx context.Context, limit int) ([]ActivityEvent, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, event, detail, created_at FROM activity_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var events []ActivityEvent
	for rows.Next() {
		var (
			entry      ActivityEvent
			detail     sql.NullString
			createdRaw sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Event, &detail, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entry.Detail = detail.String
		if created, err := parseTimeString(createdRaw.String); err == nil {
			entry.CreatedAt = created
		}
		events = append(events, entry)
	}
	return events, rows.Err()
}

// CaptureSnapshot records a point-in-time aggregate of streaming performance
// across every track with metrics.
func (s *Store) CaptureSnapshot(ctx context.Context) (*Snapshot, error) {
	ctx = ensureContext(ctx)
	var (
		trackCount   int64
		totalStreams sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(streams_total), 0) FROM tracks WHERE streams_total IS NOT NULL`,
	).Scan(&trackCount, &totalStreams)
	if err != nil {
		return nil, fmt.Errorf("aggregate snapshot: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO snapshots (captured_at, track_count, total_streams) VALUES (?, ?, ?)`,
		now.Format(time.RFC3339Nano), trackCount, totalStreams.Int64,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Snapshot{ID: id, CapturedAt: now, TrackCount: trackCount, TotalStreams: totalStreams.Int64}, nil
}

// LatestSnapshot returns the most recent snapshot, or nil when none exist.
func (s *Store) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	var (
		snapshot    Snapshot
		capturedRaw string
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT id, captured_at, track_count, total_streams FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&snapshot.ID, &capturedRaw, &snapshot.TrackCount, &snapshot.TotalStreams)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if captured, err := parseTimeString(capturedRaw); err == nil {
		snapshot.CapturedAt = captured
	}
	return &snapshot, nil
}
