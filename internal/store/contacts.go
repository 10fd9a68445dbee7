package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const contactColumns = "id, songwriter_name, registry_searched_count, registry_found_count, total_streams, " +
	"wow_growth_pct, stage, hot_lead, unsigned_score, track_count, created_at, updated_at"

func scanContact(scanner interface{ Scan(dest ...any) error }) (*Contact, error) {
	var (
		id          int64
		name        string
		searched    sql.NullInt64
		found       sql.NullInt64
		streams     sql.NullInt64
		growth      sql.NullFloat64
		stage       string
		hotLead     sql.NullInt64
		score       sql.NullInt64
		trackCount  sql.NullInt64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(&id, &name, &searched, &found, &streams, &growth, &stage, &hotLead, &score, &trackCount, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	contact := &Contact{
		ID:                    id,
		SongwriterName:        name,
		RegistrySearchedCount: searched.Int64,
		RegistryFoundCount:    found.Int64,
		TotalStreams:          streams.Int64,
		WowGrowthPct:          growth.Float64,
		Stage:                 ContactStage(stage),
		UnsignedScore:         int(score.Int64),
		TrackCount:            trackCount.Int64,
	}
	if hotLead.Valid {
		contact.HotLead = hotLead.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		contact.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		contact.UpdatedAt = updated
	}
	return contact, nil
}

// UpsertContact writes the aggregated songwriter record produced by a batch
// scoring pass. The pipeline stage is preserved across updates; only manual
// stage transitions change it.
func (s *Store) UpsertContact(ctx context.Context, contact *Contact) error {
	if contact == nil {
		return errors.New("contact is nil")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`INSERT INTO contacts (
             songwriter_name, registry_searched_count, registry_found_count, total_streams,
             wow_growth_pct, stage, hot_lead, unsigned_score, track_count, created_at, updated_at
         ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(songwriter_name) DO UPDATE SET
             registry_searched_count = excluded.registry_searched_count,
             registry_found_count = excluded.registry_found_count,
             total_streams = excluded.total_streams,
             wow_growth_pct = excluded.wow_growth_pct,
             hot_lead = excluded.hot_lead,
             unsigned_score = excluded.unsigned_score,
             track_count = excluded.track_count,
             updated_at = excluded.updated_at`,
		contact.SongwriterName,
		contact.RegistrySearchedCount,
		contact.RegistryFoundCount,
		contact.TotalStreams,
		contact.WowGrowthPct,
		string(defaultStage(contact.Stage)),
		boolToInt(contact.HotLead),
		contact.UnsignedScore,
		contact.TrackCount,
		now,
		now,
	)
}

func defaultStage(stage ContactStage) ContactStage {
	if stage == "" {
		return StageDiscovery
	}
	return stage
}

// ContactBySongwriter fetches a contact by songwriter name. Returns nil when absent.
func (s *Store) ContactBySongwriter(ctx context.Context, name string) (*Contact, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+contactColumns+` FROM contacts WHERE songwriter_name = ?`, name)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

// SetContactStage applies a manual pipeline stage transition.
func (s *Store) SetContactStage(ctx context.Context, name string, stage ContactStage) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithoutResultRetry(ctx,
		`UPDATE contacts SET stage = ?, updated_at = ? WHERE songwriter_name = ?`,
		string(stage), now, name,
	)
}

// ListContacts returns contacts ordered by unsigned score, best first.
func (s *Store) ListContacts(ctx context.Context, limit int) ([]*Contact, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+contactColumns+` FROM contacts ORDER BY unsigned_score DESC, total_streams DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
