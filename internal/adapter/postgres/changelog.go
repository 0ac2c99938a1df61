package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stewardhq/steward/internal/domain/change"
)

// ChangeLog implements changelog.Store on the changes table.
type ChangeLog struct {
	pool *pgxpool.Pool
}

// NewChangeLog creates a ChangeLog backed by the given connection pool.
func NewChangeLog(pool *pgxpool.Pool) *ChangeLog {
	return &ChangeLog{pool: pool}
}

// Create persists a new change record.
func (s *ChangeLog) Create(ctx context.Context, rec *change.ChangeRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO changes (id, agent_id, capability, asset_key, before_seq, committed_seq, restored_seq,
		                      after_content, rationale, aesthetic, functional, composite, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.AgentID, string(rec.Capability), rec.AssetKey, rec.BeforeSeq, rec.CommittedSeq, rec.RestoredSeq,
		rec.After, rec.Rationale, rec.Scores.Aesthetic, rec.Scores.Functional, rec.Scores.Composite,
		string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create change %s: %w", rec.ID, err)
	}
	return nil
}

// Update persists the record's scores, status, and sequence markers. Content
// and provenance columns are immutable after Create.
func (s *ChangeLog) Update(ctx context.Context, rec *change.ChangeRecord) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE changes SET committed_seq = $2, restored_seq = $3, aesthetic = $4, functional = $5,
		                    composite = $6, status = $7, updated_at = $8
		 WHERE id = $1`,
		rec.ID, rec.CommittedSeq, rec.RestoredSeq, rec.Scores.Aesthetic, rec.Scores.Functional,
		rec.Scores.Composite, string(rec.Status), rec.UpdatedAt)
	return execExpectOne(tag, err, "update change %s", rec.ID)
}

// Get returns the record by id.
func (s *ChangeLog) Get(ctx context.Context, id string) (*change.ChangeRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, agent_id, capability, asset_key, before_seq, committed_seq, restored_seq,
		        after_content, rationale, aesthetic, functional, composite, status, created_at, updated_at
		 FROM changes WHERE id = $1`, id)

	rec, err := scanChange(row)
	if err != nil {
		return nil, notFoundWrap(err, "get change %s", id)
	}
	return rec, nil
}

// ListRecent returns up to limit records, newest first.
func (s *ChangeLog) ListRecent(ctx context.Context, limit int) ([]*change.ChangeRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, agent_id, capability, asset_key, before_seq, committed_seq, restored_seq,
		        after_content, rationale, aesthetic, functional, composite, status, created_at, updated_at
		 FROM changes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent changes: %w", err)
	}
	defer rows.Close()

	var recs []*change.ChangeRecord
	for rows.Next() {
		rec, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanChange(row scannable) (*change.ChangeRecord, error) {
	var rec change.ChangeRecord
	err := row.Scan(&rec.ID, &rec.AgentID, &rec.Capability, &rec.AssetKey, &rec.BeforeSeq,
		&rec.CommittedSeq, &rec.RestoredSeq, &rec.After, &rec.Rationale,
		&rec.Scores.Aesthetic, &rec.Scores.Functional, &rec.Scores.Composite,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
