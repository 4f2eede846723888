package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/quota"
	"github.com/jmoiron/sqlx"
)

// QuotaRepository is the sqlite-backed quota.Store.
type QuotaRepository struct {
	db *sqlx.DB
}

func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

var _ quota.Store = (*QuotaRepository)(nil)

type quotaRow struct {
	Identity   string `db:"identity"`
	AnalyzedAt string `db:"analyzed_at"`
	FileName   string `db:"file_name"`
}

func (r *QuotaRepository) Has(ctx context.Context, identity string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM analysis_quota WHERE identity = ?)`

	if err := r.db.QueryRowContext(ctx, query, identity).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check quota record: %w", err)
	}
	return exists, nil
}

func (r *QuotaRepository) Peek(ctx context.Context, identity string) (*models.QuotaRecord, error) {
	var row quotaRow
	query := `
		SELECT identity, analyzed_at, file_name
		FROM analysis_quota
		WHERE identity = ?
	`

	err := r.db.GetContext(ctx, &row, query, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota record: %w", err)
	}

	analyzedAt, err := time.Parse(time.RFC3339Nano, row.AnalyzedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid analyzed_at %q: %w", row.AnalyzedAt, err)
	}

	return &models.QuotaRecord{
		Identity:   row.Identity,
		AnalyzedAt: analyzedAt,
		FileName:   row.FileName,
	}, nil
}

// Commit inserts the record unless the identity already has one. The primary
// key makes the insert the arbiter between concurrent commits.
func (r *QuotaRepository) Commit(ctx context.Context, record models.QuotaRecord) error {
	query := `
		INSERT INTO analysis_quota (identity, analyzed_at, file_name)
		VALUES (?, ?, ?)
		ON CONFLICT(identity) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		record.Identity,
		record.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		record.FileName,
	)
	if err != nil {
		return fmt.Errorf("failed to commit quota record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read commit result: %w", err)
	}
	if affected == 0 {
		return quota.ErrAlreadyRecorded
	}
	return nil
}

func (r *QuotaRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
