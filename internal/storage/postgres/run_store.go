package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO feature_runs (
			run_id, series_id, source, vol_window, mom_window, strict_prices, row_count, digest, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.SeriesID, r.Source, r.VolWindow, r.MomWindow, r.StrictPrices, r.Rows, r.Digest, r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert feature run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRecord, error) {
	query := `
		SELECT run_id, series_id, source, vol_window, mom_window, strict_prices, row_count, digest, created_at
		FROM feature_runs
		WHERE run_id = $1
	`

	r, err := scanRunRecord(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get feature run by id: %w", err)
	}
	return r, nil
}

// GetBySeries retrieves all runs for a series, ordered by created_at ASC.
func (s *RunStore) GetBySeries(ctx context.Context, seriesID string) ([]*domain.RunRecord, error) {
	query := `
		SELECT run_id, series_id, source, vol_window, mom_window, strict_prices, row_count, digest, created_at
		FROM feature_runs
		WHERE series_id = $1
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("get feature runs by series: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunRecord
	for rows.Next() {
		r, err := scanRunRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature runs: %w", err)
	}

	return result, nil
}

// scanRunRecord scans a single row.
func scanRunRecord(row pgx.Row) (*domain.RunRecord, error) {
	var r domain.RunRecord
	err := row.Scan(
		&r.RunID, &r.SeriesID, &r.Source, &r.VolWindow, &r.MomWindow, &r.StrictPrices, &r.Rows, &r.Digest, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
