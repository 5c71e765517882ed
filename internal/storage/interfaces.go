package storage

import (
	"context"

	"bar-feature-lab/internal/domain"
)

// FeatureStore provides access to feature_rows storage.
// Rows are keyed by (series_id, ts).
type FeatureStore interface {
	// InsertBulk adds rows for a series atomically. Fails entire batch on any duplicate.
	// Returns ErrInvalidInput if seriesID is empty.
	InsertBulk(ctx context.Context, seriesID string, rows []domain.FeatureRow) error

	// GetBySeries retrieves all rows for a series, ordered by ts ASC.
	GetBySeries(ctx context.Context, seriesID string) ([]domain.FeatureRow, error)

	// GetByTimeRange retrieves rows for a series within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, seriesID string, start, end int64) ([]domain.FeatureRow, error)
}

// FillStore provides access to fills storage.
// Fills are append-only; several fills may share a ts.
type FillStore interface {
	// InsertBulk appends fills for an account atomically.
	// Returns ErrInvalidInput if account is empty.
	InsertBulk(ctx context.Context, account string, fills []domain.Fill) error

	// GetByAccount retrieves all fills for an account, ordered by ts ASC then insertion order.
	GetByAccount(ctx context.Context, account string) ([]domain.Fill, error)
}

// RunStore provides access to feature_runs storage.
type RunStore interface {
	// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRecord, error)

	// GetBySeries retrieves all runs for a series, ordered by created_at ASC.
	GetBySeries(ctx context.Context, seriesID string) ([]*domain.RunRecord, error)
}
