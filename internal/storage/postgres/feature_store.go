package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using PostgreSQL.
type FeatureStore struct {
	pool *Pool
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(pool *Pool) *FeatureStore {
	return &FeatureStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

var featureRowColumns = []string{"series_id", "ts", "mid", "ret_1", "vol", "mom", "volume", "inventory"}

// InsertBulk adds rows for a series atomically via COPY. Fails entire batch on any duplicate.
func (s *FeatureStore) InsertBulk(ctx context.Context, seriesID string, rows []domain.FeatureRow) error {
	if seriesID == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{seriesID, r.Ts, r.Mid, r.Ret1, r.Vol, r.Mom, r.Volume, r.Inventory}, nil
	})

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"feature_rows"}, featureRowColumns, source); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy feature rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySeries retrieves all rows for a series, ordered by ts ASC.
func (s *FeatureStore) GetBySeries(ctx context.Context, seriesID string) ([]domain.FeatureRow, error) {
	query := `
		SELECT ts, mid, ret_1, vol, mom, volume, inventory
		FROM feature_rows
		WHERE series_id = $1
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("get feature rows by series: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetByTimeRange retrieves rows for a series within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(ctx context.Context, seriesID string, start, end int64) ([]domain.FeatureRow, error) {
	query := `
		SELECT ts, mid, ret_1, vol, mom, volume, inventory
		FROM feature_rows
		WHERE series_id = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get feature rows by time range: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// scanFeatureRows scans multiple rows into a slice.
func scanFeatureRows(rows pgx.Rows) ([]domain.FeatureRow, error) {
	var result []domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		if err := rows.Scan(&r.Ts, &r.Mid, &r.Ret1, &r.Vol, &r.Mom, &r.Volume, &r.Inventory); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}
