package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using SQLite.
type FeatureStore struct {
	db *DB
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(db *DB) *FeatureStore {
	return &FeatureStore{db: db}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds rows for a series atomically. Fails entire batch on any duplicate.
func (s *FeatureStore) InsertBulk(ctx context.Context, seriesID string, rows []domain.FeatureRow) error {
	if seriesID == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO feature_rows (series_id, ts, mid, ret_1, vol, mom, volume, inventory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			seriesID, r.Ts,
			nullableFloat(r.Mid), nullableFloat(r.Ret1), nullableFloat(r.Vol), nullableFloat(r.Mom),
			r.Volume, nullableFloat(r.Inventory),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert feature row in bulk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySeries retrieves all rows for a series, ordered by ts ASC.
func (s *FeatureStore) GetBySeries(ctx context.Context, seriesID string) ([]domain.FeatureRow, error) {
	query := `
		SELECT ts, mid, ret_1, vol, mom, volume, inventory
		FROM feature_rows
		WHERE series_id = ?
		ORDER BY ts ASC
	`

	rows, err := s.db.QueryContext(ctx, query, seriesID)
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
		WHERE series_id = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := s.db.QueryContext(ctx, query, seriesID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get feature rows by time range: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// scanFeatureRows scans multiple rows into a slice.
func scanFeatureRows(rows *sql.Rows) ([]domain.FeatureRow, error) {
	var result []domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		var mid, ret1, vol, mom, inventory sql.NullFloat64

		if err := rows.Scan(&r.Ts, &mid, &ret1, &vol, &mom, &r.Volume, &inventory); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		r.Mid = floatOrNaN(mid)
		r.Ret1 = floatOrNaN(ret1)
		r.Vol = floatOrNaN(vol)
		r.Mom = floatOrNaN(mom)
		r.Inventory = floatOrNaN(inventory)
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}
