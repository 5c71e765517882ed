package clickhouse

import (
	"context"
	"fmt"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds rows for a series. Fails entire batch on duplicate.
func (s *FeatureStore) InsertBulk(ctx context.Context, seriesID string, rows []domain.FeatureRow) error {
	if seriesID == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{}, len(rows))
	minTs, maxTs := rows[0].Ts, rows[0].Ts
	for _, r := range rows {
		if _, exists := seen[r.Ts]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.Ts] = struct{}{}
		minTs = min(minTs, r.Ts)
		maxTs = max(maxTs, r.Ts)
	}

	// Check for duplicates against existing DB rows
	existing, err := s.existingTs(ctx, seriesID, minTs, maxTs)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for _, ts := range existing {
		if _, clash := seen[ts]; clash {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_rows (
			series_id, ts, mid, ret_1, vol, mom, volume, inventory
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			seriesID, r.Ts, r.Mid, r.Ret1, r.Vol, r.Mom, uint64(max(r.Volume, 0)), r.Inventory,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
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

	rows, err := s.conn.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("query by series id: %w", err)
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

	rows, err := s.conn.Query(ctx, query, seriesID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// existingTs returns stored timestamps of a series within [start, end].
func (s *FeatureStore) existingTs(ctx context.Context, seriesID string, start, end int64) ([]int64, error) {
	query := `
		SELECT ts FROM feature_rows
		WHERE series_id = ? AND ts >= ? AND ts <= ?
	`

	rows, err := s.conn.Query(ctx, query, seriesID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// scanFeatureRows scans multiple rows.
func scanFeatureRows(rows chRows) ([]domain.FeatureRow, error) {
	var result []domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		var volume uint64

		if err := rows.Scan(&r.Ts, &r.Mid, &r.Ret1, &r.Vol, &r.Mom, &volume, &r.Inventory); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		r.Volume = int64(volume)
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}
