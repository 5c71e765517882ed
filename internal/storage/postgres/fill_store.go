package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

// FillStore implements storage.FillStore using PostgreSQL.
type FillStore struct {
	pool *Pool
}

// NewFillStore creates a new FillStore.
func NewFillStore(pool *Pool) *FillStore {
	return &FillStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FillStore = (*FillStore)(nil)

// InsertBulk appends fills for an account atomically.
func (s *FillStore) InsertBulk(ctx context.Context, account string, fills []domain.Fill) error {
	if account == "" {
		return storage.ErrInvalidInput
	}
	if len(fills) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO fills (account, ts, qty, side, has_side)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, f := range fills {
		if _, err := tx.Exec(ctx, query, account, f.Ts, f.Qty, f.Side, f.HasSide); err != nil {
			return fmt.Errorf("insert fill in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByAccount retrieves all fills for an account, ordered by ts ASC then insertion order.
func (s *FillStore) GetByAccount(ctx context.Context, account string) ([]domain.Fill, error) {
	query := `
		SELECT ts, qty, side, has_side
		FROM fills
		WHERE account = $1
		ORDER BY ts ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("get fills by account: %w", err)
	}
	defer rows.Close()

	return scanFills(rows)
}

// scanFills scans multiple rows into a slice. The result is never nil.
func scanFills(rows pgx.Rows) ([]domain.Fill, error) {
	result := make([]domain.Fill, 0)

	for rows.Next() {
		var f domain.Fill
		if err := rows.Scan(&f.Ts, &f.Qty, &f.Side, &f.HasSide); err != nil {
			return nil, fmt.Errorf("scan fill: %w", err)
		}
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fills: %w", err)
	}

	return result, nil
}
