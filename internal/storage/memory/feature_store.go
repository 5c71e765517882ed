package memory

import (
	"context"
	"sort"
	"sync"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string]map[int64]domain.FeatureRow // series_id -> ts -> row
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[string]map[int64]domain.FeatureRow),
	}
}

// InsertBulk adds rows for a series. Fails entire batch on duplicate.
func (s *FeatureStore) InsertBulk(_ context.Context, seriesID string, rows []domain.FeatureRow) error {
	if seriesID == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[seriesID]

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[int64]struct{}, len(rows))

	// First pass: check for duplicates (existing + intra-batch)
	for _, r := range rows {
		if _, exists := existing[r.Ts]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.Ts]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.Ts] = struct{}{}
	}

	// Second pass: insert all
	if existing == nil {
		existing = make(map[int64]domain.FeatureRow, len(rows))
		s.data[seriesID] = existing
	}
	for _, r := range rows {
		existing[r.Ts] = r
	}

	return nil
}

// GetBySeries retrieves all rows for a series, ordered by ts ASC.
func (s *FeatureStore) GetBySeries(_ context.Context, seriesID string) ([]domain.FeatureRow, error) {
	return s.collect(seriesID, func(int64) bool { return true }), nil
}

// GetByTimeRange retrieves rows for a series within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(_ context.Context, seriesID string, start, end int64) ([]domain.FeatureRow, error) {
	return s.collect(seriesID, func(ts int64) bool { return ts >= start && ts <= end }), nil
}

func (s *FeatureStore) collect(seriesID string, keep func(int64) bool) []domain.FeatureRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.FeatureRow
	for ts, r := range s.data[seriesID] {
		if keep(ts) {
			result = append(result, r)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Ts < result[j].Ts
	})

	return result
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
