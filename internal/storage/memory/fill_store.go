package memory

import (
	"context"
	"sort"
	"sync"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

// FillStore is an in-memory implementation of storage.FillStore.
type FillStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Fill // keyed by account, insertion order
}

// NewFillStore creates a new in-memory fill store.
func NewFillStore() *FillStore {
	return &FillStore{
		data: make(map[string][]domain.Fill),
	}
}

// InsertBulk appends fills for an account.
func (s *FillStore) InsertBulk(_ context.Context, account string, fills []domain.Fill) error {
	if account == "" {
		return storage.ErrInvalidInput
	}
	if len(fills) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[account] = append(s.data[account], fills...)
	return nil
}

// GetByAccount retrieves all fills for an account, ordered by ts ASC then insertion order.
func (s *FillStore) GetByAccount(_ context.Context, account string) ([]domain.Fill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[account]
	result := make([]domain.Fill, len(stored))
	copy(result, stored)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Ts < result[j].Ts
	})

	return result, nil
}

var _ storage.FillStore = (*FillStore)(nil)
