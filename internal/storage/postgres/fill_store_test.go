package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
)

func TestFillStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillStore(pool)
	ctx := context.Background()

	t.Run("insert and get by account", func(t *testing.T) {
		require.NoError(t, store.InsertBulk(ctx, "acct-1", []domain.Fill{
			{Ts: 200, Qty: 1, Side: "sell", HasSide: true},
			{Ts: 100, Qty: 5, Side: "BUY", HasSide: true},
		}))
		require.NoError(t, store.InsertBulk(ctx, "acct-1", []domain.Fill{
			{Ts: 100, Qty: 2, Side: "s", HasSide: true},
		}))

		got, err := store.GetByAccount(ctx, "acct-1")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, domain.Fill{Ts: 100, Qty: 5, Side: "BUY", HasSide: true}, got[0])
		assert.Equal(t, 2.0, got[1].Qty)
		assert.Equal(t, int64(200), got[2].Ts)
	})

	t.Run("unknown account is empty", func(t *testing.T) {
		got, err := store.GetByAccount(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty account rejected", func(t *testing.T) {
		err := store.InsertBulk(ctx, "", []domain.Fill{{Ts: 1}})
		assert.ErrorIs(t, err, storage.ErrInvalidInput)
	})
}
