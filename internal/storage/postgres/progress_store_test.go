package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-trade-recon/internal/storage"
)

func TestProgressStore_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProgressStore(pool)

	_, err := store.GetLastProcessed(ctx, "wallet-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.SetLastProcessed(ctx, "wallet-1", &storage.WalletProgress{Slot: 10, Signature: "sig-10"}))
	require.NoError(t, store.SetLastProcessed(ctx, "wallet-1", &storage.WalletProgress{Slot: 12, Signature: "sig-12"}))

	got, err := store.GetLastProcessed(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.Slot)
	assert.Equal(t, "sig-12", got.Signature)

	assert.ErrorIs(t, store.SetLastProcessed(ctx, "", &storage.WalletProgress{}), storage.ErrInvalidInput)
}
