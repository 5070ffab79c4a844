package postgres

import (
	"context"
	"fmt"

	"solana-trade-recon/internal/storage"
)

// ProgressStore is a PostgreSQL implementation of storage.ProgressStore.
// One row per wallet in wallet_progress.
type ProgressStore struct {
	pool *Pool
}

// NewProgressStore creates a new PostgreSQL progress store.
func NewProgressStore(pool *Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

var _ storage.ProgressStore = (*ProgressStore)(nil)

// GetLastProcessed returns the cursor of a wallet.
func (s *ProgressStore) GetLastProcessed(ctx context.Context, wallet string) (*storage.WalletProgress, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT slot, signature
		FROM wallet_progress
		WHERE wallet = $1
	`, wallet)

	var progress storage.WalletProgress
	if err := row.Scan(&progress.Slot, &progress.Signature); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet progress: %w", err)
	}

	return &progress, nil
}

// SetLastProcessed saves the cursor of a wallet.
// Uses upsert to handle initial insert and subsequent updates.
func (s *ProgressStore) SetLastProcessed(ctx context.Context, wallet string, progress *storage.WalletProgress) error {
	if wallet == "" || progress == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO wallet_progress (wallet, slot, signature, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (wallet) DO UPDATE
		SET slot = EXCLUDED.slot,
		    signature = EXCLUDED.signature,
		    updated_at = NOW()
	`, wallet, progress.Slot, progress.Signature)
	if err != nil {
		return fmt.Errorf("set wallet progress: %w", err)
	}
	return nil
}
