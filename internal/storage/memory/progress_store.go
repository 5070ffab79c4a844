package memory

import (
	"context"
	"sync"

	"solana-trade-recon/internal/storage"
)

// ProgressStore is an in-memory implementation of storage.ProgressStore.
type ProgressStore struct {
	mu       sync.RWMutex
	progress map[string]storage.WalletProgress
}

// NewProgressStore creates a new in-memory progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		progress: make(map[string]storage.WalletProgress),
	}
}

// GetLastProcessed returns the cursor of a wallet.
func (s *ProgressStore) GetLastProcessed(_ context.Context, wallet string) (*storage.WalletProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

// SetLastProcessed saves the cursor of a wallet.
func (s *ProgressStore) SetLastProcessed(_ context.Context, wallet string, progress *storage.WalletProgress) error {
	if wallet == "" || progress == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress[wallet] = *progress
	return nil
}

var _ storage.ProgressStore = (*ProgressStore)(nil)
