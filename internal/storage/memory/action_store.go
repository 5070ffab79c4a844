package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/storage"
)

// ActionStore is an in-memory implementation of storage.ActionStore.
type ActionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeAction // keyed by action id
}

// NewActionStore creates a new in-memory action store.
func NewActionStore() *ActionStore {
	return &ActionStore{
		data: make(map[string]*domain.TradeAction),
	}
}

// Insert adds a new action. Returns ErrDuplicateKey if the id exists.
func (s *ActionStore) Insert(_ context.Context, a *domain.TradeAction) error {
	if a == nil || a.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[a.ID] = cloneAction(a)
	return nil
}

// InsertBulk adds multiple actions atomically. Fails entire batch on any duplicate.
func (s *ActionStore) InsertBulk(_ context.Context, actions []*domain.TradeAction) error {
	if len(actions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(actions))

	// First pass: check for duplicates (existing + intra-batch)
	for _, a := range actions {
		if a == nil || a.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[a.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[a.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[a.ID] = struct{}{}
	}

	for _, a := range actions {
		s.data[a.ID] = cloneAction(a)
	}

	return nil
}

// GetByID retrieves an action by its ID. Returns ErrNotFound if not exists.
func (s *ActionStore) GetByID(_ context.Context, id string) (*domain.TradeAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneAction(a), nil
}

// GetBySignature retrieves all actions of a transaction.
func (s *ActionStore) GetBySignature(_ context.Context, signature string) ([]*domain.TradeAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeAction
	for _, a := range s.data {
		if a.Signature == signature {
			result = append(result, cloneAction(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Wallet != result[j].Wallet {
			return result[i].Wallet < result[j].Wallet
		}
		return firstSeq(result[i]) < firstSeq(result[j])
	})

	return result, nil
}

// GetByWallet retrieves actions of a wallet within [start, end] block time.
func (s *ActionStore) GetByWallet(_ context.Context, wallet string, start, end int64) ([]*domain.TradeAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeAction
	for _, a := range s.data {
		if a.Wallet == wallet && a.BlockTime >= start && a.BlockTime <= end {
			result = append(result, cloneAction(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BlockTime != result[j].BlockTime {
			return result[i].BlockTime < result[j].BlockTime
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func cloneAction(a *domain.TradeAction) *domain.TradeAction {
	c := *a
	c.PathSeqs = append([]int(nil), a.PathSeqs...)
	return &c
}

func firstSeq(a *domain.TradeAction) int {
	if len(a.PathSeqs) == 0 {
		return -1
	}
	return a.PathSeqs[0]
}

var _ storage.ActionStore = (*ActionStore)(nil)
