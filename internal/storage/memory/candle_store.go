package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.Candle // keyed by symbol, sorted by open time
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[string][]*domain.Candle),
	}
}

// InsertBulk adds multiple candles. Fails entire batch on duplicate (symbol, open_time).
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		symbol   string
		openTime int64
	}
	existing := make(map[key]struct{})
	for symbol, series := range s.data {
		for _, c := range series {
			existing[key{symbol, c.OpenTime}] = struct{}{}
		}
	}

	for _, c := range candles {
		if c == nil || c.Symbol == "" || c.CloseTime <= c.OpenTime {
			return storage.ErrInvalidInput
		}
		k := key{c.Symbol, c.OpenTime}
		if _, exists := existing[k]; exists {
			return storage.ErrDuplicateKey
		}
		existing[k] = struct{}{}
	}

	touched := make(map[string]struct{})
	for _, c := range candles {
		copy := *c
		s.data[c.Symbol] = append(s.data[c.Symbol], &copy)
		touched[c.Symbol] = struct{}{}
	}
	for symbol := range touched {
		series := s.data[symbol]
		sort.Slice(series, func(i, j int) bool {
			return series[i].OpenTime < series[j].OpenTime
		})
	}

	return nil
}

// GetByTimeRange retrieves candles of a symbol opened within [start, end].
func (s *CandleStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for _, c := range s.data[symbol] {
		if c.OpenTime >= start && c.OpenTime <= end {
			copy := *c
			result = append(result, &copy)
		}
	}
	return result, nil
}

var _ storage.CandleStore = (*CandleStore)(nil)
