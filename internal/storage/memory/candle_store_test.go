package memory

import (
	"context"
	"errors"
	"testing"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/storage"
)

func minute(symbol string, open int64, price float64) *domain.Candle {
	return &domain.Candle{Symbol: symbol, OpenTime: open, CloseTime: open + 60_000, Close: price}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Candle{
		minute("SOLUSD", 120_000, 101),
		minute("SOLUSD", 0, 99),
		minute("SOLUSD", 60_000, 100),
		minute("BTCUSD", 60_000, 40_000),
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "SOLUSD", 0, 60_000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}
	if got[0].OpenTime != 0 || got[1].OpenTime != 60_000 {
		t.Errorf("candles not ordered by open time: %d, %d", got[0].OpenTime, got[1].OpenTime)
	}
}

func TestCandleStore_Duplicate(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.Candle{minute("SOLUSD", 0, 99)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.Candle{minute("SOLUSD", 60_000, 100), minute("SOLUSD", 0, 98)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetByTimeRange(ctx, "SOLUSD", 0, 1_000_000)
	if len(got) != 1 {
		t.Errorf("failed batch must not insert candles, got %d", len(got))
	}
}

func TestCandleStore_InvalidInput(t *testing.T) {
	store := NewCandleStore()

	bad := &domain.Candle{Symbol: "SOLUSD", OpenTime: 100, CloseTime: 100}
	if err := store.InsertBulk(context.Background(), []*domain.Candle{bad}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
