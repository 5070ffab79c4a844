package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/idhash"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/storage/memory"
)

const (
	user = "User1111111111111111111111111111111111111111"
	mint = "MintPump1111111111111111111111111111111pump"
	usdc = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

var fixedClock = func() time.Time { return time.UnixMilli(1_700_000_123_000) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTx() *solana.Transaction {
	return &solana.Transaction{Signature: "sig1", Slot: 42, BlockTime: 1_700_000_030}
}

func candleStore(t *testing.T) *memory.CandleStore {
	t.Helper()
	store := memory.NewCandleStore()
	err := store.InsertBulk(context.Background(), []*domain.Candle{
		{Symbol: "SOLUSD", OpenTime: 1_699_999_980_000, CloseTime: 1_700_000_040_000, Close: 150},
		{Symbol: "SOLUSD", OpenTime: 1_700_000_040_000, CloseTime: 1_700_000_100_000, Close: 155},
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	return store
}

func buyLeg() domain.SwapLeg {
	fee := dec("0.01")
	return domain.SwapLeg{
		SoldMint:     domain.NativeMint,
		SoldAmount:   dec("0.5"),
		BoughtMint:   mint,
		BoughtAmount: dec("1000"),
		Path:         []domain.Edge{{Seq: 3}, {Seq: 1}},
		UserWallet:   user,
		Strategy:     "wsol_to_token",
		Fees: &domain.LegFees{
			SoldCore:   &fee,
			RouterFees: dec("0.002"),
			Tip:        dec("0.001"),
			NetworkFee: dec("0.000005"),
		},
	}
}

func TestEnrich_BuyPriced(t *testing.T) {
	e := NewEnricher(candleStore(t), config.DefaultParams(), nil).WithClock(fixedClock)

	got := e.Enrich(context.Background(), testTx(), []domain.SwapLeg{buyLeg()})
	if len(got) != 1 {
		t.Fatalf("expected 1 action, got %d", len(got))
	}
	a := got[0]

	if a.Type != domain.ActionBuy {
		t.Errorf("Type = %s, want buy", a.Type)
	}
	if a.ID != idhash.ComputeActionID("sig1", user, []int{1, 3}) {
		t.Errorf("unexpected ID %s", a.ID)
	}
	if len(a.PathSeqs) != 2 || a.PathSeqs[0] != 1 || a.PathSeqs[1] != 3 {
		t.Errorf("PathSeqs = %v, want [1 3]", a.PathSeqs)
	}
	if !a.NativeAmount.Equal(dec("0.5")) {
		t.Errorf("NativeAmount = %s, want 0.5", a.NativeAmount)
	}
	if a.PriceUSD == nil || !a.PriceUSD.Equal(dec("150")) {
		t.Fatalf("PriceUSD = %v, want 150", a.PriceUSD)
	}
	if a.ValueUSD == nil || !a.ValueUSD.Equal(dec("75")) {
		t.Errorf("ValueUSD = %v, want 75", a.ValueUSD)
	}
	if !a.RouterFees.Equal(dec("0.002")) || !a.Tip.Equal(dec("0.001")) || !a.NetworkFee.Equal(dec("0.000005")) {
		t.Errorf("fees not copied: %s %s %s", a.RouterFees, a.Tip, a.NetworkFee)
	}
	if a.Slot != 42 || a.BlockTime != 1_700_000_030 || a.CreatedAt != 1_700_000_123_000 {
		t.Errorf("unexpected tx fields: slot=%d block=%d created=%d", a.Slot, a.BlockTime, a.CreatedAt)
	}
}

func TestEnrich_Types(t *testing.T) {
	e := NewEnricher(nil, config.DefaultParams(), nil)

	tests := []struct {
		name string
		leg  domain.SwapLeg
		want string
	}{
		{"transfer", domain.SwapLeg{SoldMint: mint, SoldAmount: dec("5")}, domain.ActionTransfer},
		{"buy with sol", domain.SwapLeg{SoldMint: domain.NativeMint, SoldAmount: dec("1"), BoughtMint: mint, BoughtAmount: dec("9")}, domain.ActionBuy},
		{"buy with stable", domain.SwapLeg{SoldMint: usdc, SoldAmount: dec("1"), BoughtMint: mint, BoughtAmount: dec("9")}, domain.ActionBuy},
		{"sell for sol", domain.SwapLeg{SoldMint: mint, SoldAmount: dec("9"), BoughtMint: domain.NativeMint, BoughtAmount: dec("1")}, domain.ActionSell},
		{"sell for stable", domain.SwapLeg{SoldMint: mint, SoldAmount: dec("9"), BoughtMint: usdc, BoughtAmount: dec("1")}, domain.ActionSell},
		{"token swap", domain.SwapLeg{SoldMint: mint, SoldAmount: dec("9"), BoughtMint: "Other", BoughtAmount: dec("1")}, domain.ActionSwap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.leg.UserWallet = user
			got := e.Enrich(context.Background(), testTx(), []domain.SwapLeg{tt.leg})
			if len(got) != 1 {
				t.Fatalf("expected 1 action, got %d", len(got))
			}
			if got[0].Type != tt.want {
				t.Errorf("Type = %s, want %s", got[0].Type, tt.want)
			}
			if got[0].PriceUSD != nil {
				t.Error("no candle store must leave PriceUSD nil")
			}
		})
	}
}

func TestEnrich_SellValuesBoughtSide(t *testing.T) {
	e := NewEnricher(candleStore(t), config.DefaultParams(), nil)

	leg := domain.SwapLeg{
		SoldMint: mint, SoldAmount: dec("1000"),
		BoughtMint: domain.NativeMint, BoughtAmount: dec("0.8"),
		UserWallet: user, Path: []domain.Edge{{Seq: 0}},
	}
	got := e.Enrich(context.Background(), testTx(), []domain.SwapLeg{leg})

	if got[0].ValueUSD == nil || !got[0].ValueUSD.Equal(dec("120")) {
		t.Errorf("ValueUSD = %v, want 120", got[0].ValueUSD)
	}
}

func TestEnrich_NoNativeSideUnpriced(t *testing.T) {
	e := NewEnricher(candleStore(t), config.DefaultParams(), nil)

	leg := domain.SwapLeg{SoldMint: mint, SoldAmount: dec("5"), UserWallet: user}
	got := e.Enrich(context.Background(), testTx(), []domain.SwapLeg{leg})

	if got[0].PriceUSD != nil || got[0].ValueUSD != nil {
		t.Error("legs without a SOL side must not be valued")
	}
	if !got[0].NativeAmount.IsZero() {
		t.Errorf("NativeAmount = %s, want 0", got[0].NativeAmount)
	}
}

func TestEnrich_MissingCandles(t *testing.T) {
	e := NewEnricher(memory.NewCandleStore(), config.DefaultParams(), nil)

	got := e.Enrich(context.Background(), testTx(), []domain.SwapLeg{buyLeg()})
	if got[0].PriceUSD != nil || got[0].ValueUSD != nil {
		t.Error("missing candles must leave USD nil")
	}
}

type failingCandles struct{}

func (failingCandles) InsertBulk(context.Context, []*domain.Candle) error { return nil }

func (failingCandles) GetByTimeRange(context.Context, string, int64, int64) ([]*domain.Candle, error) {
	return nil, errors.New("connection refused")
}

func TestEnrich_StoreErrorKeepsActions(t *testing.T) {
	e := NewEnricher(failingCandles{}, config.DefaultParams(), nil)

	got := e.Enrich(context.Background(), testTx(), []domain.SwapLeg{buyLeg(), buyLeg()})
	if len(got) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(got))
	}
	if got[0].ValueUSD != nil {
		t.Error("store error must leave USD nil")
	}
}

func TestEnrich_Empty(t *testing.T) {
	e := NewEnricher(nil, config.DefaultParams(), nil)

	if got := e.Enrich(context.Background(), testTx(), nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := e.Enrich(context.Background(), nil, []domain.SwapLeg{buyLeg()}); got != nil {
		t.Errorf("expected nil for nil tx, got %v", got)
	}
}
