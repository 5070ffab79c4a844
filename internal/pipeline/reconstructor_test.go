package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/solana/stub"
	"solana-trade-recon/internal/strategy"
)

const pumpProgram = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

func newReconstructor() *Reconstructor {
	fixed := time.Unix(1_700_000_000, 0)
	return NewReconstructor(config.DefaultParams(), nil).WithClock(func() time.Time { return fixed })
}

// pumpBuy pays a top-level tip, then buys 1000 meme for 0.5 SOL with a
// 0.005 SOL protocol fee inside the program call.
func pumpBuy() *solana.Transaction {
	return stub.NewTx("pumpbuy").
		WithSigner(user).
		WithBalance(user, 2_000_000_000, 1_493_995_000).
		WithTokenAccount(userMeme, memeMint, user, 6).
		WithTokenAccount(poolMeme, memeMint, curve, 6).
		WithFee(5000).
		Top(
			stub.Opaque(solana.ComputeBudgetProgramID.String()),
			stub.SystemTransfer(user, jitoTip, 1_000_000),
			stub.Opaque(pumpProgram),
		).
		Inner(2,
			stub.SystemTransfer(user, curve, 500_000_000),
			stub.SystemTransfer(user, feeRecv, 5_000_000),
			stub.TokenTransferChecked(poolMeme, userMeme, curve, memeMint, 1_000_000_000, 6),
		).
		Build()
}

func TestReconstruct_Errors(t *testing.T) {
	r := newReconstructor()

	if _, err := r.Reconstruct(nil, []string{user}); !errors.Is(err, ErrNilTransaction) {
		t.Errorf("expected ErrNilTransaction, got %v", err)
	}

	failed := stub.NewTx("failed").WithSigner(user).WithError(map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}).Build()
	if _, err := r.Reconstruct(failed, []string{user}); !errors.Is(err, ErrTransactionFailed) {
		t.Errorf("expected ErrTransactionFailed, got %v", err)
	}

	if _, err := r.Reconstruct(pumpBuy(), nil); !errors.Is(err, ErrNoWallets) {
		t.Errorf("expected ErrNoWallets, got %v", err)
	}
}

func TestReconstruct_NoEdges(t *testing.T) {
	tx := stub.NewTx("empty").WithSigner(user).Build()

	a, err := newReconstructor().Analyze(tx, []string{user})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Graph.Edges) != 0 || len(a.Legs) != 0 {
		t.Errorf("expected no edges and no legs, got %d edges, %d legs", len(a.Graph.Edges), len(a.Legs))
	}
}

func TestReconstruct_PumpBuy(t *testing.T) {
	a, err := newReconstructor().Analyze(pumpBuy(), []string{user})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(a.Graph.Edges) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(a.Graph.Edges))
	}
	if a.Tags.Get(0) != domain.TagTip || a.Tags.Get(1) != domain.TagNormal || a.Tags.Get(2) != domain.TagFee {
		t.Errorf("unexpected tags: tip=%s core=%s fee=%s", a.Tags.Get(0), a.Tags.Get(1), a.Tags.Get(2))
	}

	if len(a.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(a.Legs))
	}
	leg := a.Legs[0]
	if leg.Strategy != strategy.NameWsolToToken || leg.Kind != domain.LegKindBuy {
		t.Errorf("unexpected leg origin %s/%s", leg.Strategy, leg.Kind)
	}
	assertDec(t, "sold", leg.SoldAmount, decimal.RequireFromString("0.5"))
	assertDec(t, "bought", leg.BoughtAmount, decimal.NewFromInt(1000))

	fees := leg.Fees
	if fees == nil || fees.SoldAllIn == nil {
		t.Fatalf("fees not attached: %+v", fees)
	}
	assertDec(t, "core", *fees.SoldCore, decimal.RequireFromString("0.5"))
	assertDec(t, "router", fees.RouterFees, decimal.RequireFromString("0.005"))
	assertDec(t, "tip", fees.Tip, decimal.RequireFromString("0.001"))
	assertDec(t, "all in", *fees.SoldAllIn, decimal.RequireFromString("0.506005"))

	if a.Passes != 2 || a.Capped {
		t.Errorf("expected fixed point after 2 passes, got %d capped=%v", a.Passes, a.Capped)
	}
}

func TestReconstruct_SellViaBalanceChange(t *testing.T) {
	tx := stub.NewTx("pumpsell").
		WithSigner(user).
		WithBalance(user, 1_000_000_000, 1_799_995_000).
		WithTokenAccount(userMeme, memeMint, user, 6).
		WithTokenAccount(poolMeme, memeMint, curve, 6).
		WithFee(5000).
		Top(stub.Opaque(pumpProgram)).
		Inner(0, stub.TokenTransferChecked(userMeme, poolMeme, user, memeMint, 1_000_000_000, 6)).
		Build()

	legs, err := newReconstructor().Reconstruct(tx, []string{user})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(legs))
	}

	leg := legs[0]
	if leg.Strategy != strategy.NameTokenToWsol || !leg.BoughtNative() {
		t.Errorf("unexpected leg: %+v", leg)
	}
	assertDec(t, "bought", leg.BoughtAmount, decimal.RequireFromString("0.8"))
	if !leg.Path[1].Synthetic {
		t.Error("expected the proceeds to come from the synthetic balance edge")
	}
	if leg.Fees == nil || leg.Fees.SoldCore != nil {
		t.Errorf("sell must not carry a sold core: %+v", leg.Fees)
	}
}

func TestReconstruct_WithStrategies(t *testing.T) {
	r := newReconstructor().WithStrategies([]strategy.Strategy{
		strategy.NewTokenToToken(nil),
	})

	legs, err := r.Reconstruct(pumpBuy(), []string{user})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(legs) != 0 {
		t.Errorf("token-to-token alone must not match a SOL buy, got %d legs", len(legs))
	}
}
