// Package actions turns reconstructed swap legs into trade actions and values
// their SOL side in USD.
package actions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/idhash"
	"solana-trade-recon/internal/lookup"
	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/storage"
)

// Enricher converts legs into trade actions.
// A nil CandleStore disables USD valuation.
type Enricher struct {
	candles     storage.CandleStore
	pricing     config.PricingParams
	stablecoins map[string]bool
	logger      *zap.Logger
	clock       func() time.Time
}

// NewEnricher creates an enricher pricing against candles.
func NewEnricher(candles storage.CandleStore, params config.Params, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	stables := make(map[string]bool, len(params.Strategy.Stablecoins))
	for _, m := range params.Strategy.Stablecoins {
		stables[m] = true
	}
	return &Enricher{
		candles:     candles,
		pricing:     params.Pricing,
		stablecoins: stables,
		logger:      logger.Named("actions"),
		clock:       time.Now,
	}
}

// WithClock sets the clock used for CreatedAt.
func (e *Enricher) WithClock(clock func() time.Time) *Enricher {
	e.clock = clock
	return e
}

// Enrich returns one action per leg, in leg order.
// Pricing failures leave PriceUSD and ValueUSD nil and never drop an action.
func (e *Enricher) Enrich(ctx context.Context, tx *solana.Transaction, legs []domain.SwapLeg) []*domain.TradeAction {
	if tx == nil || len(legs) == 0 {
		return nil
	}

	price := e.solPrice(ctx, tx)
	now := e.clock().UnixMilli()

	out := make([]*domain.TradeAction, 0, len(legs))
	for i := range legs {
		leg := &legs[i]
		seqs := leg.Seqs()

		a := &domain.TradeAction{
			ID:           idhash.ComputeActionID(tx.Signature, leg.UserWallet, seqs),
			Signature:    tx.Signature,
			Slot:         tx.Slot,
			BlockTime:    tx.BlockTime,
			Wallet:       leg.UserWallet,
			Type:         e.actionType(leg),
			Strategy:     leg.Strategy,
			SoldMint:     leg.SoldMint,
			SoldAmount:   leg.SoldAmount,
			BoughtMint:   leg.BoughtMint,
			BoughtAmount: leg.BoughtAmount,
			NativeAmount: nativeSide(leg),
			PathSeqs:     seqs,
			CreatedAt:    now,
		}

		if f := leg.Fees; f != nil {
			a.NetworkFee = f.NetworkFee
			a.RouterFees = f.RouterFees
			a.Tip = f.Tip
		}

		if price != nil && !a.NativeAmount.IsZero() {
			p := *price
			v := a.NativeAmount.Mul(p)
			a.PriceUSD = &p
			a.ValueUSD = &v
		}

		out = append(out, a)
	}

	return out
}

// actionType classifies a leg. SOL and stablecoins are quote assets: spending
// one is a buy, receiving one is a sell.
func (e *Enricher) actionType(leg *domain.SwapLeg) string {
	switch {
	case leg.IsTransfer():
		return domain.ActionTransfer
	case e.isQuote(leg.SoldMint):
		return domain.ActionBuy
	case e.isQuote(leg.BoughtMint):
		return domain.ActionSell
	default:
		return domain.ActionSwap
	}
}

func (e *Enricher) isQuote(mint string) bool {
	return mint == domain.NativeMint || e.stablecoins[mint]
}

func nativeSide(leg *domain.SwapLeg) decimal.Decimal {
	switch {
	case leg.SoldNative():
		return leg.SoldAmount
	case leg.BoughtNative():
		return leg.BoughtAmount
	default:
		return decimal.Zero
	}
}

// solPrice looks up the SOL/USD close at the block time.
func (e *Enricher) solPrice(ctx context.Context, tx *solana.Transaction) *decimal.Decimal {
	if e.candles == nil || tx.BlockTime == 0 {
		return nil
	}

	ts := tx.BlockTime * 1000
	start := time.Now()
	candles, err := e.candles.GetByTimeRange(ctx, e.pricing.Symbol, ts-e.pricing.LookbackMs, ts+e.pricing.LookbackMs)
	observability.RecordDBQuery("candles", "get_by_time_range", time.Since(start).Seconds(), err)
	if err != nil {
		e.logger.Warn("candle lookup failed",
			zap.String("signature", tx.Signature),
			zap.String("symbol", e.pricing.Symbol),
			zap.Error(err))
		return nil
	}

	closePrice, err := lookup.CloseAt(ts, candles)
	if err != nil {
		e.logger.Debug("no candle for block time",
			zap.String("signature", tx.Signature),
			zap.Int64("block_time_ms", ts))
		return nil
	}

	p := decimal.NewFromFloat(closePrice)
	return &p
}
