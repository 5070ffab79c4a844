package storage

import (
	"context"

	"solana-trade-recon/internal/domain"
)

// ActionStore provides access to trade_actions storage.
type ActionStore interface {
	// Insert adds a new action. Returns ErrDuplicateKey if action_id exists.
	Insert(ctx context.Context, a *domain.TradeAction) error

	// InsertBulk adds multiple actions atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, actions []*domain.TradeAction) error

	// GetByID retrieves an action by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.TradeAction, error)

	// GetBySignature retrieves all actions of a transaction, ordered by wallet, then first path seq.
	GetBySignature(ctx context.Context, signature string) ([]*domain.TradeAction, error)

	// GetByWallet retrieves actions of a wallet with block time within [start, end] (inclusive, seconds),
	// ordered by block time ASC.
	GetByWallet(ctx context.Context, wallet string, start, end int64) ([]*domain.TradeAction, error)
}

// CandleStore provides access to price_candles storage.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails entire batch on duplicate (symbol, open_time).
	InsertBulk(ctx context.Context, candles []*domain.Candle) error

	// GetByTimeRange retrieves candles of a symbol opened within [start, end] (inclusive, ms),
	// ordered by open time ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Candle, error)
}
