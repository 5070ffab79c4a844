package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/storage"
)

// ActionStore implements storage.ActionStore using PostgreSQL.
type ActionStore struct {
	pool *Pool
}

// NewActionStore creates a new ActionStore.
func NewActionStore(pool *Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActionStore = (*ActionStore)(nil)

const insertActionQuery = `
	INSERT INTO trade_actions (
		action_id, signature, slot, block_time, wallet,
		action_type, strategy,
		sold_mint, sold_amount, bought_mint, bought_amount, native_amount,
		price_usd, value_usd,
		network_fee, router_fees, tip,
		path_seqs, created_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7,
		$8, $9, $10, $11, $12,
		$13, $14,
		$15, $16, $17,
		$18, $19
	)
`

const selectActionColumns = `
	action_id, signature, slot, block_time, wallet,
	action_type, strategy,
	sold_mint, sold_amount::text, bought_mint, bought_amount::text, native_amount::text,
	price_usd::text, value_usd::text,
	network_fee::text, router_fees::text, tip::text,
	path_seqs, created_at
`

func insertArgs(a *domain.TradeAction) []any {
	seqs := make([]int32, len(a.PathSeqs))
	for i, s := range a.PathSeqs {
		seqs[i] = int32(s)
	}

	return []any{
		a.ID, a.Signature, a.Slot, a.BlockTime, a.Wallet,
		a.Type, a.Strategy,
		a.SoldMint, numericArg(a.SoldAmount), a.BoughtMint, numericArg(a.BoughtAmount), numericArg(a.NativeAmount),
		nullableNumericArg(a.PriceUSD), nullableNumericArg(a.ValueUSD),
		numericArg(a.NetworkFee), numericArg(a.RouterFees), numericArg(a.Tip),
		seqs, a.CreatedAt,
	}
}

// Insert adds a new action. Returns ErrDuplicateKey if action_id exists.
func (s *ActionStore) Insert(ctx context.Context, a *domain.TradeAction) error {
	if a == nil || a.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertActionQuery, insertArgs(a)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade action: %w", err)
	}
	return nil
}

// InsertBulk adds multiple actions atomically. Fails entire batch on any duplicate.
func (s *ActionStore) InsertBulk(ctx context.Context, actions []*domain.TradeAction) error {
	if len(actions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range actions {
		if a == nil || a.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, insertActionQuery, insertArgs(a)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade action in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves an action by its ID. Returns ErrNotFound if not exists.
func (s *ActionStore) GetByID(ctx context.Context, id string) (*domain.TradeAction, error) {
	query := `SELECT ` + selectActionColumns + ` FROM trade_actions WHERE action_id = $1`

	a, err := scanAction(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade action by id: %w", err)
	}
	return a, nil
}

// GetBySignature retrieves all actions of a transaction.
func (s *ActionStore) GetBySignature(ctx context.Context, signature string) ([]*domain.TradeAction, error) {
	query := `SELECT ` + selectActionColumns + `
		FROM trade_actions
		WHERE signature = $1
		ORDER BY wallet ASC, path_seqs[1] ASC NULLS FIRST
	`

	rows, err := s.pool.Query(ctx, query, signature)
	if err != nil {
		return nil, fmt.Errorf("get trade actions by signature: %w", err)
	}
	defer rows.Close()

	return scanActions(rows)
}

// GetByWallet retrieves actions of a wallet within [start, end] block time.
func (s *ActionStore) GetByWallet(ctx context.Context, wallet string, start, end int64) ([]*domain.TradeAction, error) {
	query := `SELECT ` + selectActionColumns + `
		FROM trade_actions
		WHERE wallet = $1 AND block_time >= $2 AND block_time <= $3
		ORDER BY block_time ASC, action_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet, start, end)
	if err != nil {
		return nil, fmt.Errorf("get trade actions by wallet: %w", err)
	}
	defer rows.Close()

	return scanActions(rows)
}

// scanAction scans a single row into a TradeAction.
func scanAction(row pgx.Row) (*domain.TradeAction, error) {
	var (
		a                                         domain.TradeAction
		sold, bought, native, network, router, tp string
		price, value                              *string
		seqs                                      []int32
	)

	err := row.Scan(
		&a.ID, &a.Signature, &a.Slot, &a.BlockTime, &a.Wallet,
		&a.Type, &a.Strategy,
		&a.SoldMint, &sold, &a.BoughtMint, &bought, &native,
		&price, &value,
		&network, &router, &tp,
		&seqs, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.SoldAmount, err = parseNumeric(sold); err != nil {
		return nil, err
	}
	if a.BoughtAmount, err = parseNumeric(bought); err != nil {
		return nil, err
	}
	if a.NativeAmount, err = parseNumeric(native); err != nil {
		return nil, err
	}
	if a.NetworkFee, err = parseNumeric(network); err != nil {
		return nil, err
	}
	if a.RouterFees, err = parseNumeric(router); err != nil {
		return nil, err
	}
	if a.Tip, err = parseNumeric(tp); err != nil {
		return nil, err
	}
	if a.PriceUSD, err = parseNullableNumeric(price); err != nil {
		return nil, err
	}
	if a.ValueUSD, err = parseNullableNumeric(value); err != nil {
		return nil, err
	}

	a.PathSeqs = make([]int, len(seqs))
	for i, s := range seqs {
		a.PathSeqs[i] = int(s)
	}

	return &a, nil
}

// scanActions scans multiple rows into a slice of TradeAction.
func scanActions(rows pgx.Rows) ([]*domain.TradeAction, error) {
	var actions []*domain.TradeAction

	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade action row: %w", err)
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade action rows: %w", err)
	}

	return actions, nil
}
