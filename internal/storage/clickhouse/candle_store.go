package clickhouse

import (
	"context"
	"fmt"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails entire batch on duplicate (symbol, open_time).
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	type key struct {
		symbol   string
		openTime int64
	}
	seen := make(map[key]struct{})
	for _, c := range candles {
		if c == nil || c.Symbol == "" || c.OpenTime < 0 || c.CloseTime <= c.OpenTime {
			return storage.ErrInvalidInput
		}
		k := key{c.Symbol, c.OpenTime}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, c := range candles {
		exists, err := s.exists(ctx, c.Symbol, c.OpenTime)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_candles (
			symbol, open_time, close_time, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			c.Symbol, uint64(c.OpenTime), uint64(c.CloseTime),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves candles of a symbol opened within [start, end].
func (s *CandleStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Candle, error) {
	if start < 0 {
		start = 0
	}
	if end < start {
		return nil, nil
	}

	query := `
		SELECT symbol, open_time, close_time, open, high, low, close, volume
		FROM price_candles FINAL
		WHERE symbol = ? AND open_time >= ? AND open_time <= ?
		ORDER BY open_time ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// exists checks if a candle with the given key exists.
func (s *CandleStore) exists(ctx context.Context, symbol string, openTime int64) (bool, error) {
	query := `
		SELECT count(*) FROM price_candles
		WHERE symbol = ? AND open_time = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, symbol, uint64(openTime)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanCandles(rows chRows) ([]*domain.Candle, error) {
	var candles []*domain.Candle

	for rows.Next() {
		var c domain.Candle
		var openTime, closeTime uint64

		err := rows.Scan(
			&c.Symbol, &openTime, &closeTime,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}

		c.OpenTime = int64(openTime)
		c.CloseTime = int64(closeTime)
		candles = append(candles, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}
