package lookup

import (
	"errors"

	"solana-trade-recon/internal/domain"
)

// ErrNoPriceData is returned when no candle is available.
var ErrNoPriceData = errors.New("no price data available")

// CandleAt returns the candle used to price target (ms).
// Candles must be ordered by OpenTime ASC.
// Picks the candle containing target, else the latest candle opened before
// target, else the first available candle.
// Returns ErrNoPriceData if slice is empty.
func CandleAt(target int64, candles []*domain.Candle) (*domain.Candle, error) {
	if len(candles) == 0 {
		return nil, ErrNoPriceData
	}

	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Contains(target) {
			return candles[i], nil
		}
	}

	// Closest before target
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].OpenTime <= target {
			return candles[i], nil
		}
	}

	return candles[0], nil
}

// CloseAt returns the close price of CandleAt(target, candles).
func CloseAt(target int64, candles []*domain.Candle) (float64, error) {
	c, err := CandleAt(target, candles)
	if err != nil {
		return 0, err
	}
	return c.Close, nil
}
