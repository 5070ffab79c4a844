package lookup

import (
	"testing"

	"solana-trade-recon/internal/domain"
)

func minuteCandles() []*domain.Candle {
	return []*domain.Candle{
		{Symbol: "SOLUSD", OpenTime: 60_000, CloseTime: 120_000, Close: 100},
		{Symbol: "SOLUSD", OpenTime: 120_000, CloseTime: 180_000, Close: 101},
		// gap between 180_000 and 300_000
		{Symbol: "SOLUSD", OpenTime: 300_000, CloseTime: 360_000, Close: 103},
	}
}

func TestCloseAt_EmptySlice(t *testing.T) {
	_, err := CloseAt(1000, nil)
	if err != ErrNoPriceData {
		t.Errorf("expected ErrNoPriceData, got %v", err)
	}

	_, err = CloseAt(1000, []*domain.Candle{})
	if err != ErrNoPriceData {
		t.Errorf("expected ErrNoPriceData, got %v", err)
	}
}

func TestCloseAt(t *testing.T) {
	tests := []struct {
		name   string
		target int64
		want   float64
	}{
		{"open boundary inclusive", 120_000, 101},
		{"inside candle", 150_000, 101},
		{"close boundary exclusive", 180_000, 101},
		{"inside gap uses latest before", 250_000, 101},
		{"after last", 900_000, 103},
		{"before first", 1_000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CloseAt(tt.target, minuteCandles())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CloseAt(%d) = %f, want %f", tt.target, got, tt.want)
			}
		})
	}
}

func TestCandleAt_ReturnsContainingCandle(t *testing.T) {
	candles := minuteCandles()

	c, err := CandleAt(310_000, candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != candles[2] {
		t.Errorf("expected third candle, got %+v", c)
	}
}
