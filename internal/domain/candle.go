package domain

// Candle is one OHLCV bar of a price series.
// Corresponds to price_candles table in ClickHouse.
type Candle struct {
	Symbol    string  // e.g. SOLUSD
	OpenTime  int64   // Unix timestamp in milliseconds, inclusive
	CloseTime int64   // Unix timestamp in milliseconds, exclusive
	Open      float64 // open price
	High      float64 // high price
	Low       float64 // low price
	Close     float64 // close price
	Volume    float64 // traded volume in base units
}

// Contains reports whether ts (ms) falls inside the candle.
func (c *Candle) Contains(ts int64) bool {
	return ts >= c.OpenTime && ts < c.CloseTime
}
