package domain

// Candle is one OHLCV bucket of the backtest timeframe.
// Corresponds to candles table in PostgreSQL.
type Candle struct {
	Symbol      string  // trading pair, e.g. BTCUSDT
	Timeframe   string  // candle width, e.g. 5m
	TimestampMs int64   // candle open, UTC Unix milliseconds
	Open        float64 // first trade price
	High        float64 // highest trade price
	Low         float64 // lowest trade price
	Close       float64 // last trade price
	Volume      float64 // base asset volume
}
