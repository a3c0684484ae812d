package domain

import "strings"

// LiquidationSide is the side of a forced close.
// BUY means a short was liquidated, SELL means a long was liquidated.
type LiquidationSide string

const (
	LiquidationSideBuy  LiquidationSide = "BUY"
	LiquidationSideSell LiquidationSide = "SELL"
)

// ParseLiquidationSide normalizes a side string case-insensitively.
func ParseLiquidationSide(s string) (LiquidationSide, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LiquidationSideBuy):
		return LiquidationSideBuy, true
	case string(LiquidationSideSell):
		return LiquidationSideSell, true
	default:
		return "", false
	}
}

// LiquidationEvent is a single raw forced-liquidation record.
// Corresponds to liquidation_events table in PostgreSQL.
type LiquidationEvent struct {
	Symbol      string          // trading pair
	TimestampMs int64           // event time, UTC Unix milliseconds
	Side        LiquidationSide // BUY | SELL
	SizeUSD     float64         // USD-denominated size, >= 0
}
