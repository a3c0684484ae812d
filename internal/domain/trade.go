package domain

// Trade directions
const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// TradeRecord represents one simulated round trip.
// Corresponds to trade_records table in PostgreSQL.
type TradeRecord struct {
	TradeID    string // uuid
	RunID      string // batch run identifier
	Symbol     string // trading pair
	StrategyID string // StrategyParams.ID()
	Direction  string // LONG | SHORT

	// Entry
	EntrySignalTime int64   // candle that produced the signal (ms)
	EntryTime       int64   // fill candle (ms)
	EntryPrice      float64 // after slippage
	Quantity        float64 // base units
	Margin          float64 // equity committed

	// Exit
	ExitTime   int64   // fill candle (ms)
	ExitPrice  float64 // after slippage
	ExitReason string  // reason code

	// Outcome
	Commission   float64 // entry + exit
	PnL          float64 // net of commission
	ReturnPct    float64 // PnL / Margin * 100
	OutcomeClass string  // WIN | LOSS
	HoldCandles  int
}

// Exit reason codes
const (
	ExitReasonStopLoss       = "STOP_LOSS"
	ExitReasonTakeProfit     = "TAKE_PROFIT"
	ExitReasonOppositeSignal = "OPPOSITE_SIGNAL"
	ExitReasonEndOfData      = "END_OF_DATA"
)

// Outcome class constants
const (
	OutcomeClassWin  = "WIN"
	OutcomeClassLoss = "LOSS"
)
