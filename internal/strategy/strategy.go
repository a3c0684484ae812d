package strategy

import (
	"liquidation-signal-lab/internal/domain"
)

// Action is what a strategy asks the simulator to do on a candle.
type Action int

const (
	ActionHold Action = iota
	ActionEnterLong
	ActionEnterShort
	ActionExit
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionEnterLong:
		return "ENTER_LONG"
	case ActionEnterShort:
		return "ENTER_SHORT"
	case ActionExit:
		return "EXIT"
	default:
		return "HOLD"
	}
}

// Decision is the outcome of evaluating one closed candle.
// Entries carry absolute stop-loss and take-profit prices; 0 disables a level.
type Decision struct {
	Action     Action
	StopLoss   float64
	TakeProfit float64
	Reason     string // exit reason code for ActionExit
}

// Position is the simulator's view of the open position handed to a strategy.
type Position struct {
	Direction   string // LONG | SHORT
	EntryTime   int64  // fill candle (ms)
	EntryPrice  float64
	HoldCandles int
}

// Strategy turns feature rows into trading decisions.
// Implementations are stateful and must be used for a single pass over one series.
type Strategy interface {
	// Next evaluates the closed candle row. pos is nil when flat.
	Next(row *domain.FeatureRow, pos *Position) Decision

	// ID returns strategy identifier (includes parameters).
	ID() string

	// Params returns the parameter combination the strategy was built from.
	Params() domain.StrategyParams
}

var hold = Decision{Action: ActionHold}
