package simulation

import (
	"errors"
)

// Config errors
var (
	ErrInvalidEquity     = errors.New("initial equity must be positive")
	ErrInvalidLeverage   = errors.New("leverage must be at least 1")
	ErrInvalidCommission = errors.New("commission percentage must be non-negative")
	ErrUnsortedRows      = errors.New("feature rows must be strictly ascending by timestamp")
)

// Config holds account-level settings shared by every simulated combination.
type Config struct {
	RunID  string // stamped on trades and mixed into trade IDs
	Symbol string

	InitialEquity float64 // starting cash
	CommissionPct float64 // percent of notional, charged on entry and on exit
	Leverage      float64 // notional / margin
}

// Validate checks account settings.
func (c Config) Validate() error {
	if c.InitialEquity <= 0 {
		return ErrInvalidEquity
	}
	if c.Leverage < 1 {
		return ErrInvalidLeverage
	}
	if c.CommissionPct < 0 {
		return ErrInvalidCommission
	}
	return nil
}
