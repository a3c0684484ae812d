package strategy

import (
	"errors"
	"fmt"

	"liquidation-signal-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrInvalidMode         = errors.New("mode must be buy, sell or both")
	ErrInvalidMultiplier   = errors.New("average liquidation multiplier must be non-negative")
	ErrInvalidStopLoss     = errors.New("stop loss percentage must be non-negative")
	ErrInvalidTakeProfit   = errors.New("take profit percentage must be non-negative")
	ErrInvalidCooldown     = errors.New("cooldown candles must be non-negative")
	ErrInvalidSlippage     = errors.New("slippage percentage must be non-negative")
	ErrInvalidPositionSize = errors.New("position size fraction must be in (0, 1]")
)

// Validate checks the parameter combination without building a strategy.
func Validate(p domain.StrategyParams) error {
	switch p.StrategyType {
	case domain.StrategyTypeCounterTrade, domain.StrategyTypeFollowTheFlow:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategyType, p.StrategyType)
	}
	switch p.Mode {
	case domain.ModeBuy, domain.ModeSell, domain.ModeBoth:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
	}
	if p.AverageLiquidationMultiplier < 0 {
		return ErrInvalidMultiplier
	}
	if p.StopLossPct < 0 {
		return ErrInvalidStopLoss
	}
	if p.TakeProfitPct < 0 {
		return ErrInvalidTakeProfit
	}
	if p.CooldownCandles < 0 {
		return ErrInvalidCooldown
	}
	if p.SlippagePctPerSide < 0 {
		return ErrInvalidSlippage
	}
	if p.PositionSizeFraction <= 0 || p.PositionSizeFraction > 1 {
		return ErrInvalidPositionSize
	}
	return nil
}

// FromParams creates a fresh Strategy for one pass over a feature series.
// Validates the parameter combination first.
func FromParams(p domain.StrategyParams) (Strategy, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	switch p.StrategyType {
	case domain.StrategyTypeCounterTrade:
		return NewCounterTradeStrategy(p), nil
	default:
		return NewFollowTheFlowStrategy(p), nil
	}
}
