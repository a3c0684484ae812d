package strategy

import (
	"liquidation-signal-lab/internal/domain"
)

// FollowTheFlowStrategy trades in the direction of a liquidation spike:
// long after heavy BUY liquidations, short after heavy SELL liquidations.
type FollowTheFlowStrategy struct {
	params domain.StrategyParams
}

// NewFollowTheFlowStrategy creates a new FollowTheFlowStrategy.
func NewFollowTheFlowStrategy(p domain.StrategyParams) *FollowTheFlowStrategy {
	p.StrategyType = domain.StrategyTypeFollowTheFlow
	return &FollowTheFlowStrategy{params: p}
}

// ID returns the strategy identifier including parameters.
func (s *FollowTheFlowStrategy) ID() string { return s.params.ID() }

// Params returns the strategy parameters.
func (s *FollowTheFlowStrategy) Params() domain.StrategyParams { return s.params }

// Next evaluates one candle.
//   - in position: exit on the opposite spike when enabled, otherwise hold
//   - flat: BUY spike enters long, SELL spike enters short (long checked first)
func (s *FollowTheFlowStrategy) Next(row *domain.FeatureRow, pos *Position) Decision {
	sig := spikes(row, s.params.AverageLiquidationMultiplier)

	if pos != nil {
		if !s.params.ExitOnOppositeSignal {
			return hold
		}
		if pos.Direction == domain.DirectionLong && sig.sell {
			return exitOpposite()
		}
		if pos.Direction == domain.DirectionShort && sig.buy {
			return exitOpposite()
		}
		return hold
	}

	if sig.buy && domain.AllowsLong(s.params.Mode) {
		return enter(domain.DirectionLong, row.Close, s.params)
	}
	if sig.sell && domain.AllowsShort(s.params.Mode) {
		return enter(domain.DirectionShort, row.Close, s.params)
	}
	return hold
}

// Ensure FollowTheFlowStrategy implements Strategy
var _ Strategy = (*FollowTheFlowStrategy)(nil)
