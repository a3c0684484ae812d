package strategy

import (
	"liquidation-signal-lab/internal/domain"
)

// CounterTradeStrategy reads spikes like FollowTheFlowStrategy (BUY spike
// long, SELL spike short) but delays each entry by a number of cooldown
// candles after the signal.
type CounterTradeStrategy struct {
	params domain.StrategyParams

	pending   string // direction waiting for cooldown, "" when none
	countdown int    // candles left before the pending entry fires
}

// NewCounterTradeStrategy creates a new CounterTradeStrategy.
func NewCounterTradeStrategy(p domain.StrategyParams) *CounterTradeStrategy {
	p.StrategyType = domain.StrategyTypeCounterTrade
	return &CounterTradeStrategy{params: p}
}

// ID returns the strategy identifier including parameters.
func (s *CounterTradeStrategy) ID() string { return s.params.ID() }

// Params returns the strategy parameters.
func (s *CounterTradeStrategy) Params() domain.StrategyParams { return s.params }

// Next evaluates one candle.
//
// A signal on candle i with cooldown N enters on candle i+N, with SL/TP taken
// from that candle's close. Cooldown 0 enters on the signal candle itself.
// No new signal is accepted while an entry is pending.
func (s *CounterTradeStrategy) Next(row *domain.FeatureRow, pos *Position) Decision {
	ready := false
	if s.countdown > 0 {
		s.countdown--
		ready = s.countdown == 0 && s.pending != ""
	}

	sig := spikes(row, s.params.AverageLiquidationMultiplier)

	if pos != nil {
		if !s.params.ExitOnOppositeSignal {
			return hold
		}
		if (pos.Direction == domain.DirectionLong && sig.sell) ||
			(pos.Direction == domain.DirectionShort && sig.buy) {
			s.reset()
			return exitOpposite()
		}
		return hold
	}

	if ready {
		direction := s.pending
		s.reset()
		return enter(direction, row.Close, s.params)
	}

	if s.countdown > 0 {
		return hold
	}

	direction := ""
	switch {
	case sig.buy && domain.AllowsLong(s.params.Mode):
		direction = domain.DirectionLong
	case sig.sell && domain.AllowsShort(s.params.Mode):
		direction = domain.DirectionShort
	default:
		return hold
	}

	if s.params.CooldownCandles <= 0 {
		return enter(direction, row.Close, s.params)
	}
	s.pending = direction
	s.countdown = s.params.CooldownCandles
	return hold
}

func (s *CounterTradeStrategy) reset() {
	s.pending = ""
	s.countdown = 0
}

// Ensure CounterTradeStrategy implements Strategy
var _ Strategy = (*CounterTradeStrategy)(nil)
