package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidation-signal-lab/internal/domain"
)

// row builds a candle with aggregated liquidations against a long-run average of 10.
func row(closePrice, buyAgg, sellAgg float64) *domain.FeatureRow {
	return &domain.FeatureRow{
		Symbol:            "BTCUSDT",
		Timeframe:         "5m",
		Close:             closePrice,
		LiqBuyAggregated:  buyAgg,
		LiqSellAggregated: sellAgg,
		AvgLiqBuy:         10,
		AvgLiqSell:        10,
	}
}

func quiet() *domain.FeatureRow { return row(100, 5, 5) }

func long() *Position  { return &Position{Direction: domain.DirectionLong} }
func short() *Position { return &Position{Direction: domain.DirectionShort} }

func newFTF(t *testing.T, mutate func(p *domain.StrategyParams)) Strategy {
	t.Helper()
	p := validParams(domain.StrategyTypeFollowTheFlow)
	if mutate != nil {
		mutate(&p)
	}
	s, err := FromParams(p)
	require.NoError(t, err)
	return s
}

func newCT(t *testing.T, mutate func(p *domain.StrategyParams)) Strategy {
	t.Helper()
	p := validParams(domain.StrategyTypeCounterTrade)
	if mutate != nil {
		mutate(&p)
	}
	s, err := FromParams(p)
	require.NoError(t, err)
	return s
}

func TestSpikeThresholdIsStrict(t *testing.T) {
	s := newFTF(t, nil)

	// multiplier 3, average 10: exactly 30 is not a spike
	assert.Equal(t, ActionHold, s.Next(row(100, 30, 0), nil).Action)
	assert.Equal(t, ActionEnterLong, s.Next(row(100, 30.01, 0), nil).Action)
}

func TestSpikeWithZeroAverage(t *testing.T) {
	s := newFTF(t, nil)
	r := &domain.FeatureRow{Close: 100, LiqBuyAggregated: 1}

	assert.Equal(t, ActionEnterLong, s.Next(r, nil).Action)
	assert.Equal(t, ActionHold, s.Next(&domain.FeatureRow{Close: 100}, nil).Action, "all-zero candle never signals")
}

func TestFollowTheFlow_Directions(t *testing.T) {
	s := newFTF(t, nil)

	d := s.Next(row(200, 100, 0), nil)
	require.Equal(t, ActionEnterLong, d.Action)
	assert.InDelta(t, 198, d.StopLoss, 1e-9)
	assert.InDelta(t, 204, d.TakeProfit, 1e-9)

	d = s.Next(row(200, 0, 100), nil)
	require.Equal(t, ActionEnterShort, d.Action)
	assert.InDelta(t, 202, d.StopLoss, 1e-9)
	assert.InDelta(t, 196, d.TakeProfit, 1e-9)
}

func TestFollowTheFlow_LongCheckedFirst(t *testing.T) {
	s := newFTF(t, nil)
	assert.Equal(t, ActionEnterLong, s.Next(row(100, 100, 100), nil).Action)
}

func TestFollowTheFlow_ModeGating(t *testing.T) {
	buyOnly := newFTF(t, func(p *domain.StrategyParams) { p.Mode = domain.ModeBuy })
	sellOnly := newFTF(t, func(p *domain.StrategyParams) { p.Mode = domain.ModeSell })

	assert.Equal(t, ActionHold, buyOnly.Next(row(100, 0, 100), nil).Action)
	assert.Equal(t, ActionHold, sellOnly.Next(row(100, 100, 0), nil).Action)
	assert.Equal(t, ActionEnterShort, sellOnly.Next(row(100, 100, 100), nil).Action)
}

func TestFollowTheFlow_HoldsInPosition(t *testing.T) {
	s := newFTF(t, nil)
	assert.Equal(t, ActionHold, s.Next(row(100, 0, 100), long()).Action)
}

func TestFollowTheFlow_OppositeExit(t *testing.T) {
	s := newFTF(t, func(p *domain.StrategyParams) { p.ExitOnOppositeSignal = true })

	d := s.Next(row(100, 0, 100), long())
	assert.Equal(t, ActionExit, d.Action)
	assert.Equal(t, domain.ExitReasonOppositeSignal, d.Reason)

	assert.Equal(t, ActionExit, s.Next(row(100, 100, 0), short()).Action)
	assert.Equal(t, ActionHold, s.Next(row(100, 100, 0), long()).Action, "same-side spike keeps the long")
}

func TestCounterTrade_Directions(t *testing.T) {
	s := newCT(t, nil)

	assert.Equal(t, ActionEnterLong, s.Next(row(100, 100, 0), nil).Action, "BUY spike enters long")
	assert.Equal(t, ActionEnterShort, s.Next(row(100, 0, 100), nil).Action, "SELL spike enters short")
	assert.Equal(t, ActionEnterLong, s.Next(row(100, 100, 100), nil).Action, "long checked first")
}

func TestCounterTrade_BuyModeSignals(t *testing.T) {
	s := newCT(t, func(p *domain.StrategyParams) {
		p.Mode = domain.ModeBuy
		p.ExitOnOppositeSignal = true
	})

	assert.Equal(t, ActionEnterLong, s.Next(row(100, 50, 5), nil).Action)
	assert.Equal(t, ActionHold, s.Next(row(100, 5, 50), nil).Action)
	assert.Equal(t, ActionExit, s.Next(row(100, 5, 50), long()).Action)
}

func TestCounterTrade_CooldownDelaysEntry(t *testing.T) {
	s := newCT(t, func(p *domain.StrategyParams) { p.CooldownCandles = 2 })

	assert.Equal(t, ActionHold, s.Next(row(100, 100, 0), nil).Action, "signal candle")
	assert.Equal(t, ActionHold, s.Next(row(101, 0, 100), nil).Action, "cooldown ignores fresh signals")

	d := s.Next(row(110, 0, 0), nil)
	require.Equal(t, ActionEnterLong, d.Action)
	assert.InDelta(t, 108.9, d.StopLoss, 1e-9, "levels use the entry candle close")
	assert.InDelta(t, 112.2, d.TakeProfit, 1e-9)

	assert.Equal(t, ActionHold, s.Next(quiet(), nil).Action)
}

func TestCounterTrade_OppositeExitClearsPending(t *testing.T) {
	s := newCT(t, func(p *domain.StrategyParams) {
		p.ExitOnOppositeSignal = true
	})

	d := s.Next(row(100, 0, 100), long())
	assert.Equal(t, ActionExit, d.Action)

	assert.Equal(t, ActionHold, s.Next(row(100, 100, 0), long()).Action, "BUY spike confirms the long")
	assert.Equal(t, ActionExit, s.Next(row(100, 100, 0), short()).Action)
}

func TestCounterTrade_NoExitWhenDisabled(t *testing.T) {
	s := newCT(t, nil)
	assert.Equal(t, ActionHold, s.Next(row(100, 100, 100), short()).Action)
}

func TestCounterTrade_ModeGating(t *testing.T) {
	s := newCT(t, func(p *domain.StrategyParams) { p.Mode = domain.ModeSell })

	assert.Equal(t, ActionHold, s.Next(row(100, 100, 0), nil).Action)
	assert.Equal(t, ActionEnterShort, s.Next(row(100, 0, 100), nil).Action)
}

func TestLevels_Disabled(t *testing.T) {
	sl, tp := levels(domain.DirectionLong, 100, 0, 0)
	assert.Zero(t, sl)
	assert.Zero(t, tp)

	sl, tp = levels(domain.DirectionShort, 100, 2, 0)
	assert.InDelta(t, 102, sl, 1e-9)
	assert.Zero(t, tp)
}

func TestNext_Deterministic(t *testing.T) {
	rows := make([]*domain.FeatureRow, 200)
	for i := range rows {
		rows[i] = row(100+math.Sin(float64(i)), float64((i*7)%50), float64((i*11)%50))
	}

	run := func() []Decision {
		s := newCT(t, func(p *domain.StrategyParams) {
			p.CooldownCandles = 1
			p.ExitOnOppositeSignal = true
		})
		var pos *Position
		var out []Decision
		for _, r := range rows {
			d := s.Next(r, pos)
			switch d.Action {
			case ActionEnterLong:
				pos = long()
			case ActionEnterShort:
				pos = short()
			case ActionExit:
				pos = nil
			}
			out = append(out, d)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "HOLD", ActionHold.String())
	assert.Equal(t, "ENTER_LONG", ActionEnterLong.String())
	assert.Equal(t, "ENTER_SHORT", ActionEnterShort.String())
	assert.Equal(t, "EXIT", ActionExit.String())
}
