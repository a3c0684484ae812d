package strategy

import (
	"liquidation-signal-lab/internal/domain"
)

// signals holds the liquidation spikes on one candle.
type signals struct {
	buy  bool // Liq_Buy_Aggregated > Avg_Liq_Buy * multiplier
	sell bool // Liq_Sell_Aggregated > Avg_Liq_Sell * multiplier
}

// spikes evaluates both sides against their long-run average.
// A zero average with a positive aggregate is a spike.
func spikes(row *domain.FeatureRow, multiplier float64) signals {
	return signals{
		buy:  row.LiqBuyAggregated > row.AvgLiqBuy*multiplier,
		sell: row.LiqSellAggregated > row.AvgLiqSell*multiplier,
	}
}

// enter builds an entry decision with SL/TP derived from the candle close.
func enter(direction string, price float64, p domain.StrategyParams) Decision {
	sl, tp := levels(direction, price, p.StopLossPct, p.TakeProfitPct)
	action := ActionEnterLong
	if direction == domain.DirectionShort {
		action = ActionEnterShort
	}
	return Decision{Action: action, StopLoss: sl, TakeProfit: tp}
}

// levels converts percentage distances to absolute prices.
// Non-positive percentages disable the level.
func levels(direction string, price, slPct, tpPct float64) (sl, tp float64) {
	if direction == domain.DirectionShort {
		if slPct > 0 {
			sl = price * (1 + slPct/100)
		}
		if tpPct > 0 {
			tp = price * (1 - tpPct/100)
		}
		return sl, tp
	}
	if slPct > 0 {
		sl = price * (1 - slPct/100)
	}
	if tpPct > 0 {
		tp = price * (1 + tpPct/100)
	}
	return sl, tp
}

func exitOpposite() Decision {
	return Decision{Action: ActionExit, Reason: domain.ExitReasonOppositeSignal}
}
