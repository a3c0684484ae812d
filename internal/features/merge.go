package features

import "liquidation-signal-lab/internal/domain"

// Columns are the derived series joined onto the candle grid.
type Columns struct {
	BuySize        Series
	SellSize       Series
	BuyAggregated  Series
	SellAggregated Series
	AvgBuy         Series
	AvgSell        Series
}

// ZeroColumns returns all-zero columns over index.
func ZeroColumns(index []int64) Columns {
	return Columns{
		BuySize:        NewSeries(index),
		SellSize:       NewSeries(index),
		BuyAggregated:  NewSeries(index),
		SellAggregated: NewSeries(index),
		AvgBuy:         NewSeries(index),
		AvgSell:        NewSeries(index),
	}
}

// Merge left-joins cols onto candles by exact timestamp, fills missing
// values with 0 and keeps rows with p.StartMs <= timestamp < p.EndMs.
// Candles must be sorted ascending; one row is emitted per in-range candle.
func Merge(candles []*domain.Candle, cols Columns, p Params) []*domain.FeatureRow {
	buySize := joiner(cols.BuySize)
	sellSize := joiner(cols.SellSize)
	buyAgg := joiner(cols.BuyAggregated)
	sellAgg := joiner(cols.SellAggregated)
	avgBuy := joiner(cols.AvgBuy)
	avgSell := joiner(cols.AvgSell)

	rows := make([]*domain.FeatureRow, 0, len(candles))
	for _, c := range candles {
		ts := c.TimestampMs
		if ts < p.StartMs || ts >= p.EndMs {
			continue
		}
		rows = append(rows, &domain.FeatureRow{
			Symbol:                   c.Symbol,
			Timeframe:                p.Timeframe,
			TimestampMs:              ts,
			AggregationWindowMinutes: p.AggregationWindowMinutes,
			LookbackWindowDays:       p.LookbackWindowDays,
			Open:                     c.Open,
			High:                     c.High,
			Low:                      c.Low,
			Close:                    c.Close,
			Volume:                   c.Volume,
			LiqBuySize:               buySize(ts),
			LiqSellSize:              sellSize(ts),
			LiqBuyAggregated:         buyAgg(ts),
			LiqSellAggregated:        sellAgg(ts),
			AvgLiqBuy:                avgBuy(ts),
			AvgLiqSell:               avgSell(ts),
		})
	}
	return rows
}

// joiner returns a lookup yielding the series value at ts, or 0 when absent.
func joiner(s Series) func(ts int64) float64 {
	pos := s.lookup()
	return func(ts int64) float64 {
		i, ok := pos[ts]
		if !ok || i >= len(s.Values) {
			return 0
		}
		return finite(s.Values[i])
	}
}
