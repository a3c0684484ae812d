package features

import (
	"fmt"
	"math"
	"sort"

	"liquidation-signal-lab/internal/domain"
)

// Params are the scalar inputs of one feature computation.
type Params struct {
	Timeframe                string // candle width, e.g. 5m
	AggregationWindowMinutes int    // short rolling-sum horizon
	LookbackWindowDays       int    // long rolling-mean horizon
	StartMs                  int64  // first visible candle open (inclusive)
	EndMs                    int64  // end of visible range (exclusive)
}

// FetchStartMs is the earliest timestamp needed to warm up the lookback window.
func (p Params) FetchStartMs() int64 {
	return p.StartMs - int64(p.LookbackWindowDays)*msPerDay
}

// Validate checks range and window parameters. Windows below one candle
// are floored to one, so only negative windows are rejected. The timeframe is not checked
// here: Compute degrades an unparseable timeframe to zero columns.
func (p Params) Validate() error {
	if p.EndMs <= p.StartMs {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidRange, FormatMs(p.StartMs), FormatMs(p.EndMs))
	}
	if p.AggregationWindowMinutes < 0 {
		return fmt.Errorf("%w: aggregation window minutes %d", ErrInvalidWindow, p.AggregationWindowMinutes)
	}
	if p.LookbackWindowDays < 0 {
		return fmt.Errorf("%w: lookback window days %d", ErrInvalidWindow, p.LookbackWindowDays)
	}
	return nil
}

// Table is the output of a feature computation.
type Table struct {
	Params Params
	Rows   []*domain.FeatureRow
	Stats  BinStats

	AggregationCandles int  // rolling-sum window in candles
	LookbackCandles    int  // rolling-mean window in candles
	Degenerate         bool // timeframe unusable, liquidation columns zeroed
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Compute derives liquidation features for every candle in [StartMs, EndMs).
//
// Degenerate inputs never fail: an empty grid yields an empty table, an empty
// event set or an unparseable timeframe yields all-zero liquidation columns.
// A grid that repeats a timestamp or an invalid range is an error.
func Compute(candles []*domain.Candle, events []*domain.LiquidationEvent, p Params) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	table := &Table{Params: p, Stats: BinStats{Total: len(events)}}
	if len(candles) == 0 {
		return table, nil
	}

	grid, err := sortedGrid(candles)
	if err != nil {
		return nil, err
	}
	index := make([]int64, len(grid))
	for i, c := range grid {
		index[i] = c.TimestampMs
	}

	tf, err := ParseTimeframe(p.Timeframe)
	if err != nil {
		table.Degenerate = true
		table.Stats.OutOfRange = len(events)
		table.Rows = Merge(grid, ZeroColumns(index), p)
		return table, nil
	}

	bins := BinLiquidations(index, events, tf.DurationMs())
	table.Stats = bins.Stats
	table.AggregationCandles = AggregationWindowCandles(p.AggregationWindowMinutes, tf)
	table.LookbackCandles = LookbackCandles(p.LookbackWindowDays, tf)

	cols := Columns{
		BuySize:        bins.Buy,
		SellSize:       bins.Sell,
		BuyAggregated:  Series{Index: index, Values: RollingSum(bins.Buy.Values, table.AggregationCandles)},
		SellAggregated: Series{Index: index, Values: RollingSum(bins.Sell.Values, table.AggregationCandles)},
		AvgBuy:         Series{Index: index, Values: RollingMeanNonZero(bins.Buy.Values, table.LookbackCandles)},
		AvgSell:        Series{Index: index, Values: RollingMeanNonZero(bins.Sell.Values, table.LookbackCandles)},
	}

	table.Rows = Merge(grid, cols, p)
	return table, nil
}

// sortedGrid returns candles ordered by timestamp without mutating the input.
func sortedGrid(candles []*domain.Candle) ([]*domain.Candle, error) {
	grid := make([]*domain.Candle, 0, len(candles))
	for _, c := range candles {
		if c != nil {
			grid = append(grid, c)
		}
	}
	sort.SliceStable(grid, func(i, j int) bool {
		return grid[i].TimestampMs < grid[j].TimestampMs
	})
	for i := 1; i < len(grid); i++ {
		if grid[i].TimestampMs == grid[i-1].TimestampMs {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCandle, FormatMs(grid[i].TimestampMs))
		}
	}
	return grid, nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
