package features

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidation-signal-lab/internal/domain"
)

var day0 = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).UnixMilli()

// grid returns n consecutive candles of width stepMs starting at fromMs.
func grid(fromMs, stepMs int64, n int) []*domain.Candle {
	candles := make([]*domain.Candle, n)
	for i := range candles {
		p := 100 + float64(i%10)
		candles[i] = &domain.Candle{
			Symbol:      "BTCUSDT",
			Timeframe:   "5m",
			TimestampMs: fromMs + int64(i)*stepMs,
			Open:        p,
			High:        p + 1,
			Low:         p - 1,
			Close:       p + 0.5,
			Volume:      float64(i),
		}
	}
	return candles
}

func params(startMs, endMs int64, aggMinutes, lookbackDays int) Params {
	return Params{
		Timeframe:                "5m",
		AggregationWindowMinutes: aggMinutes,
		LookbackWindowDays:       lookbackDays,
		StartMs:                  startMs,
		EndMs:                    endMs,
	}
}

func derived(r *domain.FeatureRow) []float64 {
	return []float64{r.LiqBuySize, r.LiqSellSize, r.LiqBuyAggregated, r.LiqSellAggregated, r.AvgLiqBuy, r.AvgLiqSell}
}

func TestCompute_SingleSideSeries(t *testing.T) {
	candles := grid(day0, fiveMin, 5)
	var events []*domain.LiquidationEvent
	for i, size := range []float64{1, 2, 3, 4, 5} {
		events = append(events, ev(day0+int64(i)*fiveMin+1000, domain.LiquidationSideBuy, size))
	}

	// 10 minutes on a 5m grid = 2 candles
	table, err := Compute(candles, events, params(day0, day0+5*fiveMin, 10, 1))
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())

	var agg, size []float64
	for _, r := range table.Rows {
		agg = append(agg, r.LiqBuyAggregated)
		size = append(size, r.LiqBuySize)
	}
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, size)
	assert.Equal(t, []float64{1, 3, 5, 7, 9}, agg)
	assert.Equal(t, 2, table.AggregationCandles)
	assert.Equal(t, 288, table.LookbackCandles)
}

func TestCompute_NonZeroAverage(t *testing.T) {
	candles := grid(day0, fiveMin, 5)
	events := []*domain.LiquidationEvent{
		ev(day0+2*fiveMin, domain.LiquidationSideSell, 10),
		ev(day0+4*fiveMin, domain.LiquidationSideSell, 20),
	}

	table, err := Compute(candles, events, params(day0, day0+5*fiveMin, 5, 1))
	require.NoError(t, err)

	last := table.Rows[4]
	assert.Equal(t, 15.0, last.AvgLiqSell)
	assert.Equal(t, 0.0, table.Rows[0].AvgLiqSell)
	assert.Equal(t, 0.0, last.AvgLiqBuy)
}

func TestCompute_EmptyEventsZeroColumns(t *testing.T) {
	candles := grid(day0, fiveMin, 20)

	table, err := Compute(candles, nil, params(day0, day0+20*fiveMin, 15, 7))
	require.NoError(t, err)
	require.Equal(t, 20, table.Len())

	for i, r := range table.Rows {
		assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, derived(r), "row %d", i)
		c := candles[i]
		assert.Equal(t, []float64{c.Open, c.High, c.Low, c.Close, c.Volume}, r.Values()[:5], "ohlcv row %d", i)
	}
}

func TestCompute_EmptyGrid(t *testing.T) {
	events := []*domain.LiquidationEvent{ev(day0, domain.LiquidationSideBuy, 1)}

	table, err := Compute(nil, events, params(day0, day0+fiveMin, 5, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 1, table.Stats.Total)
}

func TestCompute_UnparseableTimeframeDegradesToZeros(t *testing.T) {
	candles := grid(day0, fiveMin, 3)
	events := []*domain.LiquidationEvent{ev(day0, domain.LiquidationSideBuy, 100)}
	p := params(day0, day0+3*fiveMin, 5, 1)
	p.Timeframe = "five minutes"

	table, err := Compute(candles, events, p)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	assert.True(t, table.Degenerate)
	for _, r := range table.Rows {
		assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, derived(r))
	}
}

func TestCompute_RangeTrimming(t *testing.T) {
	const lookbackDays = 14
	start := day0
	end := day0 + 7*msPerDay
	p := params(start, end, 60, lookbackDays)

	assert.Equal(t, start-lookbackDays*msPerDay, p.FetchStartMs())

	n := int((end - p.FetchStartMs()) / fiveMin)
	candles := grid(p.FetchStartMs(), fiveMin, n)
	// one candle past the end must also be excluded
	candles = append(candles, grid(end, fiveMin, 1)...)

	table, err := Compute(candles, nil, p)
	require.NoError(t, err)

	assert.Equal(t, 7*288, table.Len())
	assert.Equal(t, start, table.Rows[0].TimestampMs)
	assert.Equal(t, end-fiveMin, table.Rows[table.Len()-1].TimestampMs)
}

func TestCompute_LookbackHistoryFeedsVisibleRows(t *testing.T) {
	// one big SELL liquidation a day before start
	start := day0
	candles := grid(start-2*msPerDay, fiveMin, 3*288)
	events := []*domain.LiquidationEvent{ev(start-msPerDay, domain.LiquidationSideSell, 500)}

	table, err := Compute(candles, events, params(start, start+msPerDay, 5, 2))
	require.NoError(t, err)

	assert.Equal(t, 500.0, table.Rows[0].AvgLiqSell, "history inside the lookback window counts")
	assert.Equal(t, 0.0, table.Rows[0].LiqSellAggregated, "history outside the aggregation window does not")
}

func TestCompute_Idempotent(t *testing.T) {
	candles := grid(day0, fiveMin, 300)
	var events []*domain.LiquidationEvent
	for i := 0; i < 900; i++ {
		side := domain.LiquidationSideBuy
		if i%2 == 1 {
			side = domain.LiquidationSideSell
		}
		events = append(events, ev(day0+int64(i)*fiveMin/3+int64(i%5), side, float64(i%17)*1.37))
	}
	p := params(day0+10*fiveMin, day0+290*fiveMin, 30, 1)

	a, err := Compute(candles, events, p)
	require.NoError(t, err)
	b, err := Compute(candles, events, p)
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := range a.Rows {
		assert.Equal(t, fmt.Sprintf("%v", *a.Rows[i]), fmt.Sprintf("%v", *b.Rows[i]))
	}
}

func TestCompute_DoesNotMutateInputOrder(t *testing.T) {
	candles := grid(day0, fiveMin, 4)
	shuffled := []*domain.Candle{candles[2], candles[0], candles[3], candles[1]}

	table, err := Compute(shuffled, nil, params(day0, day0+4*fiveMin, 5, 1))
	require.NoError(t, err)

	assert.Equal(t, day0+2*fiveMin, shuffled[0].TimestampMs, "input slice untouched")
	for i, r := range table.Rows {
		assert.Equal(t, day0+int64(i)*fiveMin, r.TimestampMs)
	}
}

func TestCompute_DuplicateCandle(t *testing.T) {
	candles := grid(day0, fiveMin, 3)
	candles = append(candles, grid(day0+fiveMin, fiveMin, 1)...)

	_, err := Compute(candles, nil, params(day0, day0+3*fiveMin, 5, 1))
	assert.True(t, errors.Is(err, ErrDuplicateCandle), "got %v", err)
}

func TestCompute_InvalidRange(t *testing.T) {
	_, err := Compute(grid(day0, fiveMin, 1), nil, params(day0, day0, 5, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Compute(grid(day0, fiveMin, 1), nil, params(day0, day0+fiveMin, -5, 1))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestCompute_NoNaNOrNegative(t *testing.T) {
	candles := grid(day0, fiveMin, 200)
	var events []*domain.LiquidationEvent
	for i := 0; i < 200; i += 9 {
		events = append(events, ev(day0+int64(i)*fiveMin, domain.LiquidationSideBuy, 0.1*float64(i)))
		events = append(events, ev(day0+int64(i)*fiveMin, domain.LiquidationSideSell, math.NaN()))
	}

	table, err := Compute(candles, events, params(day0, day0+200*fiveMin, 15, 1))
	require.NoError(t, err)

	for _, r := range table.Rows {
		for _, v := range derived(r) {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
	assert.Equal(t, 23, table.Stats.Rejected)
}

func TestCompute_RowCarriesSeriesKey(t *testing.T) {
	table, err := Compute(grid(day0, fiveMin, 2), nil, params(day0, day0+2*fiveMin, 15, 3))
	require.NoError(t, err)

	key := table.Rows[0].Key()
	assert.Equal(t, domain.FeatureKey{Symbol: "BTCUSDT", Timeframe: "5m", AggregationWindowMinutes: 15, LookbackWindowDays: 3}, key)
}
