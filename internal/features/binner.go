package features

import (
	"math"
	"sort"

	"liquidation-signal-lab/internal/domain"
)

// BinStats accounts for every event handed to the binner.
// Total = Binned + OutOfRange + Rejected.
type BinStats struct {
	Total      int // events received
	Binned     int // events added to a candle bucket
	OutOfRange int // events outside every [open, open+duration) bucket of the grid
	Rejected   int // unknown side, negative or non-finite size
}

// BinResult holds per-candle liquidation sizes by side.
type BinResult struct {
	Buy   Series
	Sell  Series
	Stats BinStats
}

// BinLiquidations sums event sizes by side into candle buckets.
// index must be sorted ascending without duplicates. A bucket is
// left-closed, right-open: [open, open+durationMs). Candles without
// activity stay at 0.
func BinLiquidations(index []int64, events []*domain.LiquidationEvent, durationMs int64) BinResult {
	res := BinResult{
		Buy:   NewSeries(index),
		Sell:  NewSeries(index),
		Stats: BinStats{Total: len(events)},
	}

	for _, e := range events {
		if e == nil || !validSize(e.SizeUSD) {
			res.Stats.Rejected++
			continue
		}
		side, ok := domain.ParseLiquidationSide(string(e.Side))
		if !ok {
			res.Stats.Rejected++
			continue
		}

		i := bucketOf(index, e.TimestampMs, durationMs)
		if i < 0 {
			res.Stats.OutOfRange++
			continue
		}

		if side == domain.LiquidationSideBuy {
			res.Buy.Values[i] += e.SizeUSD
		} else {
			res.Sell.Values[i] += e.SizeUSD
		}
		res.Stats.Binned++
	}

	return res
}

// bucketOf returns the index of the candle whose bucket contains ts, or -1.
func bucketOf(index []int64, ts, durationMs int64) int {
	if durationMs <= 0 {
		return -1
	}
	// first open strictly after ts, minus one
	i := sort.Search(len(index), func(k int) bool { return index[k] > ts }) - 1
	if i < 0 || ts >= index[i]+durationMs {
		return -1
	}
	return i
}

func validSize(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
