package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"liquidation-signal-lab/internal/domain"
)

const fiveMin = int64(5 * 60 * 1000)

func ev(ts int64, side domain.LiquidationSide, size float64) *domain.LiquidationEvent {
	return &domain.LiquidationEvent{Symbol: "BTCUSDT", TimestampMs: ts, Side: side, SizeUSD: size}
}

func TestBinLiquidations_LeftClosedRightOpen(t *testing.T) {
	index := []int64{0, fiveMin, 2 * fiveMin}
	events := []*domain.LiquidationEvent{
		ev(0, domain.LiquidationSideBuy, 1),             // at open: first bucket
		ev(fiveMin-1, domain.LiquidationSideBuy, 2),     // last ms: first bucket
		ev(fiveMin, domain.LiquidationSideBuy, 4),       // boundary: second bucket
		ev(2*fiveMin+10, domain.LiquidationSideSell, 8), // third bucket
	}

	res := BinLiquidations(index, events, fiveMin)

	assert.Equal(t, []float64{3, 4, 0}, res.Buy.Values)
	assert.Equal(t, []float64{0, 0, 8}, res.Sell.Values)
	assert.Equal(t, BinStats{Total: 4, Binned: 4}, res.Stats)
}

func TestBinLiquidations_OutOfRangeAndGaps(t *testing.T) {
	// grid has a gap: candle at 2*fiveMin is missing
	index := []int64{fiveMin, 3 * fiveMin}
	events := []*domain.LiquidationEvent{
		ev(0, domain.LiquidationSideBuy, 1),           // before grid
		ev(2*fiveMin+5, domain.LiquidationSideBuy, 2), // inside the gap
		ev(4*fiveMin, domain.LiquidationSideBuy, 3),   // after last bucket
		ev(3*fiveMin+1, domain.LiquidationSideBuy, 5),
	}

	res := BinLiquidations(index, events, fiveMin)

	assert.Equal(t, []float64{0, 5}, res.Buy.Values)
	assert.Equal(t, 1, res.Stats.Binned)
	assert.Equal(t, 3, res.Stats.OutOfRange)
}

func TestBinLiquidations_RejectsInvalid(t *testing.T) {
	index := []int64{0}
	events := []*domain.LiquidationEvent{
		nil,
		ev(1, domain.LiquidationSideBuy, -1),
		ev(1, domain.LiquidationSideBuy, math.NaN()),
		ev(1, domain.LiquidationSideBuy, math.Inf(1)),
		ev(1, "LONG", 5),
		ev(1, "buy", 7), // lower-case side is accepted
	}

	res := BinLiquidations(index, events, fiveMin)

	assert.Equal(t, []float64{7}, res.Buy.Values)
	assert.Equal(t, BinStats{Total: 6, Binned: 1, Rejected: 5}, res.Stats)
}

func TestBinLiquidations_EmptyEvents(t *testing.T) {
	index := []int64{0, fiveMin}
	res := BinLiquidations(index, nil, fiveMin)

	assert.Equal(t, []float64{0, 0}, res.Buy.Values)
	assert.Equal(t, []float64{0, 0}, res.Sell.Values)
	assert.Equal(t, index, res.Buy.Index)
}

func TestBinLiquidations_Conservation(t *testing.T) {
	index := make([]int64, 50)
	for i := range index {
		index[i] = int64(i) * fiveMin
	}

	var events []*domain.LiquidationEvent
	var inRangeBuy float64
	for i := 0; i < 400; i++ {
		ts := int64(i)*fiveMin/7 - fiveMin // some before the grid
		size := float64(i%13) + 0.5
		side := domain.LiquidationSideBuy
		if i%3 == 0 {
			side = domain.LiquidationSideSell
		}
		events = append(events, ev(ts, side, size))
		if side == domain.LiquidationSideBuy && ts >= 0 && ts < 50*fiveMin {
			inRangeBuy += size
		}
	}

	res := BinLiquidations(index, events, fiveMin)

	assert.InDelta(t, inRangeBuy, res.Buy.Sum(), 1e-6)
	assert.Equal(t, res.Stats.Total, res.Stats.Binned+res.Stats.OutOfRange+res.Stats.Rejected)
}
