package features

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage/memory"
)

type failingEventStore struct{}

func (failingEventStore) InsertBulk(context.Context, []*domain.LiquidationEvent) error { return nil }
func (failingEventStore) GetByTimeRange(context.Context, string, int64, int64) ([]*domain.LiquidationEvent, error) {
	return nil, errors.New("connection reset")
}

func seededPreparer(t *testing.T, withSink bool) (*Preparer, *memory.FeatureStore) {
	t.Helper()
	ctx := context.Background()

	candleStore := memory.NewCandleStore()
	eventStore := memory.NewLiquidationEventStore()

	// two days of history before day0 plus one visible day
	require.NoError(t, candleStore.InsertBulk(ctx, grid(day0-2*msPerDay, fiveMin, 3*288)))
	require.NoError(t, eventStore.InsertBulk(ctx, []*domain.LiquidationEvent{
		ev(day0-msPerDay, domain.LiquidationSideSell, 400),
		ev(day0+fiveMin, domain.LiquidationSideBuy, 50),
	}))

	var sink *memory.FeatureStore
	opts := PreparerOptions{
		CandleStore:           candleStore,
		LiquidationEventStore: eventStore,
		Logger:                zerolog.Nop(),
	}
	if withSink {
		sink = memory.NewFeatureStore()
		opts.FeatureStore = sink
	}
	return NewPreparer(opts), sink
}

func TestPreparer_FetchesLookbackHistory(t *testing.T) {
	p, _ := seededPreparer(t, false)

	table, err := p.PrepareFeatures(context.Background(), "BTCUSDT", params(day0, day0+msPerDay, 5, 2))
	require.NoError(t, err)

	require.Equal(t, 288, table.Len())
	assert.Equal(t, day0, table.Rows[0].TimestampMs)
	assert.Equal(t, 400.0, table.Rows[0].AvgLiqSell)
	assert.Equal(t, 50.0, table.Rows[1].LiqBuySize)
	assert.Equal(t, 2, table.Stats.Binned)
}

func TestPreparer_PersistsToSink(t *testing.T) {
	p, sink := seededPreparer(t, true)
	ctx := context.Background()
	prm := params(day0, day0+msPerDay, 5, 1)

	table, err := p.PrepareFeatures(ctx, "BTCUSDT", prm)
	require.NoError(t, err)

	stored, err := sink.GetByTimeRange(ctx, table.Rows[0].Key(), prm.StartMs, prm.EndMs)
	require.NoError(t, err)
	assert.Len(t, stored, table.Len())

	// recomputing the same series is not an error
	_, err = p.PrepareFeatures(ctx, "BTCUSDT", prm)
	assert.NoError(t, err)
}

func TestPreparer_EmptySymbol(t *testing.T) {
	p, sink := seededPreparer(t, true)

	table, err := p.PrepareFeatures(context.Background(), "ETHUSDT", params(day0, day0+msPerDay, 5, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())

	stored, err := sink.GetByTimeRange(context.Background(),
		domain.FeatureKey{Symbol: "ETHUSDT", Timeframe: "5m", AggregationWindowMinutes: 5, LookbackWindowDays: 1},
		day0, day0+msPerDay)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestPreparer_InvalidParams(t *testing.T) {
	p, _ := seededPreparer(t, false)

	_, err := p.PrepareFeatures(context.Background(), "BTCUSDT", params(day0+msPerDay, day0, 5, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestPreparer_StoreError(t *testing.T) {
	p := NewPreparer(PreparerOptions{
		CandleStore:           memory.NewCandleStore(),
		LiquidationEventStore: failingEventStore{},
		Logger:                zerolog.Nop(),
	})

	_, err := p.PrepareFeatures(context.Background(), "BTCUSDT", params(day0, day0+msPerDay, 5, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch liquidation events BTCUSDT")
}

func TestPreparer_ComputeInputsWrapsErrors(t *testing.T) {
	p, _ := seededPreparer(t, false)
	candles := grid(day0, fiveMin, 2)
	candles = append(candles, candles[0])

	_, err := p.ComputeInputs(&Inputs{Symbol: "BTCUSDT", Candles: candles}, params(day0, day0+msPerDay, 5, 1))
	assert.ErrorIs(t, err, ErrDuplicateCandle)
}
