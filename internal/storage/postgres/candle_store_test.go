package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

func testCandle(ts int64, price float64) *domain.Candle {
	return &domain.Candle{
		Symbol:      "BTCUSDT",
		Timeframe:   "5m",
		TimestampMs: ts,
		Open:        price - 1,
		High:        price + 2,
		Low:         price - 2,
		Close:       price,
		Volume:      42,
	}
}

func TestCandleStore_InsertBulkAndRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(pool)
	ctx := context.Background()

	candles := []*domain.Candle{
		testCandle(1700000600000, 102),
		testCandle(1700000000000, 100),
		testCandle(1700000300000, 101),
	}
	require.NoError(t, store.InsertBulk(ctx, candles))

	got, err := store.GetByTimeRange(ctx, "BTCUSDT", "5m", 1700000000000, 1700000600000)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1700000000000), got[0].TimestampMs)
	assert.Equal(t, int64(1700000300000), got[1].TimestampMs)
	assert.InDelta(t, 101.0, got[1].Close, 1e-9)
	assert.InDelta(t, 42.0, got[1].Volume, 1e-9)

	other, err := store.GetByTimeRange(ctx, "BTCUSDT", "1h", 0, 1<<62)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCandleStore_InsertBulkDuplicateIsAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{testCandle(0, 1)}))

	err := store.InsertBulk(ctx, []*domain.Candle{testCandle(300000, 2), testCandle(0, 3)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByTimeRange(ctx, "BTCUSDT", "5m", 0, 1<<62)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
