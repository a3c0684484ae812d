package memory

import (
	"context"
	"errors"
	"testing"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

func candle(ts int64) *domain.Candle {
	return &domain.Candle{Symbol: "BTCUSDT", Timeframe: "5m", TimestampMs: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
}

func TestCandleStore_GetByTimeRangeHalfOpen(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.Candle{candle(300000), candle(0), candle(600000)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "BTCUSDT", "5m", 0, 600000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles in [0, 600000), got %d", len(got))
	}
	if got[0].TimestampMs != 0 || got[1].TimestampMs != 300000 {
		t.Errorf("unexpected order: %d, %d", got[0].TimestampMs, got[1].TimestampMs)
	}
}

func TestCandleStore_TimeframeIsolation(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	hourly := candle(0)
	hourly.Timeframe = "1h"
	if err := store.InsertBulk(ctx, []*domain.Candle{candle(0), hourly}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, _ := store.GetByTimeRange(ctx, "BTCUSDT", "1h", 0, 1)
	if len(got) != 1 || got[0].Timeframe != "1h" {
		t.Errorf("expected only the 1h candle, got %+v", got)
	}
}

func TestCandleStore_Duplicate(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.Candle{candle(0)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	err := store.InsertBulk(ctx, []*domain.Candle{candle(300000), candle(0)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetByTimeRange(ctx, "BTCUSDT", "5m", 0, 1<<40)
	if len(got) != 1 {
		t.Errorf("failed batch must be atomic, got %d candles", len(got))
	}
}

func TestCandleStore_InvalidInput(t *testing.T) {
	store := NewCandleStore()

	err := store.InsertBulk(context.Background(), []*domain.Candle{{TimestampMs: 1}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
