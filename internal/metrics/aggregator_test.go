package metrics

import (
	"context"
	"errors"
	"math"
	"testing"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage/memory"
)

func TestAggregator_ComputeSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTradeRecordStore()

	trades := []*domain.TradeRecord{
		trade("t1", 1, 100, 10),
		trade("t2", 2, -50, -5),
		trade("t3", 3, 100, 10),
	}
	other := trade("t4", 4, -500, -50)
	other.StrategyID = "other"
	for _, tr := range trades {
		tr.RunID, tr.Symbol, tr.StrategyID = "run-1", "BTCUSDT", "s1"
	}
	other.RunID, other.Symbol = "run-1", "BTCUSDT"

	if err := store.InsertBulk(ctx, append(trades, other)); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	agg := NewAggregator(store)
	s, err := agg.ComputeSummary(ctx, "run-1", "BTCUSDT", "s1", 1000)
	if err != nil {
		t.Fatalf("ComputeSummary failed: %v", err)
	}

	if s.TotalTrades != 3 {
		t.Errorf("expected 3 trades, got %d", s.TotalTrades)
	}
	if s.FinalEquity != 1150 {
		t.Errorf("expected final equity 1150, got %f", s.FinalEquity)
	}
	// 1000 -> 1100 -> 1050: 50/1100
	if math.Abs(s.MaxDrawdownPct-50.0/1100*100) > 1e-9 {
		t.Errorf("unexpected drawdown %f", s.MaxDrawdownPct)
	}
}

func TestAggregator_NoTrades(t *testing.T) {
	agg := NewAggregator(memory.NewTradeRecordStore())

	_, err := agg.ComputeSummary(context.Background(), "run-1", "BTCUSDT", "s1", 1000)
	if !errors.Is(err, ErrNoTrades) {
		t.Errorf("expected ErrNoTrades, got %v", err)
	}
}
