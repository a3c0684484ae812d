package memory

import (
	"context"
	"errors"
	"testing"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

func TestRunSummaryStore_InsertAndOrder(t *testing.T) {
	store := NewRunSummaryStore()
	ctx := context.Background()

	summaries := []*domain.RunSummary{
		{RunID: "r1", Symbol: "ETHUSDT", StrategyType: domain.StrategyTypeCounterTrade, Mode: domain.ModeBoth, TargetMetric: "return"},
		{RunID: "r1", Symbol: "BTCUSDT", StrategyType: domain.StrategyTypeFollowTheFlow, Mode: domain.ModeBuy, TargetMetric: "return"},
		{RunID: "r1", Symbol: "BTCUSDT", StrategyType: domain.StrategyTypeCounterTrade, Mode: domain.ModeSell, TargetMetric: "sharpe"},
		{RunID: "r2", Symbol: "BTCUSDT", StrategyType: domain.StrategyTypeCounterTrade, Mode: domain.ModeSell, TargetMetric: "sharpe"},
	}
	for _, s := range summaries {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByRun failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}
	if got[0].Symbol != "BTCUSDT" || got[0].StrategyType != domain.StrategyTypeCounterTrade {
		t.Errorf("unexpected first summary: %s %s", got[0].Symbol, got[0].StrategyType)
	}
	if got[2].Symbol != "ETHUSDT" {
		t.Errorf("unexpected last summary: %s", got[2].Symbol)
	}

	if err := store.Insert(ctx, summaries[0]); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
