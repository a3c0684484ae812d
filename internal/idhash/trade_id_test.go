package idhash

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeTradeID(t *testing.T) {
	tests := []struct {
		name            string
		runID           string
		symbol          string
		strategyID      string
		entrySignalTime int64
	}{
		{
			name:            "counter trade",
			runID:           "run-1",
			symbol:          "BTCUSDT",
			strategyID:      "COUNTER_TRADE|both|agg=60|lb=7|mult=2|sl=1|tp=2|cd=1",
			entrySignalTime: 1704067200000,
		},
		{
			name:            "follow the flow",
			runID:           "run-1",
			symbol:          "ETHUSDT",
			strategyID:      "FOLLOW_THE_FLOW|sell|agg=30|lb=3|mult=4|sl=1.5|tp=3|opp",
			entrySignalTime: 1704067500000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTradeID(tt.runID, tt.symbol, tt.strategyID, tt.entrySignalTime)

			parsed, err := uuid.Parse(got)
			if err != nil {
				t.Fatalf("ComputeTradeID() = %q is not a UUID: %v", got, err)
			}
			if parsed.Version() != 5 {
				t.Errorf("ComputeTradeID() version = %d, want 5", parsed.Version())
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeTradeID(tt.runID, tt.symbol, tt.strategyID, tt.entrySignalTime)
			if got != got2 {
				t.Errorf("ComputeTradeID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTradeID_DifferentInputs(t *testing.T) {
	base := ComputeTradeID("run-1", "BTCUSDT", "s", 1000)

	variants := map[string]string{
		"run":    ComputeTradeID("run-2", "BTCUSDT", "s", 1000),
		"symbol": ComputeTradeID("run-1", "ETHUSDT", "s", 1000),
		"id":     ComputeTradeID("run-1", "BTCUSDT", "t", 1000),
		"time":   ComputeTradeID("run-1", "BTCUSDT", "s", 1001),
	}
	for field, id := range variants {
		if id == base {
			t.Errorf("changing %s did not change the trade id", field)
		}
	}
}
