// Package idhash derives deterministic identifiers for persisted records.
package idhash

import (
	"fmt"

	"github.com/google/uuid"
)

var tradeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("liquidation-signal-lab/trade"))

// ComputeTradeID computes a deterministic trade_id.
// Formula: UUIDv5(run_id|symbol|strategy_id|entry_signal_time)
// Returns the canonical 36-character UUID string.
func ComputeTradeID(
	runID string,
	symbol string,
	strategyID string,
	entrySignalTime int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		runID,
		symbol,
		strategyID,
		entrySignalTime,
	)

	return uuid.NewSHA1(tradeNamespace, []byte(data)).String()
}
