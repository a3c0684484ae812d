package datasource

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
)

// liquidationRecord is one element of the liquidation API payload.
type liquidationRecord struct {
	Timestamp        json.Number `json:"timestamp"`
	TimestampISO     string      `json:"timestamp_iso"`
	Side             string      `json:"side"`
	CumulatedUSDSize float64     `json:"cumulated_usd_size"`
}

// LoadLiquidationsJSON reads liquidation events for symbol from a JSON file.
func LoadLiquidationsJSON(path, symbol string) ([]*domain.LiquidationEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open liquidations json: %w", err)
	}
	defer f.Close()

	events, err := ReadLiquidationsJSON(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// ReadLiquidationsJSON parses a JSON array of liquidation records.
// The numeric timestamp wins over timestamp_iso when both are present.
// Records sharing (timestamp, side) are summed into one event.
// The result is ordered by (timestamp, side).
func ReadLiquidationsJSON(r io.Reader, symbol string) ([]*domain.LiquidationEvent, error) {
	var records []liquidationRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode liquidations: %w", err)
	}

	type key struct {
		ts   int64
		side domain.LiquidationSide
	}
	merged := make(map[key]*domain.LiquidationEvent, len(records))
	events := make([]*domain.LiquidationEvent, 0, len(records))

	for i, rec := range records {
		ts, err := recordTimestamp(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		side, ok := domain.ParseLiquidationSide(rec.Side)
		if !ok {
			return nil, fmt.Errorf("record %d: %w: side %q", i, ErrInvalidRecord, rec.Side)
		}
		size := rec.CumulatedUSDSize
		if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
			return nil, fmt.Errorf("record %d: %w: cumulated_usd_size %v", i, ErrInvalidRecord, size)
		}

		k := key{ts, side}
		if e, ok := merged[k]; ok {
			e.SizeUSD += size
			continue
		}
		e := &domain.LiquidationEvent{Symbol: symbol, TimestampMs: ts, Side: side, SizeUSD: size}
		merged[k] = e
		events = append(events, e)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TimestampMs != events[j].TimestampMs {
			return events[i].TimestampMs < events[j].TimestampMs
		}
		return events[i].Side < events[j].Side
	})
	return events, nil
}

func recordTimestamp(rec liquidationRecord) (int64, error) {
	if rec.Timestamp != "" {
		return features.ParseTimestampMs(rec.Timestamp.String())
	}
	if rec.TimestampISO != "" {
		return features.ParseTimestampMs(rec.TimestampISO)
	}
	return 0, fmt.Errorf("%w: no timestamp", ErrInvalidRecord)
}
