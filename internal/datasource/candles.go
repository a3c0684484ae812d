package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
)

var candleColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// LoadCandlesCSV reads candles for symbol/timeframe from a CSV file.
func LoadCandlesCSV(path, symbol, timeframe string) ([]*domain.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candles csv: %w", err)
	}
	defer f.Close()

	candles, err := ReadCandlesCSV(f, symbol, timeframe)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return candles, nil
}

// ReadCandlesCSV parses candles from r. Header names are case-insensitive.
// Timestamps may be Unix ms or any layout features.ParseTimestamp accepts.
// The result is sorted by timestamp.
func ReadCandlesCSV(r io.Reader, symbol, timeframe string) ([]*domain.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	// accept common aliases for the timestamp column
	if _, ok := cols["timestamp"]; !ok {
		for _, alias := range []string{"datetime", "date", "time"} {
			if i, ok := cols[alias]; ok {
				cols["timestamp"] = i
				break
			}
		}
	}
	idx := make([]int, len(candleColumns))
	for i, name := range candleColumns {
		j, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[i] = j
	}

	var candles []*domain.Candle
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := features.ParseTimestampMs(rec[idx[0]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var v [5]float64
		for i := range v {
			raw := rec[idx[i+1]]
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
				return nil, fmt.Errorf("line %d: %w: %s %q", line, ErrInvalidRecord, candleColumns[i+1], raw)
			}
			v[i] = f
		}

		candles = append(candles, &domain.Candle{
			Symbol:      symbol,
			Timeframe:   timeframe,
			TimestampMs: ts,
			Open:        v[0],
			High:        v[1],
			Low:         v[2],
			Close:       v[3],
			Volume:      v[4],
		})
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].TimestampMs < candles[j].TimestampMs
	})
	return candles, nil
}
