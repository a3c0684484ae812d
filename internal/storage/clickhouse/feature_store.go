package clickhouse

import (
	"context"
	"fmt"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

const featureColumnsSQL = `
	symbol, timeframe, aggregation_window_minutes, lookback_window_days, timestamp_ms,
	open, high, low, close, volume,
	liq_buy_size, liq_sell_size, liq_buy_aggregated, liq_sell_aggregated,
	avg_liq_buy, avg_liq_sell
`

// InsertBulk adds multiple rows in one batch. Fails entire batch on any duplicate.
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
func (s *FeatureStore) InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Group timestamps per series and detect intra-batch duplicates
	bySeries := make(map[domain.FeatureKey][]int64)
	seen := make(map[domain.FeatureKey]map[int64]struct{})
	for _, r := range rows {
		if r == nil || r.Symbol == "" || r.Timeframe == "" {
			return storage.ErrInvalidInput
		}
		key := r.Key()
		if seen[key] == nil {
			seen[key] = make(map[int64]struct{})
		}
		if _, exists := seen[key][r.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key][r.TimestampMs] = struct{}{}
		bySeries[key] = append(bySeries[key], r.TimestampMs)
	}

	for key, timestamps := range bySeries {
		exists, err := s.anyExists(ctx, key, timestamps)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO feature_rows (`+featureColumnsSQL+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.Symbol, r.Timeframe, int32(r.AggregationWindowMinutes), int32(r.LookbackWindowDays), r.TimestampMs,
			r.Open, r.High, r.Low, r.Close, r.Volume,
			r.LiqBuySize, r.LiqSellSize, r.LiqBuyAggregated, r.LiqSellAggregated,
			r.AvgLiqBuy, r.AvgLiqSell,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves rows of one series within [start, end), ordered by timestamp ASC.
func (s *FeatureStore) GetByTimeRange(ctx context.Context, key domain.FeatureKey, start, end int64) ([]*domain.FeatureRow, error) {
	query := `SELECT ` + featureColumnsSQL + `
		FROM feature_rows
		WHERE symbol = ? AND timeframe = ?
			AND aggregation_window_minutes = ? AND lookback_window_days = ?
			AND timestamp_ms >= ? AND timestamp_ms < ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query,
		key.Symbol, key.Timeframe,
		int32(key.AggregationWindowMinutes), int32(key.LookbackWindowDays),
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query feature rows: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// anyExists reports whether any of the timestamps is already stored for the series.
func (s *FeatureStore) anyExists(ctx context.Context, key domain.FeatureKey, timestamps []int64) (bool, error) {
	query := `
		SELECT count() FROM feature_rows
		WHERE symbol = ? AND timeframe = ?
			AND aggregation_window_minutes = ? AND lookback_window_days = ?
			AND timestamp_ms IN (?)
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query,
		key.Symbol, key.Timeframe,
		int32(key.AggregationWindowMinutes), int32(key.LookbackWindowDays),
		timestamps,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanFeatureRows(rows chRows) ([]*domain.FeatureRow, error) {
	var result []*domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		var aggMinutes, lookbackDays int32
		err := rows.Scan(
			&r.Symbol, &r.Timeframe, &aggMinutes, &lookbackDays, &r.TimestampMs,
			&r.Open, &r.High, &r.Low, &r.Close, &r.Volume,
			&r.LiqBuySize, &r.LiqSellSize, &r.LiqBuyAggregated, &r.LiqSellAggregated,
			&r.AvgLiqBuy, &r.AvgLiqSell,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		r.AggregationWindowMinutes = int(aggMinutes)
		r.LookbackWindowDays = int(lookbackDays)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}
