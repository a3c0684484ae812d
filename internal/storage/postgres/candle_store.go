package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// CandleStore implements storage.CandleStore using PostgreSQL.
type CandleStore struct {
	pool *Pool
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(pool *Pool) *CandleStore {
	return &CandleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

var candleColumns = []string{
	"symbol", "timeframe", "timestamp_ms", "open", "high", "low", "close", "volume",
}

// InsertBulk adds multiple candles atomically using COPY.
// Fails entire batch on duplicate (symbol, timeframe, timestamp_ms).
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	for _, c := range candles {
		if c == nil || c.Symbol == "" || c.Timeframe == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"candles"}, candleColumns,
		pgx.CopyFromSlice(len(candles), func(i int) ([]any, error) {
			c := candles[i]
			return []any{c.Symbol, c.Timeframe, c.TimestampMs, c.Open, c.High, c.Low, c.Close, c.Volume}, nil
		}),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy candles: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves candles within [start, end), ordered by timestamp ASC.
func (s *CandleStore) GetByTimeRange(ctx context.Context, symbol, timeframe string, start, end int64) (_ []*domain.Candle, err error) {
	defer observeQuery("candles_by_time_range", time.Now(), &err)

	query := `
		SELECT symbol, timeframe, timestamp_ms, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND timeframe = $2 AND timestamp_ms >= $3 AND timestamp_ms < $4
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("get candles by time range: %w", err)
	}
	defer rows.Close()

	var candles []*domain.Candle
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(&c.Symbol, &c.Timeframe, &c.TimestampMs, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}
		candles = append(candles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}
