package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// LiquidationEventStore implements storage.LiquidationEventStore using PostgreSQL.
type LiquidationEventStore struct {
	pool *Pool
}

// NewLiquidationEventStore creates a new LiquidationEventStore.
func NewLiquidationEventStore(pool *Pool) *LiquidationEventStore {
	return &LiquidationEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LiquidationEventStore = (*LiquidationEventStore)(nil)

// InsertBulk adds multiple events atomically using COPY.
// Fails entire batch on duplicate (symbol, timestamp_ms, side).
func (s *LiquidationEventStore) InsertBulk(ctx context.Context, events []*domain.LiquidationEvent) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e == nil || e.Symbol == "" {
			return storage.ErrInvalidInput
		}
		if _, ok := domain.ParseLiquidationSide(string(e.Side)); !ok {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"liquidation_events"},
		[]string{"symbol", "timestamp_ms", "side", "size_usd"},
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			e := events[i]
			return []any{e.Symbol, e.TimestampMs, string(e.Side), e.SizeUSD}, nil
		}),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy liquidation events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves events within [start, end), ordered by (timestamp, side) ASC.
func (s *LiquidationEventStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) (_ []*domain.LiquidationEvent, err error) {
	defer observeQuery("liquidation_events_by_time_range", time.Now(), &err)

	query := `
		SELECT symbol, timestamp_ms, side, size_usd
		FROM liquidation_events
		WHERE symbol = $1 AND timestamp_ms >= $2 AND timestamp_ms < $3
		ORDER BY timestamp_ms ASC, side ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get liquidation events by time range: %w", err)
	}
	defer rows.Close()

	var events []*domain.LiquidationEvent
	for rows.Next() {
		var e domain.LiquidationEvent
		var side string
		if err := rows.Scan(&e.Symbol, &e.TimestampMs, &side, &e.SizeUSD); err != nil {
			return nil, fmt.Errorf("scan liquidation event row: %w", err)
		}
		e.Side = domain.LiquidationSide(side)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquidation event rows: %w", err)
	}

	return events, nil
}
