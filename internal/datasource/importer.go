package datasource

import (
	"context"
	"fmt"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// DefaultBatchSize bounds rows per InsertBulk call.
const DefaultBatchSize = 5000

// Importer writes raw market data into stores in batches.
type Importer struct {
	candleStore storage.CandleStore
	eventStore  storage.LiquidationEventStore
	batchSize   int
}

// NewImporter creates an Importer. batchSize <= 0 uses DefaultBatchSize.
func NewImporter(candleStore storage.CandleStore, eventStore storage.LiquidationEventStore, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		candleStore: candleStore,
		eventStore:  eventStore,
		batchSize:   batchSize,
	}
}

// ImportCandles inserts candles. Each batch is atomic; a failing batch
// stops the import and earlier batches stay committed.
func (im *Importer) ImportCandles(ctx context.Context, candles []*domain.Candle) (int, error) {
	n := 0
	for start := 0; start < len(candles); start += im.batchSize {
		end := min(start+im.batchSize, len(candles))
		if err := im.candleStore.InsertBulk(ctx, candles[start:end]); err != nil {
			return n, fmt.Errorf("insert candles [%d, %d): %w", start, end, err)
		}
		n = end
	}
	return n, nil
}

// ImportEvents inserts liquidation events with the same batching as ImportCandles.
func (im *Importer) ImportEvents(ctx context.Context, events []*domain.LiquidationEvent) (int, error) {
	n := 0
	for start := 0; start < len(events); start += im.batchSize {
		end := min(start+im.batchSize, len(events))
		if err := im.eventStore.InsertBulk(ctx, events[start:end]); err != nil {
			return n, fmt.Errorf("insert liquidation events [%d, %d): %w", start, end, err)
		}
		n = end
	}
	return n, nil
}

// ImportFixtures inserts both halves of f.
func (im *Importer) ImportFixtures(ctx context.Context, f *Fixtures) error {
	if _, err := im.ImportCandles(ctx, f.Candles); err != nil {
		return err
	}
	if _, err := im.ImportEvents(ctx, f.Events); err != nil {
		return err
	}
	return nil
}
