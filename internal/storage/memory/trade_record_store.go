package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// TradeRecordStore is an in-memory implementation of storage.TradeRecordStore.
// Trades are indexed by id and by run; each run's slice stays sorted by
// (entry_time, trade_id).
type TradeRecordStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.TradeRecord
	byRun map[string][]*domain.TradeRecord
}

// NewTradeRecordStore creates an empty store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{
		byID:  make(map[string]*domain.TradeRecord),
		byRun: make(map[string][]*domain.TradeRecord),
	}
}

// Insert stores one trade.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	return s.InsertBulk(ctx, []*domain.TradeRecord{t})
}

// InsertBulk stores trades all-or-nothing. Any id already stored or repeated
// within the batch rejects the whole batch with storage.ErrDuplicateKey.
func (s *TradeRecordStore) InsertBulk(_ context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, ok := s.byID[t.TradeID]; ok || seen[t.TradeID] {
			return storage.ErrDuplicateKey
		}
		seen[t.TradeID] = true
	}

	touched := make(map[string]bool)
	for _, t := range trades {
		cp := *t
		s.byID[cp.TradeID] = &cp
		s.byRun[cp.RunID] = append(s.byRun[cp.RunID], &cp)
		touched[cp.RunID] = true
	}
	for runID := range touched {
		slices.SortFunc(s.byRun[runID], compareTrades)
	}
	return nil
}

// GetByID returns storage.ErrNotFound for unknown ids.
func (s *TradeRecordStore) GetByID(_ context.Context, tradeID string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[tradeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// GetByRun returns copies of every trade of runID.
func (s *TradeRecordStore) GetByRun(_ context.Context, runID string) ([]*domain.TradeRecord, error) {
	return s.collect(runID, func(*domain.TradeRecord) bool { return true }), nil
}

// GetByRunStrategy returns copies of the trades of one symbol/strategy in runID.
func (s *TradeRecordStore) GetByRunStrategy(_ context.Context, runID, symbol, strategyID string) ([]*domain.TradeRecord, error) {
	return s.collect(runID, func(t *domain.TradeRecord) bool {
		return t.Symbol == symbol && t.StrategyID == strategyID
	}), nil
}

func (s *TradeRecordStore) collect(runID string, keep func(*domain.TradeRecord) bool) []*domain.TradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TradeRecord
	for _, t := range s.byRun[runID] {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

func compareTrades(a, b *domain.TradeRecord) int {
	if c := cmp.Compare(a.EntryTime, b.EntryTime); c != 0 {
		return c
	}
	return cmp.Compare(a.TradeID, b.TradeID)
}

var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)
