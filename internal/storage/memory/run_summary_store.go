package memory

import (
	"context"
	"sort"
	"sync"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// summaryKey is the unique key for run summaries.
type summaryKey struct {
	runID        string
	symbol       string
	strategyType string
	mode         string
	targetMetric string
}

// RunSummaryStore is an in-memory implementation of storage.RunSummaryStore.
type RunSummaryStore struct {
	mu   sync.RWMutex
	data map[summaryKey]*domain.RunSummary
}

// NewRunSummaryStore creates a new in-memory run summary store.
func NewRunSummaryStore() *RunSummaryStore {
	return &RunSummaryStore{
		data: make(map[summaryKey]*domain.RunSummary),
	}
}

// Insert adds a summary. Returns ErrDuplicateKey if the key exists.
func (s *RunSummaryStore) Insert(_ context.Context, rs *domain.RunSummary) error {
	if rs == nil || rs.RunID == "" || rs.Symbol == "" {
		return storage.ErrInvalidInput
	}

	key := summaryKey{
		runID:        rs.RunID,
		symbol:       rs.Symbol,
		strategyType: rs.StrategyType,
		mode:         rs.Mode,
		targetMetric: rs.TargetMetric,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *rs
	s.data[key] = &cp
	return nil
}

// GetByRun retrieves all summaries of a run, ordered by key ASC.
func (s *RunSummaryStore) GetByRun(_ context.Context, runID string) ([]*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunSummary
	for k, rs := range s.data {
		if k.runID == runID {
			cp := *rs
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.StrategyType != b.StrategyType {
			return a.StrategyType < b.StrategyType
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		return a.TargetMetric < b.TargetMetric
	})

	return result, nil
}

var _ storage.RunSummaryStore = (*RunSummaryStore)(nil)
