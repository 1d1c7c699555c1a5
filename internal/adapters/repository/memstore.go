package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/mhusam/heartgrid/internal/domain/run"

	"github.com/mhusam/heartgrid/pkg/metrics"
)

// defaultCapacity bounds the history when no option is given.
const defaultCapacity = 20

// MemoryStore implements Store with a mutex-guarded map plus an
// insertion-order slice for eviction and newest-first listing.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	reports  map[string]*run.Report
	order    []string // oldest first
}

// NewMemoryStore creates a bounded in-memory report store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		capacity: defaultCapacity,
		reports:  make(map[string]*run.Report),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put records a report, evicting the oldest entry beyond capacity.
func (s *MemoryStore) Put(_ context.Context, report *run.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("%w: report must have an id", ErrBadReport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return fmt.Errorf("%w: id %s", ErrDuplicateID, report.ID)
	}

	s.reports[report.ID] = report
	s.order = append(s.order, report.ID)

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.reports, oldest)
	}

	metrics.UpdateReportsStored(len(s.order))
	return nil
}

// Get returns a stored report by id.
func (s *MemoryStore) Get(_ context.Context, id string) (*run.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return report, nil
}

// List returns summaries newest first.
func (s *MemoryStore) List(_ context.Context) []run.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]run.Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.reports[s.order[i]].Summarized())
	}
	return out
}

// Count returns the number of stored reports.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
