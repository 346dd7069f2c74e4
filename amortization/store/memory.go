// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/amortization-engine/amortization"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	runs []amortization.Run // ordered by CreatedAt
	byID map[amortization.RunID]int
}

func NewMemory() *Memory {
	return &Memory{
		byID: make(map[amortization.RunID]int),
	}
}

// Save adds a run. Append-only.
func (m *Memory) Save(_ context.Context, run amortization.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[run.ID]; ok {
		return amortization.ErrDuplicateRun
	}

	run.Periods = append([]amortization.Period(nil), run.Periods...)

	// Binary search for insertion point keeps List ordered without a sort
	i := sort.Search(len(m.runs), func(i int) bool {
		return m.runs[i].CreatedAt.After(run.CreatedAt)
	})
	m.runs = append(m.runs, amortization.Run{})
	copy(m.runs[i+1:], m.runs[i:])
	m.runs[i] = run

	m.reindexLocked()
	return nil
}

func (m *Memory) reindexLocked() {
	for i, r := range m.runs {
		m.byID[r.ID] = i
	}
}

func (m *Memory) Load(_ context.Context, id amortization.RunID) (amortization.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return amortization.Run{}, amortization.ErrRunNotFound
	}
	run := m.runs[i]
	run.Periods = append([]amortization.Period(nil), run.Periods...)
	return run, nil
}

func (m *Memory) List(_ context.Context) ([]amortization.RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]amortization.RunSummary, len(m.runs))
	for i, run := range m.runs {
		result[i] = run.Summary()
	}
	return result, nil
}
