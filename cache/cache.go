// Package cache maps loan terms to previously stored amortization runs.
//
// A schedule is a pure function of its terms and the period budget, so the
// API maps that key to the ID of a stored run and serves repeats from the store.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/amortization-engine/amortization"
)

// Cache is a string key/value cache. A miss is ("", false), never an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Key is the canonical cache key for terms amortized under maxPeriods.
func Key(t amortization.Terms, maxPeriods int) string {
	return fmt.Sprintf("amortization:v1:%s:%s:%s:%s:%s:%d",
		t.Principal.String(),
		t.InterestRate.String(),
		t.PaymentPeriod,
		t.PaymentPerPeriod.String(),
		t.OriginationDate,
		maxPeriods,
	)
}

// =============================================================================
// MEMORY CACHE
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Len is the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
