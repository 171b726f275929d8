package storage

import (
	"context"
	"sync"
)

// MemoryTransactor serialises units with a process-wide lock. Memory
// repositories never fail once a call has passed validation, so the
// lock alone is enough to keep a failing call from leaving partial
// writes behind: every operation validates before its first write.
type MemoryTransactor struct {
	mu sync.RWMutex
}

// NewMemoryTransactor returns a transactor for the in-memory backends.
func NewMemoryTransactor() *MemoryTransactor {
	return &MemoryTransactor{}
}

// Atomic implements Transactor.
func (m *MemoryTransactor) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if u, ok := unitFrom(ctx); ok {
		if u.mode != modeWrite {
			return ErrReadOnly
		}
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(withUnit(ctx, unit{mode: modeWrite}))
}

// View implements Transactor.
func (m *MemoryTransactor) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if InUnit(ctx) {
		return fn(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(withUnit(ctx, unit{mode: modeRead}))
}
