package multisig

import (
	"context"
	"fmt"
	"sync"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

type memoryRepository struct {
	mu     sync.RWMutex
	groups []Group
}

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, group Group) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group = group.Clone()
	group.ID = uint64(len(r.groups))
	r.groups = append(r.groups, group)
	return group.ID, nil
}

func (r *memoryRepository) Get(_ context.Context, id uint64) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= uint64(len(r.groups)) {
		return Group{}, fmt.Errorf("approval group %d: %w", id, apperrors.ErrNotFound)
	}
	return r.groups[id].Clone(), nil
}

func (r *memoryRepository) Update(_ context.Context, group Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.ID >= uint64(len(r.groups)) {
		return fmt.Errorf("approval group %d: %w", group.ID, apperrors.ErrNotFound)
	}
	r.groups[group.ID] = group.Clone()
	return nil
}
