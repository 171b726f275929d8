package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

type memoryRepository struct {
	mu         sync.RWMutex
	principals map[common.Address]Principal
}

// NewMemoryRepository builds an in-memory principal store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{principals: make(map[common.Address]Principal)}
}

func (r *memoryRepository) Create(_ context.Context, p Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.principals[p.Address]; exists {
		return ErrExists
	}
	r.principals[p.Address] = p
	return nil
}

func (r *memoryRepository) FindByAddress(_ context.Context, addr common.Address) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.principals[addr]
	if !ok {
		return Principal{}, fmt.Errorf("principal %s: %w", addr.Hex(), apperrors.ErrNotFound)
	}
	return p, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.principals {
		if p.ID == id {
			return p, nil
		}
	}
	return Principal{}, fmt.Errorf("principal %s: %w", id, apperrors.ErrNotFound)
}

func (r *memoryRepository) UpdateTokenVersion(_ context.Context, id string, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for addr, p := range r.principals {
		if p.ID == id {
			p.TokenVersion = version
			r.principals[addr] = p
			return nil
		}
	}
	return fmt.Errorf("principal %s: %w", id, apperrors.ErrNotFound)
}
