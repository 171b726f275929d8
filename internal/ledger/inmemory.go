package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Posting is one balanced journal row: Amount leaves From and enters To.
type Posting struct {
	ID         string
	Kind       string
	ClientTxID string
	From       string
	To         string
	Amount     int64
}

// MemoryLedger keeps an append-only journal of postings next to the
// running account balances derived from it.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]int64
	journal  []Posting
	byKey    map[string]int
}

// NewInMemory creates a concurrency-safe ledger for development and tests.
func NewInMemory() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]int64),
		byKey:    make(map[string]int),
	}
}

func (l *MemoryLedger) EnsureAccount(_ context.Context, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[code]; !ok {
		l.balances[code] = 0
	}
	return nil
}

func (l *MemoryLedger) Balance(_ context.Context, code string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[code], nil
}

func (l *MemoryLedger) Transfer(_ context.Context, fromCode, toCode, kind, clientTxID string, amount int64) (TransactionResult, error) {
	if amount <= 0 {
		return TransactionResult{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, code := range []string{fromCode, toCode} {
		if _, ok := l.balances[code]; !ok {
			return TransactionResult{}, fmt.Errorf("account %s: %w", code, ErrUnknownAccount)
		}
	}

	key := kind + ":" + clientTxID
	if i, dup := l.byKey[key]; dup {
		p := l.journal[i]
		return TransactionResult{
			TransactionID: p.ID,
			FromBalance:   l.balances[p.From],
			ToBalance:     l.balances[p.To],
		}, ErrDuplicateTransaction
	}

	if l.balances[fromCode] < amount && !overdraftAllowed(fromCode) {
		return TransactionResult{}, ErrInsufficientFunds
	}
	if !fits(l.balances[fromCode], l.balances[toCode], amount) {
		return TransactionResult{}, ErrBalanceOverflow
	}

	p := Posting{
		ID:         uuid.NewString(),
		Kind:       kind,
		ClientTxID: clientTxID,
		From:       fromCode,
		To:         toCode,
		Amount:     amount,
	}
	l.byKey[key] = len(l.journal)
	l.journal = append(l.journal, p)
	l.balances[fromCode] -= amount
	l.balances[toCode] += amount

	return TransactionResult{
		TransactionID: p.ID,
		FromBalance:   l.balances[fromCode],
		ToBalance:     l.balances[toCode],
	}, nil
}

// Journal returns a copy of every posting in the order it was recorded.
func (l *MemoryLedger) Journal() []Posting {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.journal)
}
