package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

type memoryRepository struct {
	mu          sync.RWMutex
	wallets     []Wallet
	withdrawals []Withdrawal
}

// NewMemoryRepository constructs an in-memory repository for tests and
// database-less runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) CreateWallet(_ context.Context, wallet Wallet) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet.ID = uint64(len(r.wallets))
	r.wallets = append(r.wallets, wallet.clone())
	return wallet.ID, nil
}

func (r *memoryRepository) GetWallet(_ context.Context, id uint64) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= uint64(len(r.wallets)) {
		return Wallet{}, fmt.Errorf("wallet %d: %w", id, apperrors.ErrNotFound)
	}
	return r.wallets[id].clone(), nil
}

func (r *memoryRepository) UpdateBalance(_ context.Context, id uint64, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id >= uint64(len(r.wallets)) {
		return fmt.Errorf("wallet %d: %w", id, apperrors.ErrNotFound)
	}
	r.wallets[id].Balance = balance
	return nil
}

func (r *memoryRepository) WalletsBySigner(_ context.Context, signer common.Address) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Wallet
	for _, w := range r.wallets {
		if w.IsSigner(signer) {
			out = append(out, w.clone())
		}
	}
	return out, nil
}

func (r *memoryRepository) CreateWithdrawal(_ context.Context, wd Withdrawal) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wd.ID = uint64(len(r.withdrawals))
	r.withdrawals = append(r.withdrawals, wd)
	return wd.ID, nil
}

func (r *memoryRepository) GetWithdrawal(_ context.Context, id uint64) (Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= uint64(len(r.withdrawals)) {
		return Withdrawal{}, fmt.Errorf("withdrawal %d: %w", id, apperrors.ErrNotFound)
	}
	return r.withdrawals[id], nil
}

func (r *memoryRepository) UpdateWithdrawalStatus(_ context.Context, id uint64, status Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id >= uint64(len(r.withdrawals)) {
		return fmt.Errorf("withdrawal %d: %w", id, apperrors.ErrNotFound)
	}
	r.withdrawals[id].Status = status
	r.withdrawals[id].UpdatedAt = at
	return nil
}

func (r *memoryRepository) WithdrawalsByWallet(_ context.Context, walletID uint64) ([]Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Withdrawal
	for _, wd := range r.withdrawals {
		if wd.WalletID == walletID {
			out = append(out, wd)
		}
	}
	return out, nil
}
