package wallet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
	"github.com/congo-pay/quorum_wallet/internal/event"
	"github.com/congo-pay/quorum_wallet/internal/ledger"
	"github.com/congo-pay/quorum_wallet/internal/metrics"
	"github.com/congo-pay/quorum_wallet/internal/multisig"
	"github.com/congo-pay/quorum_wallet/internal/storage"
)

const component = "wallet"

// Service exposes wallet operations backed by the approval registry and
// the custody ledger.
type Service struct {
	repo    Repository
	groups  *multisig.Registry
	ledger  ledger.Ledger
	tx      storage.Transactor
	events  event.Log
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService builds a wallet service instance. m may be nil.
func NewService(repo Repository, groups *multisig.Registry, l ledger.Ledger, tx storage.Transactor, events event.Log, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		groups:  groups,
		ledger:  l,
		tx:      tx,
		events:  events,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateWallet registers a wallet with a fixed quorum and signer list.
// More than multisig.MaxSigners signers fails with ErrInput.
func (s *Service) CreateWallet(ctx context.Context, caller common.Address, quorum uint64, signers []common.Address) (wallet Wallet, events []event.Event, err error) {
	defer func(start time.Time) { s.metrics.Observe(component, "create_wallet", start, err) }(time.Now())

	if quorum == 0 {
		return Wallet{}, nil, fmt.Errorf("quorum must be positive: %w", apperrors.ErrInput)
	}
	if len(signers) > multisig.MaxSigners {
		return Wallet{}, nil, fmt.Errorf("%d signers exceeds limit of %d: %w", len(signers), multisig.MaxSigners, apperrors.ErrInput)
	}

	err = s.tx.Atomic(ctx, func(ctx context.Context) error {
		if err := s.ledger.EnsureAccount(ctx, ledger.CustodyAccountCode); err != nil {
			return err
		}
		wallet = Wallet{
			Creator:   caller,
			Quorum:    quorum,
			Signers:   slices.Clone(signers),
			CreatedAt: s.now(),
		}
		id, err := s.repo.CreateWallet(ctx, wallet)
		if err != nil {
			return fmt.Errorf("store wallet: %w", err)
		}
		wallet.ID = id
		events = []event.Event{event.WalletCreated{
			WalletID: id,
			Creator:  caller,
			Quorum:   quorum,
			Signers:  slices.Clone(signers),
		}}
		_, err = s.events.Append(ctx, events...)
		return err
	})
	if err != nil {
		return Wallet{}, nil, err
	}
	return wallet, events, nil
}

// Deposit credits amount to the wallet. Anyone may deposit and a zero
// amount is accepted. clientTxID, scoped to the caller and the wallet,
// keys the ledger posting; an empty value gets a fresh one. A deposit
// that would push the balance past math.MaxInt64 fails with ErrInput.
func (s *Service) Deposit(ctx context.Context, caller common.Address, walletID uint64, amount int64, clientTxID string) (wallet Wallet, events []event.Event, err error) {
	defer func(start time.Time) { s.metrics.Observe(component, "deposit", start, err) }(time.Now())

	if amount < 0 {
		return Wallet{}, nil, fmt.Errorf("deposit of %d: %w", amount, apperrors.ErrInput)
	}
	if clientTxID == "" {
		clientTxID = uuid.NewString()
	} else {
		clientTxID = depositTxID(caller, walletID, clientTxID)
	}

	err = s.tx.Atomic(ctx, func(ctx context.Context) error {
		var err error
		wallet, err = s.repo.GetWallet(ctx, walletID)
		if err != nil {
			return err
		}
		if amount > math.MaxInt64-wallet.Balance {
			return fmt.Errorf("deposit of %d overflows balance %d: %w", amount, wallet.Balance, apperrors.ErrInput)
		}
		if amount > 0 {
			if err := s.post(ctx, ledger.ExternalAccountCode(caller), ledger.CustodyAccountCode, ledger.KindDeposit, clientTxID, amount); err != nil {
				return err
			}
		}
		wallet.Balance += amount
		if err := s.repo.UpdateBalance(ctx, walletID, wallet.Balance); err != nil {
			return err
		}
		events = []event.Event{event.WalletDeposited{WalletID: walletID, Sender: caller, Amount: amount}}
		_, err = s.events.Append(ctx, events...)
		return err
	})
	if err != nil {
		return Wallet{}, nil, err
	}
	return wallet, events, nil
}

// ProposeWithdrawal opens a pending withdrawal of amount to the address
// to, together with the approval group the wallet's signers sign. The
// balance is not checked until execution.
func (s *Service) ProposeWithdrawal(ctx context.Context, caller common.Address, walletID uint64, to common.Address, amount int64) (wd Withdrawal, events []event.Event, err error) {
	defer func(start time.Time) { s.metrics.Observe(component, "propose_withdrawal", start, err) }(time.Now())

	err = s.tx.Atomic(ctx, func(ctx context.Context) error {
		w, err := s.repo.GetWallet(ctx, walletID)
		if err != nil {
			return err
		}
		if !w.IsSigner(caller) {
			return fmt.Errorf("%s is not a signer of wallet %d: %w", caller.Hex(), walletID, apperrors.ErrUnauthorized)
		}
		if amount <= 0 {
			return fmt.Errorf("withdrawal of %d: %w", amount, apperrors.ErrInput)
		}

		groupID, groupEvents, err := s.groups.CreateGroup(ctx, w.Quorum, w.Signers)
		if err != nil {
			return err
		}
		now := s.now()
		wd = Withdrawal{
			WalletID:        walletID,
			Creator:         caller,
			To:              to,
			ApprovalGroupID: groupID,
			Amount:          amount,
			Status:          StatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		wd.ID, err = s.repo.CreateWithdrawal(ctx, wd)
		if err != nil {
			return fmt.Errorf("store withdrawal: %w", err)
		}
		proposed := event.WithdrawalProposed{
			WalletID:        walletID,
			Creator:         caller,
			To:              to,
			ApprovalGroupID: groupID,
			Amount:          amount,
		}
		events = append(groupEvents, proposed)
		_, err = s.events.Append(ctx, proposed)
		return err
	})
	if err != nil {
		return Withdrawal{}, nil, err
	}
	return wd, events, nil
}

// CancelWithdrawal moves a pending withdrawal to Canceled. Only its
// creator may cancel it.
func (s *Service) CancelWithdrawal(ctx context.Context, caller common.Address, withdrawalID uint64) (wd Withdrawal, events []event.Event, err error) {
	defer func(start time.Time) { s.metrics.Observe(component, "cancel_withdrawal", start, err) }(time.Now())

	err = s.tx.Atomic(ctx, func(ctx context.Context) error {
		var err error
		wd, err = s.repo.GetWithdrawal(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if wd.Creator != caller {
			return fmt.Errorf("%s did not propose withdrawal %d: %w", caller.Hex(), withdrawalID, apperrors.ErrUnauthorized)
		}
		if wd.Status != StatusPending {
			return fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, wd.Status, apperrors.ErrInvalidState)
		}

		wd.Status = StatusCanceled
		wd.UpdatedAt = s.now()
		if err := s.repo.UpdateWithdrawalStatus(ctx, withdrawalID, wd.Status, wd.UpdatedAt); err != nil {
			return err
		}
		events = []event.Event{event.WithdrawalCanceled{WithdrawalID: withdrawalID, Sender: caller}}
		_, err = s.events.Append(ctx, events...)
		return err
	})
	if err != nil {
		return Withdrawal{}, nil, err
	}
	return wd, events, nil
}

// ExecuteWithdrawal pays out a pending withdrawal whose approval group is
// complete. Any caller may execute.
func (s *Service) ExecuteWithdrawal(ctx context.Context, caller common.Address, withdrawalID uint64) (wd Withdrawal, events []event.Event, err error) {
	defer func(start time.Time) { s.metrics.Observe(component, "execute_withdrawal", start, err) }(time.Now())

	err = s.tx.Atomic(ctx, func(ctx context.Context) error {
		var err error
		wd, err = s.repo.GetWithdrawal(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if wd.Status != StatusPending {
			return fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, wd.Status, apperrors.ErrInvalidState)
		}
		complete, err := s.groups.IsComplete(ctx, wd.ApprovalGroupID)
		if err != nil {
			return err
		}
		if !complete {
			return fmt.Errorf("approval group %d: %w", wd.ApprovalGroupID, apperrors.ErrQuorumNotMet)
		}
		w, err := s.repo.GetWallet(ctx, wd.WalletID)
		if err != nil {
			return err
		}
		if w.Balance < wd.Amount {
			return fmt.Errorf("wallet %d holds %d, withdrawal %d needs %d: %w",
				w.ID, w.Balance, withdrawalID, wd.Amount, apperrors.ErrInsufficientBalance)
		}

		dest := ledger.AccountCode(wd.To)
		if err := s.ledger.EnsureAccount(ctx, dest); err != nil {
			return err
		}
		if err := s.post(ctx, ledger.CustodyAccountCode, dest, ledger.KindWithdrawal, strconv.FormatUint(withdrawalID, 10), wd.Amount); err != nil {
			return err
		}
		if err := s.repo.UpdateBalance(ctx, w.ID, w.Balance-wd.Amount); err != nil {
			return err
		}
		wd.Status = StatusExecuted
		wd.UpdatedAt = s.now()
		if err := s.repo.UpdateWithdrawalStatus(ctx, withdrawalID, wd.Status, wd.UpdatedAt); err != nil {
			return err
		}
		events = []event.Event{event.WithdrawalExecuted{
			WithdrawalID: withdrawalID,
			Sender:       caller,
			To:           wd.To,
			Amount:       wd.Amount,
		}}
		_, err = s.events.Append(ctx, events...)
		return err
	})
	if err != nil {
		return Withdrawal{}, nil, err
	}
	return wd, events, nil
}

// depositTxID scopes a client supplied key the same way the idempotency
// middleware does, so distinct callers or wallets never collide.
func depositTxID(caller common.Address, walletID uint64, key string) string {
	return strings.ToLower(caller.Hex()) + ":" + strconv.FormatUint(walletID, 10) + ":" + key
}

// post moves amount between two ledger accounts, translating ledger
// failures into the shared taxonomy.
func (s *Service) post(ctx context.Context, from, to, kind, clientTxID string, amount int64) error {
	if err := s.ledger.EnsureAccount(ctx, from); err != nil {
		return err
	}
	_, err := s.ledger.Transfer(ctx, from, to, kind, clientTxID, amount)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrDuplicateTransaction):
		return fmt.Errorf("%s %s: %w: %w", kind, clientTxID, apperrors.ErrInvalidState, err)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fmt.Errorf("%s %s: %w: %w", kind, clientTxID, apperrors.ErrInsufficientBalance, err)
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return fmt.Errorf("%s %s: %w: %w", kind, clientTxID, apperrors.ErrInput, err)
	default:
		return fmt.Errorf("ledger %s: %w", kind, err)
	}
}

// Wallet returns a snapshot of wallet id.
func (s *Service) Wallet(ctx context.Context, id uint64) (Wallet, error) {
	var w Wallet
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		w, err = s.repo.GetWallet(ctx, id)
		return err
	})
	return w, err
}

// Withdrawal returns a snapshot of withdrawal id.
func (s *Service) Withdrawal(ctx context.Context, id uint64) (Withdrawal, error) {
	var wd Withdrawal
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		wd, err = s.repo.GetWithdrawal(ctx, id)
		return err
	})
	return wd, err
}

// WalletsBySigner lists the wallets signer may propose withdrawals on.
func (s *Service) WalletsBySigner(ctx context.Context, signer common.Address) ([]Wallet, error) {
	var wallets []Wallet
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		wallets, err = s.repo.WalletsBySigner(ctx, signer)
		return err
	})
	return wallets, err
}

// WithdrawalsByWallet lists the withdrawals of wallet id in proposal order.
func (s *Service) WithdrawalsByWallet(ctx context.Context, walletID uint64) ([]Withdrawal, error) {
	var withdrawals []Withdrawal
	err := s.tx.View(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetWallet(ctx, walletID); err != nil {
			return err
		}
		var err error
		withdrawals, err = s.repo.WithdrawalsByWallet(ctx, walletID)
		return err
	})
	return withdrawals, err
}

// AccountBalance returns what withdrawals have paid out to addr.
func (s *Service) AccountBalance(ctx context.Context, addr common.Address) (int64, error) {
	var amount int64
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		amount, err = s.ledger.Balance(ctx, ledger.AccountCode(addr))
		return err
	})
	return amount, err
}

// CustodyBalance returns the ledger balance of the custody account, which
// equals the sum of all wallet balances.
func (s *Service) CustodyBalance(ctx context.Context) (int64, error) {
	var amount int64
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		amount, err = s.ledger.Balance(ctx, ledger.CustodyAccountCode)
		return err
	})
	return amount, err
}
