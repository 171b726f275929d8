package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
	"github.com/congo-pay/quorum_wallet/internal/storage"
)

// Repository persists wallets and withdrawals. Ids are dense and
// assigned in insertion order.
type Repository interface {
	CreateWallet(ctx context.Context, wallet Wallet) (uint64, error)
	GetWallet(ctx context.Context, id uint64) (Wallet, error)
	UpdateBalance(ctx context.Context, id uint64, balance int64) error
	WalletsBySigner(ctx context.Context, signer common.Address) ([]Wallet, error)

	CreateWithdrawal(ctx context.Context, withdrawal Withdrawal) (uint64, error)
	GetWithdrawal(ctx context.Context, id uint64) (Withdrawal, error)
	UpdateWithdrawalStatus(ctx context.Context, id uint64, status Status, at time.Time) error
	WithdrawalsByWallet(ctx context.Context, walletID uint64) ([]Withdrawal, error)
}

// PostgresRepository stores wallets and withdrawals in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateWallet inserts a wallet record under the next free id.
func (r *PostgresRepository) CreateWallet(ctx context.Context, wallet Wallet) (uint64, error) {
	q := storage.Conn(ctx, r.db)
	var next int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&next); err != nil {
		return 0, err
	}
	_, err := q.Exec(ctx, `INSERT INTO wallets (id, creator, quorum, signers, balance, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		next, wallet.Creator.Bytes(), int64(wallet.Quorum), storage.AddressesToBytes(wallet.Signers),
		wallet.Balance, wallet.CreatedAt.UTC())
	if err != nil {
		return 0, err
	}
	return uint64(next), nil
}

// GetWallet fetches a wallet by id.
func (r *PostgresRepository) GetWallet(ctx context.Context, id uint64) (Wallet, error) {
	row := storage.Conn(ctx, r.db).QueryRow(ctx, `SELECT id, creator, quorum, signers, balance, created_at
        FROM wallets WHERE id = $1`, int64(id))
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, fmt.Errorf("wallet %d: %w", id, apperrors.ErrNotFound)
	}
	return w, err
}

// UpdateBalance overwrites the balance of a wallet.
func (r *PostgresRepository) UpdateBalance(ctx context.Context, id uint64, balance int64) error {
	cmd, err := storage.Conn(ctx, r.db).Exec(ctx, `UPDATE wallets SET balance = $1 WHERE id = $2`, balance, int64(id))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("wallet %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// WalletsBySigner lists the wallets whose signer list contains signer.
func (r *PostgresRepository) WalletsBySigner(ctx context.Context, signer common.Address) ([]Wallet, error) {
	rows, err := storage.Conn(ctx, r.db).Query(ctx, `SELECT id, creator, quorum, signers, balance, created_at
        FROM wallets WHERE $1 = ANY(signers) ORDER BY id`, signer.Bytes())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Wallet, error) {
		return scanWallet(row)
	})
}

// CreateWithdrawal inserts a withdrawal under the next free id.
func (r *PostgresRepository) CreateWithdrawal(ctx context.Context, wd Withdrawal) (uint64, error) {
	q := storage.Conn(ctx, r.db)
	var next int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawals`).Scan(&next); err != nil {
		return 0, err
	}
	_, err := q.Exec(ctx, `INSERT INTO withdrawals (id, wallet_id, creator, recipient, approval_group_id, amount, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		next, int64(wd.WalletID), wd.Creator.Bytes(), wd.To.Bytes(), int64(wd.ApprovalGroupID),
		wd.Amount, string(wd.Status), wd.CreatedAt.UTC(), wd.UpdatedAt.UTC())
	if err != nil {
		return 0, err
	}
	return uint64(next), nil
}

// GetWithdrawal fetches a withdrawal by id.
func (r *PostgresRepository) GetWithdrawal(ctx context.Context, id uint64) (Withdrawal, error) {
	row := storage.Conn(ctx, r.db).QueryRow(ctx, `SELECT id, wallet_id, creator, recipient, approval_group_id, amount, status, created_at, updated_at
        FROM withdrawals WHERE id = $1`, int64(id))
	wd, err := scanWithdrawal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Withdrawal{}, fmt.Errorf("withdrawal %d: %w", id, apperrors.ErrNotFound)
	}
	return wd, err
}

// UpdateWithdrawalStatus moves a withdrawal to status.
func (r *PostgresRepository) UpdateWithdrawalStatus(ctx context.Context, id uint64, status Status, at time.Time) error {
	cmd, err := storage.Conn(ctx, r.db).Exec(ctx, `UPDATE withdrawals SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), at.UTC(), int64(id))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// WithdrawalsByWallet lists the withdrawals proposed against a wallet.
func (r *PostgresRepository) WithdrawalsByWallet(ctx context.Context, walletID uint64) ([]Withdrawal, error) {
	rows, err := storage.Conn(ctx, r.db).Query(ctx, `SELECT id, wallet_id, creator, recipient, approval_group_id, amount, status, created_at, updated_at
        FROM withdrawals WHERE wallet_id = $1 ORDER BY id`, int64(walletID))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Withdrawal, error) {
		return scanWithdrawal(row)
	})
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w          Wallet
		id, quorum int64
		creator    []byte
		signers    [][]byte
		createdAt  time.Time
	)
	if err := row.Scan(&id, &creator, &quorum, &signers, &w.Balance, &createdAt); err != nil {
		return Wallet{}, err
	}
	w.ID = uint64(id)
	w.Creator = common.BytesToAddress(creator)
	w.Quorum = uint64(quorum)
	w.Signers = storage.BytesToAddresses(signers)
	w.CreatedAt = createdAt.UTC()
	return w, nil
}

func scanWithdrawal(row pgx.Row) (Withdrawal, error) {
	var (
		wd                    Withdrawal
		id, walletID, groupID int64
		creator, to           []byte
		status                string
		createdAt, updatedAt  time.Time
	)
	if err := row.Scan(&id, &walletID, &creator, &to, &groupID, &wd.Amount, &status, &createdAt, &updatedAt); err != nil {
		return Withdrawal{}, err
	}
	wd.ID = uint64(id)
	wd.WalletID = uint64(walletID)
	wd.Creator = common.BytesToAddress(creator)
	wd.To = common.BytesToAddress(to)
	wd.ApprovalGroupID = uint64(groupID)
	wd.Status = Status(status)
	wd.CreatedAt = createdAt.UTC()
	wd.UpdatedAt = updatedAt.UTC()
	return wd, nil
}
