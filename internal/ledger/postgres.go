package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/quorum_wallet/internal/storage"
)

// PostgresLedger persists postings in the accounts, transactions and
// entries tables. Inside a storage unit it posts through a savepoint of
// the unit's transaction, so a failed posting never aborts the unit.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) EnsureAccount(ctx context.Context, code string) error {
	_, err := storage.Conn(ctx, l.db).Exec(ctx,
		`INSERT INTO accounts (id, code) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
		uuid.New(), code)
	return err
}

func (l *PostgresLedger) Balance(ctx context.Context, code string) (int64, error) {
	const query = `
SELECT COALESCE(SUM(e.amount), 0)
FROM entries e
JOIN accounts a ON a.id = e.account_id
WHERE a.code = $1`
	var balance int64
	err := storage.Conn(ctx, l.db).QueryRow(ctx, query, code).Scan(&balance)
	return balance, err
}

func (l *PostgresLedger) Transfer(ctx context.Context, fromCode, toCode, kind, clientTxID string, amount int64) (TransactionResult, error) {
	if amount <= 0 {
		return TransactionResult{}, ErrInvalidAmount
	}

	var (
		res    TransactionResult
		outErr error
	)
	err := pgx.BeginFunc(ctx, storage.Conn(ctx, l.db), func(tx pgx.Tx) error {
		accounts, err := lockAccounts(ctx, tx, fromCode, toCode)
		if err != nil {
			return err
		}
		from, to := accounts[fromCode], accounts[toCode]

		var existing uuid.UUID
		err = tx.QueryRow(ctx, `SELECT id FROM transactions WHERE kind = $1 AND client_tx_id = $2`,
			kind, clientTxID).Scan(&existing)
		switch {
		case err == nil:
			res.TransactionID = existing.String()
			res.FromBalance, res.ToBalance, err = balances(ctx, tx, from, to)
			if err != nil {
				return err
			}
			// Report the duplicate without rolling back the savepoint.
			outErr = ErrDuplicateTransaction
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}

		fromBalance, toBalance, err := balances(ctx, tx, from, to)
		if err != nil {
			return err
		}
		if fromBalance < amount && !overdraftAllowed(fromCode) {
			return ErrInsufficientFunds
		}
		if !fits(fromBalance, toBalance, amount) {
			return ErrBalanceOverflow
		}

		txID := uuid.New()
		if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, client_tx_id, kind) VALUES ($1, $2, $3)`,
			txID, clientTxID, kind); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO entries (id, transaction_id, account_id, amount)
VALUES ($1, $3, $4, $6), ($2, $3, $5, $7)`,
			uuid.New(), uuid.New(), txID, from, to, -amount, amount); err != nil {
			return err
		}

		res = TransactionResult{
			TransactionID: txID.String(),
			FromBalance:   fromBalance - amount,
			ToBalance:     toBalance + amount,
		}
		return nil
	})
	if err != nil {
		return TransactionResult{}, err
	}
	return res, outErr
}

// lockAccounts resolves both codes to ids, taking row locks in code order
// so concurrent postings between the same pair cannot deadlock.
func lockAccounts(ctx context.Context, tx pgx.Tx, codes ...string) (map[string]uuid.UUID, error) {
	rows, err := tx.Query(ctx,
		`SELECT code, id FROM accounts WHERE code = ANY($1) ORDER BY code FOR UPDATE`, codes)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uuid.UUID, len(codes))
	for rows.Next() {
		var (
			code string
			id   uuid.UUID
		)
		if err := rows.Scan(&code, &id); err != nil {
			rows.Close()
			return nil, err
		}
		ids[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, code := range codes {
		if _, ok := ids[code]; !ok {
			return nil, fmt.Errorf("account %s: %w", code, ErrUnknownAccount)
		}
	}
	return ids, nil
}

func balances(ctx context.Context, tx pgx.Tx, from, to uuid.UUID) (int64, int64, error) {
	const query = `
SELECT
	COALESCE(SUM(amount) FILTER (WHERE account_id = $1), 0),
	COALESCE(SUM(amount) FILTER (WHERE account_id = $2), 0)
FROM entries
WHERE account_id IN ($1, $2)`
	var fromBalance, toBalance int64
	err := tx.QueryRow(ctx, query, from, to).Scan(&fromBalance, &toBalance)
	return fromBalance, toBalance, err
}
