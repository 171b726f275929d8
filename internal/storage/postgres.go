package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// advisoryLockKey is the pg_advisory_xact_lock key every write unit takes
// so that units commit in one global order across processes.
const advisoryLockKey int64 = 0x71756f72756d // "quorum"

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresTransactor runs units as Postgres transactions and carries the
// open transaction through the context.
type PostgresTransactor struct {
	pool *pgxpool.Pool
}

// NewPostgresTransactor builds a transactor on top of pool.
func NewPostgresTransactor(pool *pgxpool.Pool) *PostgresTransactor {
	return &PostgresTransactor{pool: pool}
}

// Atomic implements Transactor.
func (p *PostgresTransactor) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if u, ok := unitFrom(ctx); ok {
		if u.mode != modeWrite {
			return ErrReadOnly
		}
		return fn(ctx)
	}
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
			return fmt.Errorf("acquire unit lock: %w", err)
		}
		return fn(withUnit(ctx, unit{mode: modeWrite, tx: tx}))
	})
}

// View implements Transactor.
func (p *PostgresTransactor) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if InUnit(ctx) {
		return fn(ctx)
	}
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return pgx.BeginTxFunc(ctx, p.pool, opts, func(tx pgx.Tx) error {
		return fn(withUnit(ctx, unit{mode: modeRead, tx: tx}))
	})
}

// Conn returns the transaction carried by ctx, or pool when ctx is not
// inside a Postgres unit.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if u, ok := unitFrom(ctx); ok {
		if tx, ok := u.tx.(pgx.Tx); ok {
			return tx
		}
	}
	return pool
}
