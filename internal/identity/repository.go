package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

// ErrExists is returned when an address registers a second time.
var ErrExists = errors.New("principal already registered")

// Repository persists principals.
type Repository interface {
	Create(ctx context.Context, p Principal) error
	FindByAddress(ctx context.Context, addr common.Address) (Principal, error)
	FindByID(ctx context.Context, id string) (Principal, error)
	UpdateTokenVersion(ctx context.Context, id string, version int) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new principal.
func (r *PostgresRepository) Create(ctx context.Context, p Principal) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO principals (id, address, secret_hash, token_version, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, p.Address.Bytes(), p.SecretHash, p.TokenVersion, p.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrExists
	}
	return err
}

// FindByAddress fetches a principal by address.
func (r *PostgresRepository) FindByAddress(ctx context.Context, addr common.Address) (Principal, error) {
	row := r.db.QueryRow(ctx, `SELECT id, address, secret_hash, token_version, created_at FROM principals WHERE address = $1`, addr.Bytes())
	return scanPrincipal(row)
}

// FindByID fetches a principal by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Principal, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return Principal{}, fmt.Errorf("principal %q: %w", id, apperrors.ErrNotFound)
	}
	row := r.db.QueryRow(ctx, `SELECT id, address, secret_hash, token_version, created_at FROM principals WHERE id = $1`, pid)
	return scanPrincipal(row)
}

// UpdateTokenVersion stores a new token version, invalidating older tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	pid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE principals SET token_version = $1 WHERE id = $2`, version, pid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("principal %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func scanPrincipal(row pgx.Row) (Principal, error) {
	var (
		id        uuid.UUID
		addr      []byte
		createdAt time.Time
		p         Principal
	)
	if err := row.Scan(&id, &addr, &p.SecretHash, &p.TokenVersion, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, fmt.Errorf("principal: %w", apperrors.ErrNotFound)
		}
		return Principal{}, err
	}
	p.ID = id.String()
	p.Address = common.BytesToAddress(addr)
	p.CreatedAt = createdAt.UTC()
	return p, nil
}
