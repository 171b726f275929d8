package multisig

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
	"github.com/congo-pay/quorum_wallet/internal/storage"
)

// Repository persists approval groups. Ids are dense and assigned by
// Create in insertion order.
type Repository interface {
	Create(ctx context.Context, group Group) (uint64, error)
	Get(ctx context.Context, id uint64) (Group, error)
	Update(ctx context.Context, group Group) error
}

// PostgresRepository stores approval groups in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a group under the next free id.
func (r *PostgresRepository) Create(ctx context.Context, group Group) (uint64, error) {
	q := storage.Conn(ctx, r.db)
	var next int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM approval_groups`).Scan(&next); err != nil {
		return 0, err
	}
	_, err := q.Exec(ctx, `INSERT INTO approval_groups (id, quorum, signers, approvers, approval_count, completed)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		next, int64(group.Quorum), storage.AddressesToBytes(group.Signers), storage.AddressesToBytes(group.Approvers),
		int64(group.ApprovalCount), group.Completed)
	if err != nil {
		return 0, err
	}
	return uint64(next), nil
}

// Get fetches a group by id.
func (r *PostgresRepository) Get(ctx context.Context, id uint64) (Group, error) {
	row := storage.Conn(ctx, r.db).QueryRow(ctx, `SELECT quorum, signers, approvers, approval_count, completed
        FROM approval_groups WHERE id = $1`, int64(id))
	var (
		g                  Group
		quorum, count      int64
		signers, approvers [][]byte
	)
	if err := row.Scan(&quorum, &signers, &approvers, &count, &g.Completed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, fmt.Errorf("approval group %d: %w", id, apperrors.ErrNotFound)
		}
		return Group{}, err
	}
	g.ID = id
	g.Quorum = uint64(quorum)
	g.ApprovalCount = uint64(count)
	g.Signers = storage.BytesToAddresses(signers)
	g.Approvers = storage.BytesToAddresses(approvers)
	return g, nil
}

// Update writes the mutable fields of a group.
func (r *PostgresRepository) Update(ctx context.Context, group Group) error {
	cmd, err := storage.Conn(ctx, r.db).Exec(ctx, `UPDATE approval_groups
        SET approvers = $1, approval_count = $2, completed = $3 WHERE id = $4`,
		storage.AddressesToBytes(group.Approvers), int64(group.ApprovalCount), group.Completed, int64(group.ID))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("approval group %d: %w", group.ID, apperrors.ErrNotFound)
	}
	return nil
}
