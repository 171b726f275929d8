package event

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/quorum_wallet/internal/storage"
)

// PostgresLog stores events in the events table.
type PostgresLog struct {
	db *pgxpool.Pool
}

// NewPostgresLog builds a Postgres-backed event log.
func NewPostgresLog(db *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{db: db}
}

// Append inserts events with dense sequence numbers. Callers hold the
// unit lock, so counting rows yields the next free seq.
func (l *PostgresLog) Append(ctx context.Context, events ...Event) ([]Record, error) {
	q := storage.Conn(ctx, l.db)

	var next int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&next); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	out := make([]Record, 0, len(events))
	for _, e := range events {
		rec, err := NewRecord(e, time.Now())
		if err != nil {
			return nil, err
		}
		rec.Seq = uint64(next)
		if _, err := q.Exec(ctx, `INSERT INTO events (seq, name, topic, payload, created_at)
        VALUES ($1, $2, $3, $4, $5)`, next, rec.Name, rec.Topic.Bytes(), []byte(rec.Payload), rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("insert event %s: %w", rec.Name, err)
		}
		next++
		out = append(out, rec)
	}
	return out, nil
}

// List returns up to limit records starting at seq from.
func (l *PostgresLog) List(ctx context.Context, from uint64, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := storage.Conn(ctx, l.db).Query(ctx, `SELECT seq, name, topic, payload, created_at
        FROM events WHERE seq >= $1 ORDER BY seq LIMIT $2`, int64(from), limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			rec       Record
			seq       int64
			topic     []byte
			payload   []byte
			createdAt time.Time
		)
		if err := row.Scan(&seq, &rec.Name, &topic, &payload, &createdAt); err != nil {
			return Record{}, err
		}
		rec.Seq = uint64(seq)
		rec.Topic.SetBytes(topic)
		rec.Payload = payload
		rec.CreatedAt = createdAt.UTC()
		return rec, nil
	})
}
