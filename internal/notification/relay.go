package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/congo-pay/quorum_wallet/internal/event"
	"github.com/congo-pay/quorum_wallet/internal/metrics"
)

const maxIdleDelay = 10 * time.Second

// Relay tails the event log and forwards new records to a Notifier.
type Relay struct {
	log      event.Log
	notifier Notifier
	cursor   Cursor
	batch    int
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewRelay builds a relay. m may be nil.
func NewRelay(log event.Log, notifier Notifier, cursor Cursor, batch int, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Relay {
	if batch <= 0 {
		batch = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Relay{
		log:      log,
		notifier: notifier,
		cursor:   cursor,
		batch:    batch,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Drain delivers one batch of records past the cursor and returns how many
// were delivered. The cursor advances after every record.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	next, err := r.cursor.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load cursor: %w", err)
	}
	records, err := r.log.List(ctx, next, r.batch)
	if err != nil {
		return 0, fmt.Errorf("list events from %d: %w", next, err)
	}

	delivered := 0
	for _, rec := range records {
		if err := r.notifier.Send(ctx, rec); err != nil {
			r.metrics.Relayed(delivered)
			return delivered, fmt.Errorf("deliver event %d: %w", rec.Seq, err)
		}
		if err := r.cursor.Save(ctx, rec.Seq+1); err != nil {
			r.metrics.Relayed(delivered + 1)
			return delivered + 1, fmt.Errorf("save cursor: %w", err)
		}
		delivered++
	}
	r.metrics.Relayed(delivered)
	return delivered, nil
}

// Run drains the log until ctx is canceled. Empty polls and failures back
// off up to maxIdleDelay.
func (r *Relay) Run(ctx context.Context) error {
	delay := time.Duration(0)
	for {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			r.logger.Info("stopping event relay", "reason", ctx.Err())
			return nil
		}

		n, err := r.Drain(ctx)
		switch {
		case err != nil:
			r.logger.Error("relay batch failed", "err", err)
			delay = min(max(2*delay, r.interval), maxIdleDelay)
		case n == 0:
			delay = r.interval
		default:
			delay = 0
		}
	}
}
