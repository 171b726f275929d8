// Package notification delivers committed event records to downstream
// consumers. The relay tails the event log and hands each record to a
// Notifier; a cursor remembers how far delivery got, so a crash between
// delivery and cursor update replays the record instead of losing it.
package notification

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/quorum_wallet/internal/event"
)

// Notifier delivers event records to downstream systems.
type Notifier interface {
	Send(ctx context.Context, rec event.Record) error
}

// LoggerNotifier writes records to the structured logger. Used when no
// Redis is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the record to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, rec event.Record) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("event",
		slog.Uint64("seq", rec.Seq),
		slog.String("name", rec.Name),
		slog.String("topic", rec.Topic.Hex()),
		slog.String("payload", string(rec.Payload)),
	)
	return nil
}

// RedisStreamNotifier appends records to a Redis stream.
type RedisStreamNotifier struct {
	client *redis.Client
	stream string
}

// NewRedisStreamNotifier builds a notifier writing to stream.
func NewRedisStreamNotifier(client *redis.Client, stream string) *RedisStreamNotifier {
	return &RedisStreamNotifier{client: client, stream: stream}
}

// Send appends rec to the stream with XADD.
func (n *RedisStreamNotifier) Send(ctx context.Context, rec event.Record) error {
	return n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]any{
			"seq":        strconv.FormatUint(rec.Seq, 10),
			"name":       rec.Name,
			"topic":      rec.Topic.Hex(),
			"payload":    string(rec.Payload),
			"created_at": rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}
