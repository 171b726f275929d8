package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisClientName = "quorum_wallet"

// NewRedisClient connects to the Redis holding idempotency records, login
// counters and the event stream. The client is returned only once PING
// succeeds.
func NewRedisClient(ctx context.Context, url string, logger *slog.Logger) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opt.ClientName == "" {
		opt.ClientName = redisClientName
	}

	client := redis.NewClient(opt)
	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	logger.Info("redis connected",
		slog.String("addr", opt.Addr),
		slog.Int("db", opt.DB),
		slog.Duration("ping", time.Since(start)))
	return client, nil
}
