package notification

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Cursor stores the sequence number of the next record to deliver.
type Cursor interface {
	Load(ctx context.Context) (uint64, error)
	Save(ctx context.Context, next uint64) error
}

// MemoryCursor keeps the position in process memory.
type MemoryCursor struct {
	mu   sync.Mutex
	next uint64
}

func (c *MemoryCursor) Load(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next, nil
}

func (c *MemoryCursor) Save(_ context.Context, next uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = next
	return nil
}

// RedisCursor keeps the position under a Redis key so it survives restarts.
type RedisCursor struct {
	client *redis.Client
	key    string
}

func NewRedisCursor(client *redis.Client, key string) *RedisCursor {
	return &RedisCursor{client: client, key: key}
}

func (c *RedisCursor) Load(ctx context.Context) (uint64, error) {
	v, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

func (c *RedisCursor) Save(ctx context.Context, next uint64) error {
	return c.client.Set(ctx, c.key, strconv.FormatUint(next, 10), 0).Err()
}
