package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// IdempotencyKeyHeader names the header clients use to deduplicate
// mutating requests.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyPrefix = "idempotency:v2:"
	pendingMarker     = "pending"
	cacheOpTimeout    = 2 * time.Second
)

var replayedHeaders = []string{fiber.HeaderContentType, fiber.HeaderLocation}

type replay struct {
	Status  int               `json:"status"`
	Body    []byte            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type replayCache struct {
	client *redis.Client
	ttl    time.Duration
}

// lookup returns the stored replay for key, nil when the key is unused,
// or errInFlight while the first request still runs.
func (r replayCache) lookup(key string) (*replay, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	case string(raw) == pendingMarker:
		return nil, errInFlight
	}
	var out replay
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// reserve claims key. It reports false when another request won the race.
func (r replayCache) reserve(key string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	return r.client.SetNX(ctx, key, pendingMarker, r.ttl).Result()
}

func (r replayCache) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	r.client.Del(ctx, key)
}

func (r replayCache) store(key string, rep replay) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	return r.client.Set(ctx, key, payload, r.ttl).Err()
}

var errInFlight = errors.New("request with this key is still processing")

// Idempotency replays the stored response of a mutating request whose
// Idempotency-Key was already used by the same caller on the same path.
// Only successful responses are stored; a failed request frees its key.
// Without Redis the header is optional and nothing is cached.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	if cache == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	rc := replayCache{client: cache, ttl: ttl}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(IdempotencyKeyHeader))
		if key == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing Idempotency-Key header")
		}
		scope := "anonymous"
		if caller, err := Caller(c); err == nil {
			scope = strings.ToLower(caller.Hex())
		}
		cacheKey := idempotencyPrefix + scope + ":" + c.Path() + ":" + key
		log := logger.With(slog.String("idempotency_key", key), slog.String("path", c.Path()))

		stored, err := rc.lookup(cacheKey)
		switch {
		case errors.Is(err, errInFlight):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			log.Error("idempotency lookup failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		case stored != nil:
			for name, value := range stored.Headers {
				c.Set(name, value)
			}
			c.Set("Idempotent-Replayed", "true")
			return c.Status(stored.Status).Send(stored.Body)
		}

		won, err := rc.reserve(cacheKey)
		if err != nil {
			log.Error("idempotency reservation failed", slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		}
		if !won {
			return fiber.NewError(fiber.StatusConflict, errInFlight.Error())
		}

		if err := c.Next(); err != nil {
			rc.release(cacheKey)
			return err
		}

		rep := replay{
			Status:  c.Response().StatusCode(),
			Body:    append([]byte(nil), c.Response().Body()...),
			Headers: map[string]string{},
		}
		for _, name := range replayedHeaders {
			if v := c.GetRespHeader(name); v != "" {
				rep.Headers[name] = v
			}
		}
		if rep.Status >= fiber.StatusBadRequest {
			rc.release(cacheKey)
			return nil
		}
		if err := rc.store(cacheKey, rep); err != nil {
			log.Error("idempotency persist failed", slog.Any("error", err))
			rc.release(cacheKey)
		}
		return nil
	}
}
