package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const loginWindow = time.Minute

// LoginRateLimit caps login attempts per principal address within a
// one-minute window, falling back to the client IP when the body names no
// valid address. It is a no-op without Redis and fails open on cache errors.
func LoginRateLimit(cache *redis.Client, perMinute int) fiber.Handler {
	if perMinute <= 0 {
		perMinute = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		subject := "ip:" + c.IP()
		var body struct {
			Address string `json:"address"`
		}
		if err := c.BodyParser(&body); err == nil && common.IsHexAddress(body.Address) {
			subject = "addr:" + strings.ToLower(common.HexToAddress(body.Address).Hex())
		}
		key := "rl:login:" + subject

		ctx := c.UserContext()
		var attempts *redis.IntCmd
		_, err := cache.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.SetNX(ctx, key, 0, loginWindow)
			attempts = p.Incr(ctx, key)
			return nil
		})
		if err != nil {
			return c.Next()
		}
		if attempts.Val() <= int64(perMinute) {
			return c.Next()
		}

		if ttl, err := cache.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
		}
		return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
	}
}
