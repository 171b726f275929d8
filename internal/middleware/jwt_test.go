package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/quorum_wallet/internal/auth"
	"github.com/congo-pay/quorum_wallet/internal/config"
	"github.com/congo-pay/quorum_wallet/internal/identity"
)

func TestJWTAuthExposesCaller(t *testing.T) {
	repo := identity.NewMemoryRepository()
	ids := identity.NewService(repo)
	svc := auth.NewService(config.Config{JWTSecret: "s", RefreshSecret: "r", AccessTokenTTL: time.Minute}, repo)

	addr := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	_, err := ids.Register(context.Background(), identity.Credentials{Address: addr, Secret: "long enough"})
	require.NoError(t, err)
	token, err := svc.IssueFor(context.Background(), addr, time.Minute)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(JWTAuth(svc))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		caller, err := Caller(c)
		if err != nil {
			return err
		}
		return c.SendString(caller.Hex())
	})

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, addr.Hex(), string(body))
}

func TestLoginRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"address":"0xAB"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		last = resp.StatusCode
	}
	require.Equal(t, fiber.StatusTooManyRequests, last)
}

func TestIdempotencyWithoutRedisPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(Idempotency(nil, time.Minute, nil))
	app.Post("/resource", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/resource", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
