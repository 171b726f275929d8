package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/quorum_wallet/internal/config"
	"github.com/congo-pay/quorum_wallet/internal/logging"
	"github.com/congo-pay/quorum_wallet/internal/metrics"
)

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
	seq   int
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	c.seq++
	req.Header.Set("Idempotency-Key", fmt.Sprintf("key-%d", c.seq))
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func newTestApp(t *testing.T) (*fiber.App, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	reg := prometheus.NewRegistry()
	d := Deps{
		Cfg: config.Config{
			JWTSecret:       "access",
			RefreshSecret:   "refresh",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			IdempotencyTTL:  time.Minute,
			LoginPerMinute:  10,
		},
		Cache:    cache,
		Logger:   logging.Discard(),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	}
	app := fiber.New()
	require.NoError(t, Setup(app, d, NewServices(d)))
	return app, cache
}

func login(t *testing.T, app *fiber.App, addr common.Address) *client {
	t.Helper()
	c := &client{t: t, app: app}
	creds := map[string]string{"address": addr.Hex(), "secret": "long enough"}
	status, _ := c.do(fiber.MethodPost, "/api/v1/identity/register", creds)
	require.Equal(t, fiber.StatusCreated, status)
	status, out := c.do(fiber.MethodPost, "/api/v1/auth/login", creds)
	require.Equal(t, fiber.StatusOK, status)
	c.token = out["access_token"].(string)
	return c
}

func TestEndToEndWithdrawal(t *testing.T) {
	app, _ := newTestApp(t)
	a := common.HexToAddress("0x000000000000000000000000000000000000000a")
	b := common.HexToAddress("0x000000000000000000000000000000000000000b")
	to := common.HexToAddress("0x00000000000000000000000000000000000000dd")
	alice, bob := login(t, app, a), login(t, app, b)

	status, _ := alice.do(fiber.MethodPost, "/api/v1/wallets", map[string]any{"quorum": 2, "signers": []common.Address{a, b}})
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = bob.do(fiber.MethodPost, "/api/v1/wallets/0/deposits", map[string]any{"amount": 50})
	require.Equal(t, fiber.StatusOK, status)
	status, out := alice.do(fiber.MethodPost, "/api/v1/wallets/0/withdrawals", map[string]any{"to": to, "amount": 30})
	require.Equal(t, fiber.StatusCreated, status)
	groupID := uint64(out["withdrawal"].(map[string]any)["approval_group_id"].(float64))

	for _, c := range []*client{alice, bob} {
		status, _ = c.do(fiber.MethodPost, fmt.Sprintf("/api/v1/multisig/groups/%d/sign", groupID), nil)
		require.Equal(t, fiber.StatusOK, status)
	}
	status, out = bob.do(fiber.MethodGet, fmt.Sprintf("/api/v1/multisig/groups/%d", groupID), nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, out["completed"])

	status, out = bob.do(fiber.MethodPost, "/api/v1/withdrawals/0/execute", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "executed", out["withdrawal"].(map[string]any)["status"])

	status, out = alice.do(fiber.MethodGet, "/api/v1/accounts/"+to.Hex()+"/balance", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 30, out["balance"])

	status, out = alice.do(fiber.MethodGet, "/api/v1/events?from=0&limit=100", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 8, out["next"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)
	c := &client{t: t, app: app}
	status, _ := c.do(fiber.MethodPost, "/api/v1/wallets", map[string]any{"quorum": 1})
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, out := c.do(fiber.MethodGet, "/healthz", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "memory", out["status"].(map[string]any)["postgres"])
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	app, _ := newTestApp(t)
	login(t, app, common.HexToAddress("0x000000000000000000000000000000000000000c"))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "quorum_wallet_http_requests_total")
}
