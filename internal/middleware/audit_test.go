package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/quorum_wallet/internal/logging"
)

func TestAuditLogsCallerAndRoute(t *testing.T) {
	var buf bytes.Buffer
	caller := common.HexToAddress("0x00000000000000000000000000000000000000c1")

	app := fiber.New()
	app.Use(RequestID(), Audit(logging.NewWithWriter(&buf, "info")))
	app.Post("/wallets/:id/deposits", func(c *fiber.Ctx) error {
		SetCaller(c, caller)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/wallets/7/deposits", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "/wallets/:id/deposits", line["route"])
	require.Equal(t, caller.Hex(), line["caller"])
	require.EqualValues(t, fiber.StatusOK, line["status"])
}

func TestRequestIDEchoesOrReplaces(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "client-id", resp.Header.Get(RequestIDHeader))

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 129))
	resp, err = app.Test(req)
	require.NoError(t, err)
	id := resp.Header.Get(RequestIDHeader)
	require.Len(t, id, 36)
}

func TestAuditLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(Audit(logging.NewWithWriter(&buf, "info")))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "not found")
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "WARN", line["level"])
	require.EqualValues(t, fiber.StatusNotFound, line["status"])
	require.Equal(t, "not found", line["error"])
}
