package auth

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestHandlerLogin(t *testing.T) {
	svc, ids := newTestService(t)
	addr := common.HexToAddress("0x0000000000000000000000000000000000000def")
	register(t, ids, addr)

	app := fiber.New()
	h := NewHandler(ids, svc)
	app.Post("/login", h.Login)
	app.Post("/logout", h.Logout)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed address", `{"address":"0x12","secret":"long enough"}`, fiber.StatusBadRequest},
		{"missing secret", `{"address":"` + addr.Hex() + `"}`, fiber.StatusBadRequest},
		{"wrong secret", `{"address":"` + addr.Hex() + `","secret":"nope nope"}`, fiber.StatusUnauthorized},
		{"ok", `{"address":"` + addr.Hex() + `","secret":"long enough"}`, fiber.StatusOK},
	}
	var pair loginResponse
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(tc.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.StatusCode)
			if tc.want == fiber.StatusOK {
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
			}
		})
	}
	require.Equal(t, addr, pair.Address)
	require.NotEmpty(t, pair.RefreshToken)

	req := httptest.NewRequest(fiber.MethodPost, "/logout", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
