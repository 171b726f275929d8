package multisig

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/quorum_wallet/internal/event"
	"github.com/congo-pay/quorum_wallet/internal/middleware"
)

// asCaller stands in for the JWT middleware.
func asCaller(addr common.Address) fiber.Handler {
	return func(c *fiber.Ctx) error {
		middleware.SetCaller(c, addr)
		return c.Next()
	}
}

func newTestApp(t *testing.T, caller common.Address) (*fiber.App, *Registry) {
	t.Helper()
	r, _ := newTestRegistry(t)
	h := NewHandler(r)
	app := fiber.New()
	app.Post("/groups", asCaller(caller), h.Create)
	app.Post("/groups/:id/sign", asCaller(caller), h.Sign)
	app.Get("/groups/:id", h.Get)
	app.Get("/groups/:id/signers/:address", h.HasSigned)
	return app, r
}

func decode[T any](t *testing.T, app *fiber.App, method, path, body string, wantStatus int) T {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode)
	var out T
	if wantStatus < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return out
}

type envelopeNames struct {
	Group  Group `json:"group"`
	Events []struct {
		Name string `json:"name"`
	} `json:"events"`
}

func TestHandlerSignFlow(t *testing.T) {
	app, r := newTestApp(t, accounts[1])
	id := createGroup(t, r, 2, accounts[0], accounts[1], accounts[1])

	out := decode[envelopeNames](t, app, fiber.MethodPost, "/groups/0/sign", "", fiber.StatusOK)
	require.Equal(t, id, out.Group.ID)
	require.True(t, out.Group.Completed)
	require.Len(t, out.Events, 2)
	require.Equal(t, event.NameSigned, out.Events[0].Name)
	require.Equal(t, event.NameCompleted, out.Events[1].Name)

	again := decode[envelopeNames](t, app, fiber.MethodPost, "/groups/0/sign", "", fiber.StatusOK)
	require.Empty(t, again.Events)

	signed := decode[map[string]any](t, app, fiber.MethodGet, "/groups/0/signers/"+accounts[1].Hex(), "", fiber.StatusOK)
	require.Equal(t, true, signed["has_signed"])
}

func TestHandlerCreateAndErrors(t *testing.T) {
	app, _ := newTestApp(t, accounts[0])

	body := `{"quorum":1,"signers":["` + accounts[0].Hex() + `"]}`
	out := decode[envelopeNames](t, app, fiber.MethodPost, "/groups", body, fiber.StatusCreated)
	require.Equal(t, uint64(1), out.Group.Quorum)
	require.Equal(t, event.NameGroupCreated, out.Events[0].Name)

	decode[any](t, app, fiber.MethodPost, "/groups", `{"quorum":0,"signers":[]}`, fiber.StatusBadRequest)
	decode[any](t, app, fiber.MethodGet, "/groups/9", "", fiber.StatusNotFound)
	decode[any](t, app, fiber.MethodGet, "/groups/x", "", fiber.StatusBadRequest)

	decode[any](t, app, fiber.MethodPost, "/groups", `{"quorum":2,"signers":["`+accounts[0].Hex()+`"]}`, fiber.StatusCreated)
	decode[any](t, app, fiber.MethodPost, "/groups/1/sign", "", fiber.StatusOK)
	decode[any](t, app, fiber.MethodPost, "/groups/1/sign", "", fiber.StatusConflict)
}
