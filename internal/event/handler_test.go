package event

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestHandlerPagesTheLog(t *testing.T) {
	log := NewMemoryLog()
	for i := 0; i < 3; i++ {
		_, err := log.Append(context.Background(), Completed{GroupID: uint64(i)})
		require.NoError(t, err)
	}
	app := fiber.New()
	app.Get("/events", NewHandler(log).List)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/events?from=1&limit=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page struct {
		Records []Record `json:"records"`
		Next    uint64   `json:"next"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Records, 2)
	require.Equal(t, uint64(1), page.Records[0].Seq)
	require.Equal(t, uint64(3), page.Next)

	decoded, err := page.Records[1].Decode()
	require.NoError(t, err)
	require.Equal(t, Completed{GroupID: 2}, decoded)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/events?limit=0", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
