package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/metrics"
)

// Metrics counts requests by route template so ids do not explode the
// label space.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status)
		return err
	}
}
