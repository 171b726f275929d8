package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/event"
)

// RegisterEventRoutes exposes the event log.
func RegisterEventRoutes(r fiber.Router, h *event.Handler) {
	r.Get("/events", h.List)
}
