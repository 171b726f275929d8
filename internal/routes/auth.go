package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/auth"
)

// RegisterAuthRoutes mounts the token endpoints under /auth. Login sits
// behind limiter; refresh and logout authenticate through the refresh
// token in the body.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, limiter fiber.Handler) {
	tokens := r.Group("/auth")
	tokens.Post("/login", limiter, h.Login)
	tokens.Post("/refresh", h.Refresh)
	tokens.Post("/logout", h.Logout)
}
