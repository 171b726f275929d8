package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/multisig"
)

// RegisterMultisigRoutes wires approval group endpoints.
func RegisterMultisigRoutes(r fiber.Router, h *multisig.Handler) {
	group := r.Group("/multisig/groups")
	group.Post("/", h.Create)
	group.Post("/:id/sign", h.Sign)
	group.Get("/:id", h.Get)
	group.Get("/:id/signers/:address", h.HasSigned)
}
