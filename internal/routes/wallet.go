package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/wallet"
)

// RegisterWalletRoutes wires wallet and withdrawal endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets/:id", h.Get)
	r.Post("/wallets/:id/deposits", h.Deposit)
	r.Post("/wallets/:id/withdrawals", h.Propose)
	r.Get("/wallets/:id/withdrawals", h.Withdrawals)

	r.Get("/withdrawals/:id", h.GetWithdrawal)
	r.Post("/withdrawals/:id/cancel", h.Cancel)
	r.Post("/withdrawals/:id/execute", h.Execute)

	r.Get("/me/wallets", h.Mine)
	r.Get("/accounts/:address/balance", h.AccountBalance)
}
