package wallet

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
	"github.com/congo-pay/quorum_wallet/internal/event"
	"github.com/congo-pay/quorum_wallet/internal/middleware"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Quorum  uint64           `json:"quorum"`
	Signers []common.Address `json:"signers"`
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

type proposeRequest struct {
	To     common.Address `json:"to"`
	Amount int64          `json:"amount"`
}

type walletResponse struct {
	Wallet Wallet           `json:"wallet"`
	Events []event.Envelope `json:"events"`
}

type withdrawalResponse struct {
	Withdrawal Withdrawal       `json:"withdrawal"`
	Events     []event.Envelope `json:"events"`
}

// Create registers a wallet created by the authenticated caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	caller, err := middleware.Caller(c)
	if err != nil {
		return err
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, events, err := h.service.CreateWallet(c.UserContext(), caller, req.Quorum, req.Signers)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(walletResponse{Wallet: w, Events: event.Envelopes(events)})
}

// Get returns a wallet.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	w, err := h.service.Wallet(c.UserContext(), id)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(w)
}

// Deposit credits the wallet. The Idempotency-Key header, when present,
// keys the ledger posting.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	caller, err := middleware.Caller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, events, err := h.service.Deposit(c.UserContext(), caller, id, req.Amount, c.Get(middleware.IdempotencyKeyHeader))
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(walletResponse{Wallet: w, Events: event.Envelopes(events)})
}

// Propose opens a withdrawal on the wallet.
func (h *Handler) Propose(c *fiber.Ctx) error {
	caller, err := middleware.Caller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req proposeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	wd, events, err := h.service.ProposeWithdrawal(c.UserContext(), caller, id, req.To, req.Amount)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(withdrawalResponse{Withdrawal: wd, Events: event.Envelopes(events)})
}

// Withdrawals lists the withdrawals of a wallet.
func (h *Handler) Withdrawals(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	withdrawals, err := h.service.WithdrawalsByWallet(c.UserContext(), id)
	if err != nil {
		return fail(err)
	}
	if withdrawals == nil {
		withdrawals = []Withdrawal{}
	}
	return c.Status(http.StatusOK).JSON(withdrawals)
}

// GetWithdrawal returns a withdrawal.
func (h *Handler) GetWithdrawal(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	wd, err := h.service.Withdrawal(c.UserContext(), id)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(wd)
}

// Cancel cancels a pending withdrawal proposed by the caller.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	caller, err := middleware.Caller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	wd, events, err := h.service.CancelWithdrawal(c.UserContext(), caller, id)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(withdrawalResponse{Withdrawal: wd, Events: event.Envelopes(events)})
}

// Execute pays out an approved withdrawal.
func (h *Handler) Execute(c *fiber.Ctx) error {
	caller, err := middleware.Caller(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	wd, events, err := h.service.ExecuteWithdrawal(c.UserContext(), caller, id)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(withdrawalResponse{Withdrawal: wd, Events: event.Envelopes(events)})
}

// Mine lists the wallets the caller signs for.
func (h *Handler) Mine(c *fiber.Ctx) error {
	caller, err := middleware.Caller(c)
	if err != nil {
		return err
	}
	wallets, err := h.service.WalletsBySigner(c.UserContext(), caller)
	if err != nil {
		return fail(err)
	}
	if wallets == nil {
		wallets = []Wallet{}
	}
	return c.Status(http.StatusOK).JSON(wallets)
}

// AccountBalance returns what withdrawals paid out to an address.
func (h *Handler) AccountBalance(c *fiber.Ctx) error {
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return fiber.NewError(http.StatusBadRequest, "address must be a hex address")
	}
	addr := common.HexToAddress(raw)
	amount, err := h.service.AccountBalance(c.UserContext(), addr)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"address": addr,
		"balance": amount,
	})
}

func idParam(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return id, nil
}

func fail(err error) error {
	return fiber.NewError(apperrors.HTTPStatus(err), err.Error())
}
