package multisig

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
	"github.com/congo-pay/quorum_wallet/internal/event"
	"github.com/congo-pay/quorum_wallet/internal/middleware"
)

// Handler exposes approval group HTTP endpoints.
type Handler struct {
	registry *Registry
}

// NewHandler builds an approval group HTTP handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

type createRequest struct {
	Quorum  uint64           `json:"quorum"`
	Signers []common.Address `json:"signers"`
}

type groupResponse struct {
	Group  Group            `json:"group"`
	Events []event.Envelope `json:"events"`
}

// Create opens a new approval group.
func (h *Handler) Create(c *fiber.Ctx) error {
	if _, err := middleware.Caller(c); err != nil {
		return err
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	id, events, err := h.registry.CreateGroup(c.UserContext(), req.Quorum, req.Signers)
	if err != nil {
		return fail(err)
	}
	g, err := h.registry.Group(c.UserContext(), id)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(groupResponse{Group: g, Events: event.Envelopes(events)})
}

// Sign records the caller's approval. Signing a completed group answers
// 200 with no events.
func (h *Handler) Sign(c *fiber.Ctx) error {
	caller, err := middleware.Caller(c)
	if err != nil {
		return err
	}
	id, err := groupID(c)
	if err != nil {
		return err
	}
	events, err := h.registry.Sign(c.UserContext(), id, caller)
	if err != nil {
		return fail(err)
	}
	g, err := h.registry.Group(c.UserContext(), id)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(groupResponse{Group: g, Events: event.Envelopes(events)})
}

// Get returns the state of a group.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := groupID(c)
	if err != nil {
		return err
	}
	g, err := h.registry.Group(c.UserContext(), id)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(g)
}

// HasSigned reports whether an address signed a group.
func (h *Handler) HasSigned(c *fiber.Ctx) error {
	id, err := groupID(c)
	if err != nil {
		return err
	}
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return fiber.NewError(http.StatusBadRequest, "address must be a hex address")
	}
	addr := common.HexToAddress(raw)
	signed, err := h.registry.HasSigned(c.UserContext(), id, addr)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"group_id":   id,
		"address":    addr,
		"has_signed": signed,
	})
}

func groupID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(http.StatusBadRequest, "group id must be a non-negative integer")
	}
	return id, nil
}

func fail(err error) error {
	return fiber.NewError(apperrors.HTTPStatus(err), err.Error())
}
