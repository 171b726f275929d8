package identity

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

type registerRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
	Secret  string `json:"secret" validate:"required"`
}

type principalResponse struct {
	ID      string         `json:"id"`
	Address common.Address `json:"address"`
}

// Register handles principal onboarding.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := requestValidator.Struct(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.service.Register(c.UserContext(), Credentials{Address: common.HexToAddress(req.Address), Secret: req.Secret})
	switch {
	case errors.Is(err, ErrExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case err != nil:
		return fiber.NewError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(principalResponse{ID: p.ID, Address: p.Address})
}
