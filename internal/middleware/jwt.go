package middleware

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/quorum_wallet/internal/auth"
)

const callerKey = "caller"

// JWTAuth returns a middleware that validates access tokens and stores the
// caller address they carry.
func JWTAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		caller, err := svc.VerifyAccess(c.UserContext(), tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		SetCaller(c, caller)
		return c.Next()
	}
}

// SetCaller records addr as the authenticated caller of the request.
func SetCaller(c *fiber.Ctx, addr common.Address) {
	c.Locals(callerKey, addr)
}

// Caller returns the address authenticated by JWTAuth.
func Caller(c *fiber.Ctx) (common.Address, error) {
	caller, ok := c.Locals(callerKey).(common.Address)
	if !ok {
		return common.Address{}, fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}
	return caller, nil
}
