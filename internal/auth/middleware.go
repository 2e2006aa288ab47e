package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const CtxIdentityKey = "identity"

// IdentityMiddleware reads an optional "Bearer <token>" identity. Requests
// without the header pass through with an empty identity; a present but
// broken token is rejected.
func IdentityMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization 형식은 'Bearer <token>' 이어야 합니다")
		}

		id, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "유효하지 않거나 만료된 토큰입니다")
		}

		c.Locals(CtxIdentityKey, id)
		return c.Next()
	}
}
