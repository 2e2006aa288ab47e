package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"smartstore-backend/internal/history"
)

type ClaimIdentityRequest struct {
	BranchName string `json:"branch_name"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

type IdentityResponse struct {
	Token    string           `json:"token,omitempty"`
	Identity history.Identity `json:"identity"`
}

// IdentityFromCtx returns the identity set by IdentityMiddleware, or the zero
// identity.
func IdentityFromCtx(c *fiber.Ctx) history.Identity {
	if id, ok := c.Locals(CtxIdentityKey).(history.Identity); ok {
		return id
	}
	return history.Identity{}
}

// ClaimIdentityHandler issues an identity token for a returning branch
// representative who wants to look up their own records.
// POST /api/auth/identity
func ClaimIdentityHandler(secret string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClaimIdentityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 본문입니다")
		}

		id := history.Identity{
			BranchName: strings.TrimSpace(body.BranchName),
			Name:       strings.TrimSpace(body.Name),
			Phone:      strings.TrimSpace(body.Phone),
		}

		token, err := GenerateToken(secret, id, ttl)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "토큰을 만들 수 없습니다")
		}

		return c.Status(fiber.StatusCreated).JSON(IdentityResponse{Token: token, Identity: id})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(IdentityResponse{Identity: IdentityFromCtx(c)})
	}
}
