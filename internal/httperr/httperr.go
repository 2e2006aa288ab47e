// Package httperr shapes the errors the API sends back. Failed record store
// calls, from intake submission to password registration, all leave through
// Store with one generic message.
package httperr

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"smartstore-backend/internal/metrics"
)

const (
	MsgStoreFailed  = "저장 중 오류가 발생했습니다."
	MsgStoreTimeout = "저장소 응답이 지연되고 있습니다. 잠시 후 다시 시도해 주세요."
)

// Store logs and counts a failed store call of op and returns the error to
// send back.
func Store(log *zap.Logger, m *metrics.Metrics, op string, err error) *fiber.Error {
	log.Error("저장소 호출 실패", zap.String("op", op), zap.Error(err))
	m.StoreErrors.WithLabelValues(op).Inc()

	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.NewError(fiber.StatusGatewayTimeout, MsgStoreTimeout)
	}
	return fiber.NewError(fiber.StatusInternalServerError, MsgStoreFailed)
}

// Handler is the app-wide fiber error handler: every error leaves as
// {"error": message}.
func Handler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(fiber.Map{
				"error": e.Message,
			})
		}
		log.Error("예상하지 못한 오류", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "예상하지 못한 서버 오류",
		})
	}
}
