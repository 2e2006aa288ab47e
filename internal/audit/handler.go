package audit

import (
	"github.com/gofiber/fiber/v2"

	"smartstore-backend/internal/models"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	BranchName  string             `json:"branch_name"`
	Actor       string             `json:"actor"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Data        string             `json:"data"`
}

// BranchResolver returns the branch whose logs the caller may read, or a
// fiber error.
type BranchResolver func(c *fiber.Ctx) (string, error)

// ListAuditLogsHandler lists the audit log of the branch picked by resolve.
// GET ...?entity_type=application&action=submit&limit=20
func ListAuditLogsHandler(svc *Service, resolve BranchResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := resolve(c)
		if err != nil {
			return err
		}

		logs, err := svc.List(c.UserContext(), Filter{
			BranchName: branch,
			EntityType: c.Query("entity_type"),
			Action:     models.AuditAction(c.Query("action")),
			Limit:      c.QueryInt("limit", DefaultLimit),
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "감사 로그를 불러올 수 없습니다")
		}

		res := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			res = append(res, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				BranchName:  l.BranchName,
				Actor:       l.Actor,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				Data:        l.Data,
			})
		}

		return c.JSON(res)
	}
}
