package viewer

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/export"
	"smartstore-backend/internal/history"
	"smartstore-backend/internal/models"
)

type ModeRequest struct {
	Mode string `json:"mode"`
}

type BranchRequest struct {
	Branch string `json:"branch"`
}

type PasswordRequest struct {
	Password string `json:"password"`
}

type PageRequest struct {
	Page int `json:"page"`
}

type CheckResponse struct {
	Outcome history.CheckOutcome `json:"outcome"`
	View    View                 `json:"view"`
}

func badBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 본문입니다")
}

// OpenSessionHandler opens a view session for the caller's identity, if any.
// POST /api/history/sessions
func OpenSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.Open(c.UserContext(), auth.IdentityFromCtx(c))
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// GET /api/history/sessions/:id
func GetSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.View(c.UserContext(), c.Params("id"))
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.JSON(v)
	}
}

// DELETE /api/history/sessions/:id
func CloseSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Close(c.UserContext(), c.Params("id")); err != nil {
			return svc.toHTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PUT /api/history/sessions/:id/mode
func SetModeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ModeRequest
		if err := c.BodyParser(&body); err != nil {
			return badBody()
		}
		v, err := svc.SetMode(c.UserContext(), c.Params("id"), strings.TrimSpace(body.Mode))
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.JSON(v)
	}
}

// PUT /api/history/sessions/:id/branch
func SelectBranchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BranchRequest
		if err := c.BodyParser(&body); err != nil {
			return badBody()
		}
		v, err := svc.SelectBranch(c.UserContext(), c.Params("id"), strings.TrimSpace(body.Branch))
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.JSON(v)
	}
}

// AdminCheckHandler checks the branch password. A branch without one answers
// 200 with outcome "registration_required".
// POST /api/history/sessions/:id/admin-check
func AdminCheckHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return badBody()
		}
		v, outcome, err := svc.CheckAdmin(c.UserContext(), c.Params("id"), body.Password)
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.JSON(CheckResponse{Outcome: outcome, View: v})
	}
}

// POST /api/history/sessions/:id/branch-password
func RegisterPasswordHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return badBody()
		}
		v, err := svc.RegisterPassword(c.UserContext(), c.Params("id"), body.Password)
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// PUT /api/history/sessions/:id/page
func GoToPageHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PageRequest
		if err := c.BodyParser(&body); err != nil {
			return badBody()
		}
		v, err := svc.GoTo(c.UserContext(), c.Params("id"), body.Page)
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.JSON(v)
	}
}

// POST /api/history/sessions/:id/page/next
func NextPageHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.Next(c.UserContext(), c.Params("id"))
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.JSON(v)
	}
}

// POST /api/history/sessions/:id/page/prev
func PrevPageHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.Prev(c.UserContext(), c.Params("id"))
		if err != nil {
			return svc.toHTTP(err)
		}
		return c.JSON(v)
	}
}

func exportHandler(svc *Service, format, contentType string, write func(io.Writer, []models.ApplicationRecord) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := svc.Visible(c.UserContext(), c.Params("id"))
		if err != nil {
			return svc.toHTTP(err)
		}

		var buf bytes.Buffer
		if err := write(&buf, records); err != nil {
			svc.log.Error("내보내기 파일 생성 실패", zap.String("format", format), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "파일을 만들 수 없습니다")
		}
		svc.metrics.Exports.WithLabelValues(format).Inc()

		name := export.FileName(svc.now(), format)
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, "attachment; filename*=UTF-8''"+url.PathEscape(name))
		return c.Send(buf.Bytes())
	}
}

// GET /api/history/sessions/:id/export.csv
func ExportCSVHandler(svc *Service) fiber.Handler {
	return exportHandler(svc, "csv", export.ContentTypeCSV, export.WriteCSV)
}

// GET /api/history/sessions/:id/export.xlsx
func ExportXLSXHandler(svc *Service) fiber.Handler {
	return exportHandler(svc, "xlsx", export.ContentTypeXLSX, export.WriteXLSX)
}

// AuditBranchResolver lets only a session authenticated in admin mode read
// the audit log of its branch.
func AuditBranchResolver(svc *Service) audit.BranchResolver {
	return func(c *fiber.Ctx) (string, error) {
		branch, err := svc.AdminBranch(c.UserContext(), c.Params("id"))
		if err != nil {
			return "", svc.toHTTP(err)
		}
		return branch, nil
	}
}

// Register mounts the history routes on r, which is expected at
// /api/history.
func Register(r fiber.Router, svc *Service, logs *audit.Service) {
	s := r.Group("/sessions")
	s.Post("/", OpenSessionHandler(svc))
	s.Get("/:id", GetSessionHandler(svc))
	s.Delete("/:id", CloseSessionHandler(svc))
	s.Put("/:id/mode", SetModeHandler(svc))
	s.Put("/:id/branch", SelectBranchHandler(svc))
	s.Post("/:id/admin-check", AdminCheckHandler(svc))
	s.Post("/:id/branch-password", RegisterPasswordHandler(svc))
	s.Put("/:id/page", GoToPageHandler(svc))
	s.Post("/:id/page/next", NextPageHandler(svc))
	s.Post("/:id/page/prev", PrevPageHandler(svc))
	s.Get("/:id/export.csv", ExportCSVHandler(svc))
	s.Get("/:id/export.xlsx", ExportXLSXHandler(svc))
	s.Get("/:id/audit-logs", audit.ListAuditLogsHandler(logs, AuditBranchResolver(svc)))
}
