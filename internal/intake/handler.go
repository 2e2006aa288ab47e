// Package intake takes new smart store applications.
package intake

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/history"
	"smartstore-backend/internal/httperr"
	"smartstore-backend/internal/metrics"
	"smartstore-backend/internal/models"
	"smartstore-backend/internal/store"
)

const MsgSubmitted = "정상적으로 기록되었습니다."

type SubmitRequest struct {
	BranchName   string `json:"branch_name"`
	BranchRep    string `json:"branch_rep"`
	BranchPhone  string `json:"branch_phone"`
	BusinessName string `json:"business_name"`
	RepName      string `json:"rep_name"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"address"`
	StoreID      string `json:"store_id"`
	StorePW      string `json:"store_pw"`
}

type SubmitResponse struct {
	Message string                   `json:"message"`
	Record  models.ApplicationRecord `json:"record"`
	Token   string                   `json:"token"`
}

type Auditor interface {
	WriteLog(ctx context.Context, opts audit.LogOptions) error
}

type Deps struct {
	Store        store.RecordStore
	Audit        Auditor
	Metrics      *metrics.Metrics
	Log          *zap.Logger
	JWTSecret    string
	IdentityTTL  time.Duration
	StoreTimeout time.Duration
}

// inFlight holds the drafts being stored right now.
type inFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (f *inFlight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inFlight) release(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}

func draftKey(r *models.ApplicationRecord) string {
	return strings.Join([]string{r.BranchName, r.BranchRep, history.Digits(r.BranchPhone), r.BusinessName}, "\x00")
}

func (d Deps) submit(ctx context.Context, rec *models.ApplicationRecord) error {
	if d.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.StoreTimeout)
		defer cancel()
	}
	return d.Store.SubmitApplication(ctx, rec)
}

func (req SubmitRequest) draft() *models.ApplicationRecord {
	return &models.ApplicationRecord{
		BranchName:   strings.TrimSpace(req.BranchName),
		BranchRep:    strings.TrimSpace(req.BranchRep),
		BranchPhone:  strings.TrimSpace(req.BranchPhone),
		BusinessName: strings.TrimSpace(req.BusinessName),
		RepName:      strings.TrimSpace(req.RepName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Address:      strings.TrimSpace(req.Address),
		StoreID:      strings.TrimSpace(req.StoreID),
		StorePW:      strings.TrimSpace(req.StorePW),
	}
}

// SubmitHandler stores one application and returns an identity token for the
// branch representative who sent it.
// POST /api/applications
func SubmitHandler(d Deps) fiber.Handler {
	busy := &inFlight{keys: make(map[string]struct{})}

	return func(c *fiber.Ctx) error {
		var body SubmitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 본문입니다")
		}
		rec := body.draft()

		key := draftKey(rec)
		if !busy.acquire(key) {
			return fiber.NewError(fiber.StatusConflict, "같은 신청을 저장하는 중입니다")
		}
		defer busy.release(key)

		if err := d.submit(c.UserContext(), rec); err != nil {
			return httperr.Store(d.Log, d.Metrics, "submit", err)
		}
		d.Metrics.ApplicationsSubmitted.Inc()

		if err := d.Audit.WriteLog(c.UserContext(), audit.LogOptions{
			BranchName:  rec.BranchName,
			Actor:       rec.BranchRep,
			EntityType:  "application",
			EntityID:    rec.ID,
			Action:      models.AuditActionSubmit,
			Description: "신청 접수: " + rec.BusinessName,
			Data: map[string]string{
				"business_name": rec.BusinessName,
				"rep_name":      rec.RepName,
			},
		}); err != nil {
			d.Log.Warn("감사 로그 기록 실패", zap.Uint("record", rec.ID), zap.Error(err))
		}

		id := history.Identity{BranchName: rec.BranchName, Name: rec.BranchRep, Phone: rec.BranchPhone}
		token, err := auth.GenerateToken(d.JWTSecret, id, d.IdentityTTL)
		if err != nil {
			// the record is stored; the caller can still claim an identity later
			d.Log.Error("신원 토큰 생성 실패", zap.Error(err))
		}

		return c.Status(fiber.StatusCreated).JSON(SubmitResponse{
			Message: MsgSubmitted,
			Record:  *rec,
			Token:   token,
		})
	}
}
