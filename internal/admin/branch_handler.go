// Package admin serves what the admin mode needs besides the history view.
package admin

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"smartstore-backend/internal/httperr"
	"smartstore-backend/internal/metrics"
	"smartstore-backend/internal/store"
)

type BranchResponse struct {
	Name        string `json:"name"`
	RecordCount int    `json:"record_count"`
	HasPassword bool   `json:"has_password"`
}

// ----------------------------------------
// 지부 목록
// ----------------------------------------

// ListBranchesHandler lists every branch that has records or a password
// entry, sorted by name, for the admin branch selector.
// GET /api/branches
func ListBranchesHandler(s store.RecordStore, log *zap.Logger, m *metrics.Metrics, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		records, err := s.ListRecords(ctx)
		if err != nil {
			return httperr.Store(log, m, "list_records", err)
		}
		auths, err := s.ListBranchAuths(ctx)
		if err != nil {
			return httperr.Store(log, m, "list_branch_auths", err)
		}

		byName := make(map[string]*BranchResponse)
		entry := func(name string) *BranchResponse {
			b, ok := byName[name]
			if !ok {
				b = &BranchResponse{Name: name}
				byName[name] = b
			}
			return b
		}
		for _, r := range records {
			if r.BranchName == "" {
				continue
			}
			entry(r.BranchName).RecordCount++
		}
		for i := range auths {
			entry(auths[i].BranchName).HasPassword = auths[i].Registered()
		}

		res := make([]BranchResponse, 0, len(byName))
		for _, b := range byName {
			res = append(res, *b)
		}
		sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })

		return c.JSON(res)
	}
}
