package audit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstore-backend/internal/dbtest"
	"smartstore-backend/internal/models"
)

func seed(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	entries := []LogOptions{
		{BranchName: "서울지부", Actor: "홍길동", EntityType: "application", EntityID: 1, Action: models.AuditActionSubmit, Data: map[string]string{"business_name": "가게1"}},
		{BranchName: "서울지부", EntityType: "branch_auth", Action: models.AuditActionAdminCheckFail},
		{BranchName: "부산지부", EntityType: "application", EntityID: 2, Action: models.AuditActionSubmit},
		{BranchName: "서울지부", EntityType: "branch_auth", Action: models.AuditActionAdminCheck},
	}
	for _, e := range entries {
		require.NoError(t, svc.WriteLog(ctx, e))
	}
}

func TestService_List(t *testing.T) {
	svc := NewService(dbtest.Open(t))
	seed(t, svc)
	ctx := context.Background()

	logs, err := svc.List(ctx, Filter{BranchName: "서울지부"})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.AuditActionAdminCheck, logs[0].Action)
	assert.Equal(t, `{"business_name":"가게1"}`, logs[2].Data)

	logs, err = svc.List(ctx, Filter{BranchName: "서울지부", EntityType: "branch_auth"})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = svc.List(ctx, Filter{BranchName: "서울지부", Action: models.AuditActionSubmit})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "홍길동", logs[0].Actor)

	logs, err = svc.List(ctx, Filter{BranchName: "서울지부", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = svc.List(ctx, Filter{})
	assert.Error(t, err)
}

func TestService_WriteLogNullData(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)

	require.NoError(t, svc.WriteLog(context.Background(), LogOptions{BranchName: "서울지부"}))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "null", entry.Data)
}

func TestListAuditLogsHandler(t *testing.T) {
	svc := NewService(dbtest.Open(t))
	seed(t, svc)

	app := fiber.New()
	app.Get("/logs", ListAuditLogsHandler(svc, func(c *fiber.Ctx) (string, error) {
		if c.Query("branch") == "locked" {
			return "", fiber.NewError(fiber.StatusForbidden, "no")
		}
		return c.Query("branch"), nil
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/logs?branch="+url.QueryEscape("부산지부"), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []AuditLogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "부산지부", body[0].BranchName)

	resp, err = app.Test(httptest.NewRequest("GET", "/logs?branch=locked", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
