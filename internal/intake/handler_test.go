package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/dbtest"
	"smartstore-backend/internal/httperr"
	"smartstore-backend/internal/metrics"
	"smartstore-backend/internal/models"
	"smartstore-backend/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const draftJSON = `{
	"branch_name": " 서울지부 ",
	"branch_rep": "홍길동",
	"branch_phone": "010-1234-5678",
	"business_name": "길동상회",
	"rep_name": "김대표",
	"phone_number": "02-123-4567",
	"address": "서울시 중구",
	"store_id": "gildong",
	"store_pw": "pw1234"
}`

// gatedStore blocks SubmitApplication until release is closed.
type gatedStore struct {
	store.RecordStore
	entered chan struct{}
	release chan struct{}
	err     error
}

func (g *gatedStore) SubmitApplication(ctx context.Context, r *models.ApplicationRecord) error {
	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	if g.err != nil {
		return g.err
	}
	return g.RecordStore.SubmitApplication(ctx, r)
}

type env struct {
	app     *fiber.App
	store   *gatedStore
	audit   *audit.Service
	metrics *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	gs := &gatedStore{RecordStore: store.NewGormStore(db).WithBcryptCost(bcrypt.MinCost)}
	as := audit.NewService(db)
	m := metrics.New()

	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(zap.NewNop())})
	app.Post("/api/applications", SubmitHandler(Deps{
		Store:        gs,
		Audit:        as,
		Metrics:      m,
		Log:          zap.NewNop(),
		JWTSecret:    testSecret,
		IdentityTTL:  time.Hour,
		StoreTimeout: time.Second,
	}))
	return &env{app: app, store: gs, audit: as, metrics: m}
}

func (e *env) post(t *testing.T, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/applications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSubmit(t *testing.T) {
	e := newEnv(t)

	resp := e.post(t, draftJSON)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out SubmitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, MsgSubmitted, out.Message)
	assert.NotZero(t, out.Record.ID)
	assert.Equal(t, "서울지부", out.Record.BranchName)
	assert.Equal(t, "pw1234", out.Record.StorePW)
	assert.NotEmpty(t, out.Record.Date)

	id, err := auth.ParseToken(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "서울지부", id.BranchName)
	assert.Equal(t, "홍길동", id.Name)
	assert.Equal(t, "010-1234-5678", id.Phone)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ApplicationsSubmitted))

	logs, err := e.audit.List(context.Background(), audit.Filter{BranchName: "서울지부"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionSubmit, logs[0].Action)
	assert.Equal(t, out.Record.ID, logs[0].EntityID)
	assert.NotContains(t, logs[0].Data, "pw1234")
	assert.NotContains(t, logs[0].Data, "gildong")
}

func TestSubmit_StoreFailure(t *testing.T) {
	e := newEnv(t)
	e.store.err = errors.New("connection refused")

	resp := e.post(t, draftJSON)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, httperr.MsgStoreFailed, out["error"])
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.StoreErrors.WithLabelValues("submit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(e.metrics.ApplicationsSubmitted))
}

func TestSubmit_BadBody(t *testing.T) {
	e := newEnv(t)
	resp := e.post(t, "{")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmit_DuplicateInFlight(t *testing.T) {
	e := newEnv(t)
	e.store.entered = make(chan struct{})
	e.store.release = make(chan struct{})

	first := make(chan int)
	go func() {
		req := httptest.NewRequest("POST", "/api/applications", strings.NewReader(draftJSON))
		req.Header.Set("Content-Type", "application/json")
		resp, err := e.app.Test(req, -1)
		if err != nil {
			first <- 0
			return
		}
		first <- resp.StatusCode
	}()
	<-e.store.entered

	// the busy check answers before reaching the store
	resp := e.post(t, draftJSON)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	close(e.store.release)
	assert.Equal(t, fiber.StatusCreated, <-first)

	// free again once the first one finished
	e.store.entered = nil
	resp = e.post(t, draftJSON)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
