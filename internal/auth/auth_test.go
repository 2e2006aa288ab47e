package auth

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstore-backend/internal/history"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var hong = history.Identity{BranchName: "서울지부", Name: "홍길동", Phone: "010-1234-5678"}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, hong, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, hong, got)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(testSecret, hong, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err)

	valid, err := GenerateToken(testSecret, hong, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("another-secret-another-secret-xx", valid)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &IdentityClaims{Name: "x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, unsigned)
	assert.Error(t, err)
}

func newApp() *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	api.Use(IdentityMiddleware(testSecret))
	api.Post("/auth/identity", ClaimIdentityHandler(testSecret, time.Hour))
	api.Get("/auth/me", MeHandler())
	return app
}

func me(t *testing.T, app *fiber.App, header string) (int, IdentityResponse) {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body IdentityResponse
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestIdentityMiddleware(t *testing.T) {
	app := newApp()
	token, err := GenerateToken(testSecret, hong, time.Hour)
	require.NoError(t, err)

	status, body := me(t, app, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, history.Identity{}, body.Identity)

	status, body = me(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, hong, body.Identity)

	status, _ = me(t, app, "Token "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = me(t, app, "Bearer garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestClaimIdentityHandler(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest("POST", "/api/auth/identity",
		strings.NewReader(`{"branch_name":" 서울지부 ","name":"홍길동","phone":"010-1234-5678"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body IdentityResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, hong, body.Identity)

	got, err := ParseToken(testSecret, body.Token)
	require.NoError(t, err)
	assert.Equal(t, hong, got)
}
