package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, warnings, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, defaultDSN, cfg.DatabaseDSN)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdentityTTL)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Len(t, warnings, 2)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DATABASE_DSN", "host=db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://smartstore.example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("STORE_TIMEOUT", "3s")

	cfg, warnings, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Empty(t, warnings)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}},
		{name: "bad duration", env: map[string]string{"JWT_SECRET": testSecret, "SESSION_TTL": "soon"}},
		{name: "negative duration", env: map[string]string{"JWT_SECRET": testSecret, "STORE_TIMEOUT": "-1s"}},
		{name: "bad int", env: map[string]string{"JWT_SECRET": testSecret, "REDIS_DB": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := Load()
			assert.Error(t, err)
		})
	}
}
