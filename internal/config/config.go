package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=smartstore port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort       string
	DatabaseDSN    string
	DBMaxOpenConns int
	JWTSecret      string
	CORSOrigins    string

	// 비어 있으면 뷰 세션은 메모리에 보관
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL   time.Duration // 뷰 세션 비활성 만료
	IdentityTTL  time.Duration // 신원 토큰 유효기간
	StoreTimeout time.Duration // 저장소 호출 1회 제한 시간

	LogLevel string
}

// Warning is a non-fatal configuration problem the caller should log.
type Warning string

// Load reads the configuration from the environment.
func Load() (*Config, []Warning, error) {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.DBMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, nil, err
	}
	if cfg.IdentityTTL, err = getDuration("IDENTITY_TTL", 24*time.Hour); err != nil {
		return nil, nil, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 10*time.Second); err != nil {
		return nil, nil, err
	}

	// 운영 보안 점검
	if cfg.JWTSecret == "" {
		return nil, nil, errors.New("JWT_SECRET 환경 변수가 설정되지 않았습니다")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, nil, errors.New("JWT_SECRET은 최소 32자 이상이어야 합니다")
	}

	var warnings []Warning
	if cfg.DatabaseDSN == defaultDSN {
		warnings = append(warnings, "DATABASE_DSN 기본값 사용 중, 운영 환경에서는 반드시 설정하세요")
	}
	if cfg.CORSOrigins == defaultCORSOrigins {
		warnings = append(warnings, "CORS_ALLOWED_ORIGINS 기본값 사용 중, 운영 도메인을 설정하세요")
	}

	return cfg, warnings, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s 값이 올바르지 않습니다: %q", key, v)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s 값이 올바르지 않습니다: %q", key, v)
	}
	return d, nil
}
