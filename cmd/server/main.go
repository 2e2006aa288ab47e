package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"smartstore-backend/internal/admin"
	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/config"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/httperr"
	"smartstore-backend/internal/intake"
	"smartstore-backend/internal/logging"
	"smartstore-backend/internal/metrics"
	"smartstore-backend/internal/store"
	"smartstore-backend/internal/viewer"
	"smartstore-backend/internal/viewsession"
)

func main() {
	// .env 는 선택 사항
	_ = godotenv.Load()

	cfg, warnings, err := config.Load()
	if err != nil {
		log.Fatalf("설정 오류: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("로거 생성 실패: %v", err)
	}
	defer logger.Sync()

	for _, w := range warnings {
		logger.Warn(string(w))
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("DB 연결 실패", zap.Error(err))
	}

	sessions, stopSessions := openSessionStore(cfg, logger)
	defer stopSessions()

	m := metrics.New()
	records := store.NewGormStore(db)
	auditSvc := audit.NewService(db)
	views := viewer.NewService(records, sessions, auditSvc, m, logger, cfg.StoreTimeout)

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler(logger),
	})

	app.Use(recover.New())
	app.Use(logging.Middleware(logger))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))

	app.Get("/healthcheck", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", m.Handler())

	api := app.Group("/api")
	api.Use(auth.IdentityMiddleware(cfg.JWTSecret))

	// 신원
	api.Post("/auth/identity", auth.ClaimIdentityHandler(cfg.JWTSecret, cfg.IdentityTTL))
	api.Get("/auth/me", auth.MeHandler())

	// 신청 접수
	api.Post("/applications", intake.SubmitHandler(intake.Deps{
		Store:        records,
		Audit:        auditSvc,
		Metrics:      m,
		Log:          logger,
		JWTSecret:    cfg.JWTSecret,
		IdentityTTL:  cfg.IdentityTTL,
		StoreTimeout: cfg.StoreTimeout,
	}))

	// 관리자 지부 선택
	api.Get("/branches", admin.ListBranchesHandler(records, logger, m, cfg.StoreTimeout))

	// 신청 현황 조회
	viewer.Register(api.Group("/history"), views, auditSvc)

	go func() {
		logger.Info("서버 시작", zap.String("port", cfg.HTTPPort))
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Fatal("서버 실행 실패", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("서버 종료 중")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("서버 종료 실패", zap.Error(err))
	}
}

// openSessionStore uses Redis when REDIS_ADDR is set and an in-process store
// with a cron sweeper otherwise.
func openSessionStore(cfg *config.Config, logger *zap.Logger) (viewsession.Store, func()) {
	if cfg.RedisAddr != "" {
		client, err := viewsession.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("Redis 연결 실패", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("뷰 세션 저장소: redis", zap.String("addr", cfg.RedisAddr))
		return viewsession.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }
	}

	mem := viewsession.NewMemoryStore(cfg.SessionTTL)
	sweeper, err := viewsession.StartSweeper(mem, logger)
	if err != nil {
		logger.Fatal("세션 정리 작업 등록 실패", zap.Error(err))
	}
	logger.Info("뷰 세션 저장소: memory")
	return mem, func() { <-sweeper.Stop().Done() }
}
