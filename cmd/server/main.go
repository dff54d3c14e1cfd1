package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/buyerdesk/backend/api/handler"
	"github.com/buyerdesk/backend/internal/config"
	"github.com/buyerdesk/backend/internal/infrastructure/importlog"
	"github.com/buyerdesk/backend/internal/infrastructure/monitor"
	pgInfra "github.com/buyerdesk/backend/internal/infrastructure/postgres"
	redisInfra "github.com/buyerdesk/backend/internal/infrastructure/redis"
	"github.com/buyerdesk/backend/internal/middleware"
	"github.com/buyerdesk/backend/internal/router"
	"github.com/buyerdesk/backend/internal/services"
	"github.com/buyerdesk/backend/internal/services/lifecycle"
	"github.com/buyerdesk/backend/pkg/httpcontext"
	"github.com/buyerdesk/backend/pkg/logger"
	"github.com/buyerdesk/backend/repository/postgres"
	redisRepo "github.com/buyerdesk/backend/repository/redis"
	authUC "github.com/buyerdesk/backend/usecase/auth"
	buyerUC "github.com/buyerdesk/backend/usecase/buyer"
	exporterUC "github.com/buyerdesk/backend/usecase/exporter"
	importerUC "github.com/buyerdesk/backend/usecase/importer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	reportStore, err := importlog.Open(cfg.ImportLog.Path, "import_reports")
	if err != nil {
		zapLogger.Fatal("failed to open import report store", zap.Error(err))
	}
	manager.Register("import_reports", func(ctx context.Context) error {
		return reportStore.Close()
	})

	mon := monitor.New(pool, redisClient, reportStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	buyerRepo := postgres.NewBuyerRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	rateLimiter := redisRepo.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	janitor := services.NewReportJanitor(reportStore, zapLogger, services.JanitorConfig{
		Interval:  cfg.ImportLog.CleanupInterval,
		Retention: cfg.ImportLog.Retention,
	})
	janitor.Start()
	manager.Register("report_janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.Session.TTL, zapLogger)
	buyerUseCase := buyerUC.New(buyerRepo, zapLogger)
	importerUseCase := importerUC.New(buyerRepo, reportStore, zapLogger)
	exporterUseCase := exporterUC.New(buyerRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Buyer:    apiHandler.NewBuyerHandler(buyerUseCase, ctxAdapter, zapLogger),
		Transfer: apiHandler.NewTransferHandler(importerUseCase, exporterUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, authUseCase, zapLogger)
	rateLimitMiddleware := middleware.RateLimit(rateLimiter, zapLogger)
	r := router.New(handlers, authMiddleware, rateLimitMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
