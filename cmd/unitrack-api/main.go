package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/unitrack-api/api/swagger"
	"github.com/noah-isme/unitrack-api/internal/handler"
	internalmiddleware "github.com/noah-isme/unitrack-api/internal/middleware"
	"github.com/noah-isme/unitrack-api/internal/repository"
	"github.com/noah-isme/unitrack-api/internal/service"
	"github.com/noah-isme/unitrack-api/pkg/cache"
	"github.com/noah-isme/unitrack-api/pkg/config"
	"github.com/noah-isme/unitrack-api/pkg/database"
	"github.com/noah-isme/unitrack-api/pkg/jobs"
	"github.com/noah-isme/unitrack-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/unitrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/unitrack-api/pkg/middleware/requestid"
	"github.com/noah-isme/unitrack-api/pkg/storage"
	"github.com/noah-isme/unitrack-api/pkg/supabase"
)

// @title UniTrack API
// @version 1.0.0
// @description Tracks university applications per user on top of Supabase.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients, err := supabase.New(cfg.Supabase, cfg.Env != config.EnvProduction && cfg.Log.Level == "debug")
	if err != nil {
		logr.Fatal("failed to init supabase clients", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.ReadinessCheck{}

	var store service.UniversityStore
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer closeDB(db, logr)
		store = repository.NewUniversityRepository(db)
		checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	default:
		store = repository.NewSupabaseUniversityRepository(clients.Table, cfg.Supabase.Table)
	}

	cacheRepo, redisClient := buildCacheRepository(cfg, logr)
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)

	authSvc := service.NewAuthService(
		repository.NewSupabaseAuthRepository(clients.Auth, cfg.Supabase.AnonKey),
		cache.NewMemory(cfg.Auth.SessionCacheTTL),
		validate,
		logr,
		service.AuthConfig{JWTSecret: cfg.Supabase.JWTSecret, SessionCacheTTL: cfg.Auth.SessionCacheTTL},
	)
	universitySvc := service.NewUniversityService(store, cacheSvc, metricsSvc, logr)
	formSvc := service.NewUniversityFormService(universitySvc, validate, logr)
	dashboardSvc := service.NewDashboardService(universitySvc)
	analyticsSvc := service.NewAnalyticsService(universitySvc, cacheSvc, logr)

	var reportHandler *handler.ReportHandler
	if cfg.Reports.Enabled {
		reportSvc, queue, err := buildReports(ctx, cfg, universitySvc, metricsSvc, validate, logr)
		if err != nil {
			logr.Fatal("failed to init reports", zap.Error(err))
		}
		defer queue.Stop()
		reportHandler = handler.NewReportHandler(reportSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		auth:        authSvc,
		rateLimiter: internalmiddleware.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst),
		authH:       handler.NewAuthHandler(authSvc),
		navigationH: handler.NewNavigationHandler(cfg.APIPrefix),
		dashboardH:  handler.NewDashboardHandler(dashboardSvc),
		universityH: handler.NewUniversityHandler(universitySvc, formSvc),
		analyticsH:  handler.NewAnalyticsHandler(analyticsSvc),
		settingsH:   handler.NewSettingsHandler(authSvc),
		reportH:     reportHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildCacheRepository(cfg *config.Config, logr *zap.Logger) (service.CacheRepository, *redis.Client) {
	if cfg.Analytics.CacheEnabled && cfg.Analytics.CacheDriver == config.CacheDriverRedis {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		return repository.NewCacheRepository(client, logr), client
	}
	return repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Analytics.CacheTTL)), nil
}

func buildReports(ctx context.Context, cfg *config.Config, universities *service.UniversityService, metricsSvc *service.MetricsService, validate *validator.Validate, logr *zap.Logger) (*service.ReportService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exporter := service.NewExportService(universities, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.ResultTTL,
	}, logr, nil, nil)

	jobsRepo := repository.NewReportJobRepository(cache.NewMemory(0))
	worker := service.NewReportWorker(jobsRepo, exporter, metricsSvc, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)

	reportSvc := service.NewReportService(jobsRepo, queue, exporter, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.ResultTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	reportSvc.StartCleanup(ctx)
	return reportSvc, queue, nil
}

func closeDB(db *sqlx.DB, logr *zap.Logger) {
	if err := db.Close(); err != nil {
		logr.Warn("failed to close postgres", zap.Error(err))
	}
}
