package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accountapp "github.com/vendaflow/backend/internal/application/account"
	couponapp "github.com/vendaflow/backend/internal/application/coupon"
	dashboardapp "github.com/vendaflow/backend/internal/application/dashboard"
	identityapp "github.com/vendaflow/backend/internal/application/identity"
	reportapp "github.com/vendaflow/backend/internal/application/report"
	syncapp "github.com/vendaflow/backend/internal/application/sync"
	domainmp "github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/auth"
	"github.com/vendaflow/backend/internal/infrastructure/cache"
	"github.com/vendaflow/backend/internal/infrastructure/config"
	"github.com/vendaflow/backend/internal/infrastructure/logger"
	infra "github.com/vendaflow/backend/internal/infrastructure/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/notify"
	"github.com/vendaflow/backend/internal/infrastructure/persistence"
	"github.com/vendaflow/backend/internal/infrastructure/telemetry"
	"github.com/vendaflow/backend/internal/interfaces/http/handler"
	"github.com/vendaflow/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting vendaflow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	tracer, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("failed to register database tracing", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	// Redis keeps the account invalid marks; without it the marks only
	// live until the process restarts
	var statusStore domainmp.AccountStatusStore
	redisStore, err := cache.NewRedisAccountStatusStore(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory account status store", zap.Error(err))
		statusStore = cache.NewInMemoryAccountStatusStore()
	} else {
		statusStore = redisStore
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	reportRepo := persistence.NewGormSalesReportRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)

	// Marketplace adapters
	meli := infra.NewMeliAdapter(cfg.Marketplace.Meli, log)
	shopee := infra.NewShopeeAdapter(cfg.Marketplace.Shopee, log)
	platforms := infra.NewRegistry(meli, shopee)

	// Progress streaming
	registry := notify.NewRegistry(notify.WithLogger(log))

	// Application services
	sessions := auth.NewSessionService(cfg.Session)
	authService := identityapp.NewAuthService(userRepo, sessions, log)
	accountService := accountapp.NewService(accountRepo, saleRepo, statusStore, log)
	tokenService := syncapp.NewTokenService(accountRepo, platforms, statusStore, log)
	worker := syncapp.NewWorker(platforms, saleRepo, tokenService, registry, log,
		syncapp.WithPageSize(cfg.Sync.PageSize))
	launcher := syncapp.NewLauncher(accountRepo, worker, registry, log,
		syncapp.WithRunTimeout(cfg.Sync.RunTimeout))
	statsService := dashboardapp.NewStatsService(reportRepo, log)
	dreService := reportapp.NewDREService(reportRepo, log)
	couponService := couponapp.NewService(couponRepo, log)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Account:   handler.NewAccountHandler(accountService, tokenService),
		Sync:      handler.NewSyncHandler(launcher, registry, log, cfg.Sync.SSEHeartbeat),
		Sales:     handler.NewSalesHandler(saleRepo),
		Dashboard: handler.NewDashboardHandler(statsService, dreService),
		Coupon:    handler.NewCouponHandler(couponService),
		System:    handler.NewSystemHandler(db),
	}

	routerOpts := []router.Option{router.WithCORSOrigins(cfg.HTTP.CORSAllowOrigins)}
	if cfg.Telemetry.Enabled {
		routerOpts = append(routerOpts, router.WithTracing(cfg.Telemetry.ServiceName))
	}
	router.New(engine, sessions, handlers, log, routerOpts...).Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited gracefully")
}
