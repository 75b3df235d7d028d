package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/auth"
	"github.com/mamadbah2/farmsync/internal/cache"
	"github.com/mamadbah2/farmsync/internal/config"
	"github.com/mamadbah2/farmsync/internal/repository/mongodb"
	"github.com/mamadbah2/farmsync/internal/repository/sheets"
	"github.com/mamadbah2/farmsync/internal/scheduler"
	"github.com/mamadbah2/farmsync/internal/server/handlers"
	"github.com/mamadbah2/farmsync/internal/server/router"
	"github.com/mamadbah2/farmsync/internal/service/accounts"
	"github.com/mamadbah2/farmsync/internal/service/finance"
	"github.com/mamadbah2/farmsync/internal/service/harvest"
	"github.com/mamadbah2/farmsync/internal/service/inventory"
	"github.com/mamadbah2/farmsync/internal/service/reporting"
	"github.com/mamadbah2/farmsync/internal/service/workers"
	"github.com/mamadbah2/farmsync/pkg/clients/weather"
	"github.com/mamadbah2/farmsync/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoRepo, err := mongodb.NewRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		baseLogger.Fatal("failed to create mongodb indexes", zap.Error(err))
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("google sheets not configured, ledger mirror disabled")
	}
	mirror := sheets.NewMirror(sheetsRepo, baseLogger.Named("repo.sheets.mirror"))

	redisCache := cache.New(ctx, cfg.Redis, baseLogger.Named("cache"))
	defer func() { _ = redisCache.Close() }()

	jwtManager := auth.NewJWTManager(cfg.Auth)

	financeSvc := finance.NewService(mongoRepo, mirror, redisCache, baseLogger.Named("svc.finance"))
	harvestSvc := harvest.NewService(mongoRepo, financeSvc, redisCache, baseLogger.Named("svc.harvest"))
	workersSvc := workers.NewService(mongoRepo, financeSvc, redisCache, cfg.Payroll.PeriodDays, baseLogger.Named("svc.workers"))
	inventorySvc := inventory.NewService(mongoRepo, baseLogger.Named("svc.inventory"))
	accountsSvc := accounts.NewService(mongoRepo, jwtManager, baseLogger.Named("svc.accounts"))

	var weatherProvider reporting.WeatherProvider
	if cfg.Weather.Enabled() {
		weatherProvider = weather.NewClient(cfg.Weather)
	} else {
		baseLogger.Info("farm location not configured, dashboard weather disabled")
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid reporting timezone", zap.Error(err))
	}
	reportingSvc := reporting.NewService(mongoRepo, redisCache, weatherProvider, mirror, reporting.Options{
		TrendMonths: cfg.Reporting.TrendMonths,
		Location:    location,
	}, baseLogger.Named("svc.reporting"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := router.New(router.Handlers{
		Auth:      handlers.NewAuthHandler(accountsSvc, baseLogger.Named("handlers.auth")),
		Harvest:   handlers.NewHarvestHandler(harvestSvc, baseLogger.Named("handlers.harvest")),
		Workers:   handlers.NewWorkersHandler(workersSvc, baseLogger.Named("handlers.workers")),
		Finance:   handlers.NewFinanceHandler(financeSvc, baseLogger.Named("handlers.finance")),
		Inventory: handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory")),
		Reports:   handlers.NewReportsHandler(reportingSvc, baseLogger.Named("handlers.reports")),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"mongodb": mongoRepo.Ping,
			"redis":   redisHealth(redisCache),
		}, baseLogger.Named("handlers.health")),
	}, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tokens:         jwtManager,
		Registry:       registry,
	}, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, redisCache, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// redisHealth reports a configured but unreachable Redis as down.
func redisHealth(c *cache.Cache) handlers.HealthCheck {
	return func(ctx context.Context) error {
		if !c.Healthy(ctx) {
			return errors.New("redis ping failed")
		}
		return nil
	}
}
