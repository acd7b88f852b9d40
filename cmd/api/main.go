package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/repair-tracker/internal/api/http"
	"github.com/spec-kit/repair-tracker/internal/api/http/handlers"
	"github.com/spec-kit/repair-tracker/internal/auth"
	"github.com/spec-kit/repair-tracker/internal/config"
	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/events"
	"github.com/spec-kit/repair-tracker/internal/observability"
	"github.com/spec-kit/repair-tracker/internal/persistence"
	"github.com/spec-kit/repair-tracker/internal/repository"
	"github.com/spec-kit/repair-tracker/internal/service"
	"github.com/spec-kit/repair-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	repairRepo := repository.NewRepairRepository(pool)
	partRepo := repository.NewInventoryRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool, domain.DefaultSettingsWithSLA(
		cfg.SLA.DiagnosisHours, cfg.SLA.WorkingHours, cfg.SLA.PartsHours))

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		RepairRepo:   repairRepo,
		SettingsRepo: settingsRepo,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
	})
	inventoryService := service.NewInventoryService(service.InventoryDependencies{
		PartRepo:   partRepo,
		Lifecycle:  lifecycleService,
		Dispatcher: dispatcher,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		RepairRepo:   repairRepo,
		SettingsRepo: settingsRepo,
		Cache:        redis.Client,
		CacheTTL:     cfg.Analytics.CacheTTL(),
		Logger:       logger,
	})
	settingsService := service.NewSettingsService(settingsRepo)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), authService)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Repairs:        handlers.NewRepairsHandler(lifecycleService, settingsService),
		Inventory:      handlers.NewInventoryHandler(inventoryService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService, settingsService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
