package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/signals-service/internal/api/http"
	"github.com/spec-kit/signals-service/internal/api/http/handlers"
	"github.com/spec-kit/signals-service/internal/auth"
	"github.com/spec-kit/signals-service/internal/config"
	"github.com/spec-kit/signals-service/internal/events"
	"github.com/spec-kit/signals-service/internal/notification"
	"github.com/spec-kit/signals-service/internal/observability"
	"github.com/spec-kit/signals-service/internal/persistence"
	"github.com/spec-kit/signals-service/internal/reporting"
	"github.com/spec-kit/signals-service/internal/repository"
	"github.com/spec-kit/signals-service/internal/service"
	"github.com/spec-kit/signals-service/internal/worker"
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
	signalRepo := repository.NewSignalRepository(pool)
	statusRepo := repository.NewStatusRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	priorityRepo := repository.NewPriorityRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	indicators := reporting.NewDefaultRegistry(pool)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	signalService := service.NewSignalService(signalRepo, statusRepo, categoryRepo, priorityRepo, locationRepo, dispatcher, logger)
	categoryService := service.NewCategoryService(categoryRepo, redis.Client, cfg.Redis.TermsTTL, logger)
	departmentService := service.NewDepartmentService(departmentRepo, categoryRepo, logger)
	authService := service.NewAuthService(userRepo, tokenManager, cfg.Auth.BcryptCost, logger)

	frontendURL, ok := cfg.Frontend.BaseURL()
	if !ok {
		logger.Warn("no frontend URL mapped for environment",
			zap.String("environment", cfg.Frontend.Environment))
	}

	mailer := notification.NewSMTPMailer(cfg.Email)
	notifier := notification.NewNotifier(mailer, logger, metrics, cfg.Email.NoReply)
	notifier.Register(notification.NewHandhavingOROost(cfg.Email.HandhavingOROostAddress, frontendURL, time.Now))
	notifier.Register(notification.NewFlexHoreca(cfg.Email.FlexHorecaAddress, frontendURL, time.Now))

	notificationWorker := worker.NewNotificationWorker(signalRepo, notifier, logger)
	notificationWorker.Subscribe(dispatcher)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Signals:         handlers.NewSignalsHandler(signalService),
		SignalResources: handlers.NewSignalResourcesHandler(signalService),
		Categories:      handlers.NewCategoriesHandler(categoryService),
		Departments:     handlers.NewDepartmentsHandler(departmentService),
		Reports:         handlers.NewReportsHandler(indicators),
		Users:           handlers.NewUsersHandler(authService),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
