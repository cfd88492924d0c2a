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

	httptransport "github.com/campus-ops/grievance-service/internal/api/http"
	"github.com/campus-ops/grievance-service/internal/api/http/handlers"
	"github.com/campus-ops/grievance-service/internal/auth"
	"github.com/campus-ops/grievance-service/internal/blobstore"
	"github.com/campus-ops/grievance-service/internal/config"
	"github.com/campus-ops/grievance-service/internal/events"
	"github.com/campus-ops/grievance-service/internal/notify"
	"github.com/campus-ops/grievance-service/internal/observability"
	"github.com/campus-ops/grievance-service/internal/persistence"
	"github.com/campus-ops/grievance-service/internal/repository"
	"github.com/campus-ops/grievance-service/internal/service"
	"github.com/campus-ops/grievance-service/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	grievanceRepo := repository.NewGrievanceRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	attachmentStore, err := blobstore.NewDiskStore(cfg.Storage.AttachmentDir)
	if err != nil {
		logger.Fatal("failed to init attachment store", zap.Error(err))
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		StaffRepo:         staffRepo,
		PasswordResetRepo: resetRepo,
	})
	staffService := service.NewStaffService(service.StaffDependencies{
		StaffRepo:     staffRepo,
		UserRepo:      userRepo,
		GrievanceRepo: grievanceRepo,
		Dispatcher:    dispatcher,
		Cache:         redis.Client,
		CacheTTL:      time.Duration(cfg.Workflow.AdminStatusCacheTTLSec) * time.Second,
		MasterAdminID: cfg.Workflow.MasterAdminID,
		Logger:        logger,
	})
	grievanceService := service.NewGrievanceService(service.GrievanceDependencies{
		GrievanceRepo: grievanceRepo,
		MessageRepo:   messageRepo,
		HistoryRepo:   historyRepo,
		UserRepo:      userRepo,
		Directory:     staffService,
		Dispatcher:    dispatcher,
		WindowHours:   cfg.Workflow.VerificationWindowHours,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		GrievanceRepo: grievanceRepo,
		StaffRepo:     staffRepo,
		UserRepo:      userRepo,
		HistoryRepo:   historyRepo,
		Directory:     staffService,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	mailer := notify.New(cfg.Notification)
	notificationService := service.NewNotificationService(mailer, userRepo, logger)
	worker.StartNotificationWorker(notificationService, dispatcher)

	sweeper := worker.NewVerificationSweeper(grievanceRepo, cfg.Workflow.VerificationWindow(), cfg.Workflow.SweepInterval(), logger)
	go sweeper.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, staffRepo)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:           handlers.NewUsersHandler(authService),
		Grievances:      handlers.NewGrievancesHandler(grievanceService),
		StaffGrievances: handlers.NewStaffGrievancesHandler(grievanceService),
		AdminGrievances: handlers.NewAdminGrievancesHandler(grievanceService, assignmentService),
		AdminStaff:      handlers.NewAdminStaffHandler(staffService),
		Attachments:     handlers.NewAttachmentsHandler(attachmentStore),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
