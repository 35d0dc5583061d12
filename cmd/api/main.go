package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/servicenest/helpdesk/internal/api/http"
	"github.com/servicenest/helpdesk/internal/api/http/handlers"
	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/config"
	"github.com/servicenest/helpdesk/internal/events"
	"github.com/servicenest/helpdesk/internal/observability"
	"github.com/servicenest/helpdesk/internal/persistence"
	"github.com/servicenest/helpdesk/internal/repository"
	"github.com/servicenest/helpdesk/internal/service"
	"github.com/servicenest/helpdesk/internal/worker"
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

	rds := persistence.NewRedis(cfg.Redis, logger)
	defer rds.Close()

	pool := pg.PoolHandle()
	txManager := repository.NewTxManager(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	mergeRepo := repository.NewMergeRepository(pool)
	watcherRepo := repository.NewWatcherRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	orgRepo := repository.NewOrganizationRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	dashboardCache := service.NewDashboardCache(rds.Client, logger, cfg.Tickets.DashboardCacheTTL())

	notificationWorker := worker.NewNotificationWorker(cfg.Notification, logger, 256)
	notificationWorker.Start(ctx)
	defer notificationWorker.Stop()

	notificationService := service.NewNotificationService(watcherRepo, notificationWorker, logger)
	notificationService.Register(dispatcher)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, userRepo, tokenManager)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	ticketService := service.NewTicketService(cfg.Tickets, service.TicketDependencies{
		TicketRepo:     ticketRepo,
		HistoryRepo:    historyRepo,
		MergeRepo:      mergeRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		TxManager:      txManager,
		Dispatcher:     dispatcher,
		Cache:          dashboardCache,
	})
	commentService := service.NewCommentService(cfg.Tickets, commentRepo, attachmentRepo, ticketRepo, txManager, dispatcher)
	watcherService := service.NewWatcherService(watcherRepo, ticketRepo, dispatcher)
	directoryService := service.NewDirectoryService(orgRepo, teamRepo, roleRepo, userRepo, txManager)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rds),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, watcherService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Directory:      handlers.NewDirectoryHandler(directoryService),
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
