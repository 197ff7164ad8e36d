package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/training-service/internal/api/http"
	"github.com/spec-kit/training-service/internal/api/http/handlers"
	"github.com/spec-kit/training-service/internal/auth"
	"github.com/spec-kit/training-service/internal/config"
	"github.com/spec-kit/training-service/internal/docstore"
	"github.com/spec-kit/training-service/internal/events"
	"github.com/spec-kit/training-service/internal/extract"
	"github.com/spec-kit/training-service/internal/llm"
	"github.com/spec-kit/training-service/internal/observability"
	"github.com/spec-kit/training-service/internal/prompt"
	"github.com/spec-kit/training-service/internal/repository"
	"github.com/spec-kit/training-service/internal/service"
	"github.com/spec-kit/training-service/internal/worker"
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

	store, err := newStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}
	defer store.Close()

	metrics := observability.NewMetrics()

	userRepo := repository.NewUserRepository(store)
	catalogRepo := repository.NewCatalogRepository(store)
	resultRepo := repository.NewResultRepository(store)
	assignmentRepo := repository.NewAssignmentRepository(store)

	generator := llm.NewGeminiClient(cfg.Model, logger, metrics)
	extractor := extract.NewPDFExtractor()
	builder := prompt.NewBuilder(prompt.LoadKnowledge(cfg.Knowledge, logger))
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		CatalogRepo: catalogRepo,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:    userRepo,
		CatalogRepo: catalogRepo,
		Dispatcher:  dispatcher,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		CatalogRepo: catalogRepo,
		UserRepo:    userRepo,
		Extractor:   extractor,
	})
	scenarioService := service.NewScenarioService(service.ScenarioDependencies{
		CatalogRepo:    catalogRepo,
		ResultRepo:     resultRepo,
		AssignmentRepo: assignmentRepo,
		Auth:           authService,
		Generator:      generator,
		Builder:        builder,
		Dispatcher:     dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		CatalogRepo:    catalogRepo,
		UserRepo:       userRepo,
		AssignmentRepo: assignmentRepo,
		Auth:           authService,
		Generator:      generator,
		Builder:        builder,
		Dispatcher:     dispatcher,
	})
	reportingService := service.NewReportingService(service.ReportingDependencies{
		ResultRepo:     resultRepo,
		AssignmentRepo: assignmentRepo,
		UserRepo:       userRepo,
		Auth:           authService,
	})
	analysisService := service.NewAnalysisService(service.AnalysisDependencies{
		CatalogRepo: catalogRepo,
		ResultRepo:  resultRepo,
		Generator:   generator,
		Builder:     builder,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), authService)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 32 * 1024 * 1024, // call recordings
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService, authService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Scenarios:      handlers.NewScenariosHandler(scenarioService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		Reviews:        handlers.NewReviewsHandler(scenarioService, assignmentService),
		Analysis:       handlers.NewAnalysisHandler(analysisService),
		Reports:        handlers.NewReportsHandler(reportingService),
		Admin:          handlers.NewAdminHandler(scenarioService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func newStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return docstore.NewPostgresStore(ctx, cfg.PostgresDSN, logger)
	case config.BackendRedis:
		return docstore.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
	default:
		return docstore.NewFileStore(cfg.DataDir, logger)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
