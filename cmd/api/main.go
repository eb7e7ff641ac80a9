package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/triage-engine/internal/api/http"
	"github.com/spec-kit/triage-engine/internal/api/http/handlers"
	"github.com/spec-kit/triage-engine/internal/auth"
	"github.com/spec-kit/triage-engine/internal/classify"
	"github.com/spec-kit/triage-engine/internal/config"
	"github.com/spec-kit/triage-engine/internal/events"
	"github.com/spec-kit/triage-engine/internal/observability"
	"github.com/spec-kit/triage-engine/internal/persistence"
	"github.com/spec-kit/triage-engine/internal/policy"
	"github.com/spec-kit/triage-engine/internal/repository"
	"github.com/spec-kit/triage-engine/internal/risk"
	"github.com/spec-kit/triage-engine/internal/service"
	"github.com/spec-kit/triage-engine/internal/similarity"
	"github.com/spec-kit/triage-engine/internal/worker"
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

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo   repository.TicketRepository
		corpusRepo   repository.CorpusRepository
		decisionRepo repository.DecisionRepository
		auditRepo    repository.AuditLogRepository
	)
	if pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		corpusRepo = repository.NewCorpusRepository(pool)
		decisionRepo = repository.NewDecisionRepository(pool)
		auditRepo = repository.NewAuditLogRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
		corpusRepo = repository.NewMemoryCorpusRepository()
		decisionRepo = repository.NewMemoryDecisionRepository()
		auditRepo = repository.NewMemoryAuditLogRepository()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartMetricsWorker(dispatcher, metrics, logger)

	verifier, err := auth.NewKeyVerifier(cfg.Auth.APIKeyHash, cfg.Auth.APIKey, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init api key verifier", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	triageService := service.NewTriageService(cfg.Engine, service.TriageDependencies{
		TicketRepo:   ticketRepo,
		CorpusRepo:   corpusRepo,
		DecisionRepo: decisionRepo,
		AuditRepo:    auditRepo,
		Classifier:   classify.NewKeywordClassifier(cfg.Engine.ClassifierFloor),
		Index:        similarity.NewKeywordIndex(corpusRepo),
		Assessor: risk.NewAssessor(risk.Params{
			Baseline:         cfg.Engine.RSIBaseline,
			SimilarityWeight: cfg.Engine.RSISimilarityWeight,
			ConsistencyBonus: cfg.Engine.RSIConsistencyBonus,
			ConsistencyCap:   cfg.Engine.RSIConsistencyCap,
			ConsistencyFloor: cfg.Engine.RSIConsistencyFloor,
			VarianceWeight:   cfg.Engine.RSIVarianceWeight,
		}),
		Policy:     policy.New(cfg.Engine.AutoResolveConfidence, cfg.Engine.AutoResolveSimilarity),
		Cache:      persistence.NewDecisionCache(redis, cfg.Engine.DecisionCacheTTL(), logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	analyticsService := service.NewAnalyticsService(decisionRepo, ticketRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(verifier, tokens),
		Triage:         handlers.NewTriageHandler(triageService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
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
