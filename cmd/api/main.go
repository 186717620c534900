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

	httptransport "github.com/spec-kit/identity-registry/internal/api/http"
	"github.com/spec-kit/identity-registry/internal/api/http/handlers"
	"github.com/spec-kit/identity-registry/internal/auth"
	"github.com/spec-kit/identity-registry/internal/config"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/observability"
	"github.com/spec-kit/identity-registry/internal/persistence"
	"github.com/spec-kit/identity-registry/internal/repository"
	"github.com/spec-kit/identity-registry/internal/repository/sqlite"
	"github.com/spec-kit/identity-registry/internal/service"
	"github.com/spec-kit/identity-registry/internal/token"
	"github.com/spec-kit/identity-registry/internal/worker"
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

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	readiness := map[string]handlers.Pinger{"store": store}

	var ledger token.Service
	switch cfg.Token.Ledger {
	case config.TokenLedgerRedis:
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redis.Close()
		ledger = token.NewRedisLedger(redis.Client, cfg.Token.KeyPrefix)
		readiness["redis"] = redis
	default:
		logger.Warn("using in-memory token ledger; tokens do not survive restarts")
		ledger = token.NewMemoryLedger()
	}
	readiness["token_ledger"] = ledger

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	activityService := service.NewActivityService(dispatcher, logger, cfg.Notification)
	worker.StartActivityWorker(activityService)

	authService := service.NewAuthService(cfg.Auth, store.Accounts(), logger)
	if _, _, err := authService.SeedAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	identityService := service.NewIdentityService(service.IdentityDependencies{
		Store:      store,
		Tokens:     ledger,
		Authority:  token.NewAuthority(),
		Metadata:   cfg.Token,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	registryService := service.NewRegistryService(store, dispatcher, logger)
	pollService := service.NewPollService(service.PollDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Accounts())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Accounts:       handlers.NewAccountsHandler(authService),
		Registry:       handlers.NewRegistryHandler(registryService, activityService),
		Identities:     handlers.NewIdentitiesHandler(identityService),
		Polls:          handlers.NewPollsHandler(pollService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// openStore selects the persistence backend. A postgres driver without a DSN
// falls back to the embedded SQLite file.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func()) {
	if cfg.Store.Driver == config.StoreDriverPostgres && cfg.Postgres.DSN != "" {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		return repository.NewPostgresStore(pg.PoolHandle()), pg.Close
	}

	if cfg.Store.Driver == config.StoreDriverPostgres {
		logger.Warn("POSTGRES_DSN not provided; falling back to sqlite", zap.String("path", cfg.Store.SQLitePath))
	}
	db, err := persistence.OpenSQLite(ctx, cfg.Store.SQLitePath, logger)
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	store, err := sqlite.NewStore(ctx, db)
	if err != nil {
		logger.Fatal("failed to prepare sqlite store", zap.Error(err))
	}
	return store, func() { _ = store.Close() }
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
