package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/kam/internal/application/service"
	"github.com/turtacn/kam/internal/config"
	"github.com/turtacn/kam/internal/domain/repository"
	domainservice "github.com/turtacn/kam/internal/domain/service"
	"github.com/turtacn/kam/internal/infrastructure/audit"
	"github.com/turtacn/kam/internal/infrastructure/authurl"
	"github.com/turtacn/kam/internal/infrastructure/bus"
	"github.com/turtacn/kam/internal/infrastructure/monitoring"
	"github.com/turtacn/kam/internal/infrastructure/persistence/file"
	"github.com/turtacn/kam/internal/infrastructure/persistence/gormstore"
	"github.com/turtacn/kam/internal/infrastructure/registrar"
	"github.com/turtacn/kam/internal/infrastructure/secrets"
	"github.com/turtacn/kam/internal/infrastructure/ssooidc"
	"github.com/turtacn/kam/internal/interfaces/http"
	"github.com/turtacn/kam/internal/interfaces/http/handlers"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/logger"
	"github.com/turtacn/kam/pkg/version"
)

func main() {
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info"})

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	ctx := context.Background()

	if cfg.Vault.Enabled {
		resolver, err := secrets.NewVaultResolver(cfg.Vault, appLogger)
		if err != nil {
			appLogger.Fatal(ctx, "Failed to create Vault resolver", err)
		}
		if err := cfg.ResolveSecrets(ctx, resolver); err != nil {
			appLogger.Fatal(ctx, "Failed to resolve secrets", err)
		}
	}

	tracing, err := monitoring.NewTracingManager(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracing", err)
	}

	metrics := monitoring.NewMetrics()
	clock := domainservice.NewSystemClock()

	urlStore, closeRedis := buildAuthURLStore(cfg, appLogger)
	defer closeRedis()

	historyRepo := buildHistoryRepository(ctx, cfg, appLogger)
	accountRepo := file.NewAccountStore(filepath.Join(cfg.DataDir, "accounts.json"))
	settingsRepo := file.NewSettingsStore(filepath.Join(cfg.DataDir, "settings.json"))

	auditSvc := audit.NewNoopAuditService()
	if cfg.Kafka.Enabled {
		auditSvc = audit.NewKafkaProducer(cfg.Kafka, appLogger)
	}

	progressBus := bus.NewProgressBus()
	defer progressBus.Close()
	emitter := bus.NewEmitter(appLogger)

	provider := ssooidc.NewClient(
		time.Duration(cfg.Auth.RequestTimeout)*time.Second, appLogger, clock)
	scriptRegistrar := registrar.NewScriptRegistrar(cfg.Batch, appLogger, func(line string) {
		appLogger.Debug(ctx, "registrar output", logger.Fields{"line": line})
	})

	authSvc := appservice.NewDeviceAuthService(
		provider, urlStore, emitter, auditSvc, metrics, clock, appLogger, &cfg.Auth)
	registrationSvc := appservice.NewRegistrationService(
		scriptRegistrar, historyRepo, accountRepo, settingsRepo,
		progressBus, emitter, auditSvc, metrics, clock, appLogger)
	historySvc := appservice.NewHistoryService(historyRepo, auditSvc, appLogger)
	settingsSvc := appservice.NewSettingsService(settingsRepo, appLogger)

	router := http.NewRouter(
		cfg, appLogger, tracing,
		handlers.NewHealthHandler(version.Version),
		handlers.NewAuthHandler(authSvc),
		handlers.NewRegistrationHandler(registrationSvc, progressBus, emitter),
		handlers.NewHistoryHandler(historySvc),
		handlers.NewSettingsHandler(settingsSvc),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(router.Start)
	group.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			appLogger.Info(groupCtx, "Shutdown signal received", logger.Fields{"signal": sig.String()})
		case <-groupCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer cancel()
		authSvc.Cancel(shutdownCtx)
		if err := router.Stop(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "HTTP shutdown failed", err)
		}
		return tracing.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		appLogger.Fatal(ctx, "Server exited with error", err)
	}
	appLogger.Info(ctx, "Server stopped")
}

func buildAuthURLStore(cfg *config.Config, log logger.Logger) (domainservice.AuthURLStore, func()) {
	if !cfg.Redis.Enabled {
		return authurl.NewMemoryStore(), func() {}
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Redis.Addresses,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	return authurl.NewRedisStore(client), func() {
		if err := client.Close(); err != nil {
			log.Warn(context.Background(), "Failed to close redis client", logger.Fields{"error": err.Error()})
		}
	}
}

func buildHistoryRepository(ctx context.Context, cfg *config.Config, log logger.Logger) repository.HistoryRepository {
	switch cfg.History.Backend {
	case "sqlite":
		store, err := gormstore.OpenSQLite(cfg.History.DSN)
		if err != nil {
			log.Fatal(ctx, "Failed to open sqlite history store", err)
		}
		return store
	case "postgres":
		store, err := gormstore.OpenPostgres(cfg.History.DSN)
		if err != nil {
			log.Fatal(ctx, "Failed to open postgres history store", err)
		}
		return store
	default:
		return file.NewHistoryStore(filepath.Join(cfg.DataDir, cfg.History.FilePath))
	}
}
