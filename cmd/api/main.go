package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/scamwatch/internal/incidents"
	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/config"
	"github.com/richxcame/scamwatch/pkg/database"
	"github.com/richxcame/scamwatch/pkg/eventbus"
	"github.com/richxcame/scamwatch/pkg/health"
	"github.com/richxcame/scamwatch/pkg/logger"
	redisclient "github.com/richxcame/scamwatch/pkg/redis"
	"github.com/richxcame/scamwatch/pkg/resilience"
	"github.com/richxcame/scamwatch/pkg/tracing"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("Risk API stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	var middlewares []gin.HandlerFunc
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     serviceName + "@" + serviceVersion,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		middlewares = append(middlewares, sentrygin.New(sentrygin.Options{Repanic: true}))
		logger.Info("Sentry error reporting enabled")
	}

	pool, err := connectDatabase(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close(pool)

	checks := map[string]func() error{
		"database": health.PostgresChecker(pool),
	}

	engine := newEngine(cfg.Risk)
	service := incidents.NewService(incidents.NewRepository(pool), engine, cfg.Risk)

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		bus, err = eventbus.Connect(cfg.NATS.URL, serviceName)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer bus.Close()

		service.WithPublisher(bus)
		checks["nats"] = health.NATSChecker(bus.Conn())
	}

	if cfg.Risk.CacheEnabled {
		redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()

		breaker := resilience.NewCircuitBreaker(
			resilience.BuildSettings("risk-cache", 60, 30, 5, 1),
			resilience.GracefulDegradation("redis"),
		)
		cache := incidents.NewGuardedCache(incidents.NewScoreCache(redisClient, cfg.Risk.CacheTTL()), breaker)
		service.WithCache(cache)
		checks["redis"] = health.RedisChecker(redisClient.Client)
		logger.Info("Batch score cache enabled", zap.Duration("ttl", cfg.Risk.CacheTTL()))

		// Reports are written by another service; drop cached batches when they change.
		if bus != nil {
			if err := incidents.NewEventHandler(cache).Register(ctx, bus); err != nil {
				return fmt.Errorf("subscribe to incident events: %w", err)
			}
		}
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, incidents.NewHandler(service), checks, middlewares...)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Risk API starting", zap.String("port", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down Risk API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func connectDatabase(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	result, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) (interface{}, error) {
		return database.NewPostgresPool(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return result.(*pgxpool.Pool), nil
}

func newEngine(cfg config.RiskConfig) *risk.Engine {
	engineCfg := risk.DefaultConfig()
	engineCfg.NeighborRadiusKm = cfg.NeighborRadiusKm
	return risk.NewEngine(engineCfg)
}
