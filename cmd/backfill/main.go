package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/scamwatch/internal/incidents"
	"github.com/richxcame/scamwatch/internal/risk"
	"github.com/richxcame/scamwatch/pkg/config"
	"github.com/richxcame/scamwatch/pkg/database"
	"github.com/richxcame/scamwatch/pkg/eventbus"
	"github.com/richxcame/scamwatch/pkg/logger"
	redisclient "github.com/richxcame/scamwatch/pkg/redis"
	"github.com/richxcame/scamwatch/pkg/resilience"
	"go.uber.org/zap"
)

const serviceName = "risk-backfill"

type options struct {
	migrate  bool
	dryRun   bool
	indexed  bool
	pageSize int
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.BoolVar(&opts.migrate, "migrate", false, "apply database migrations before scoring")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "compute scores without writing them")
	fs.BoolVar(&opts.indexed, "indexed", false, "use the H3 spatial index for neighbour search")
	fs.IntVar(&opts.pageSize, "page-size", 0, "reports listed per page, overrides RISK_BACKFILL_PAGE_SIZE")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.pageSize < 0 {
		err := fmt.Errorf("-page-size must not be negative, got %d", opts.pageSize)
		fmt.Fprintln(fs.Output(), err)
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if opts.indexed {
		cfg.Risk.SpatialIndex = true
	}
	if opts.pageSize > 0 {
		cfg.Risk.BackfillPageSize = opts.pageSize
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, opts); err != nil {
		logger.Fatal("Backfill failed", zap.Error(err))
	}
}

func run(cfg *config.Config, opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.migrate {
		if err := database.RunMigrations(&cfg.Database); err != nil {
			return err
		}
	}

	pool, err := connectDatabase(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close(pool)

	breaker := resilience.NewCircuitBreaker(
		resilience.BuildSettings("risk-store", 60, 30, 3, 1),
		resilience.GracefulDegradation("postgres"),
	)
	repo := incidents.NewGuardedRepository(incidents.NewRepository(pool), breaker, resilience.ConservativeRetryConfig())
	service := incidents.NewService(repo, newEngine(cfg.Risk), cfg.Risk)

	if !opts.dryRun && cfg.Risk.CacheEnabled {
		redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, cached batches will expire on their own", zap.Error(err))
		} else {
			defer redisClient.Close()
			service.WithCache(incidents.NewScoreCache(redisClient, cfg.Risk.CacheTTL()))
		}
	}

	if !opts.dryRun && cfg.NATS.Enabled {
		bus, err := eventbus.Connect(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Warn("NATS unavailable, update event will not be published", zap.Error(err))
		} else {
			defer bus.Close()
			service.WithPublisher(bus)
		}
	}

	logger.Info("Starting risk score backfill",
		zap.Bool("dry_run", opts.dryRun),
		zap.Bool("spatial_index", cfg.Risk.SpatialIndex),
		zap.Int("page_size", cfg.Risk.BackfillPageSize),
	)

	summary, err := service.Backfill(ctx, opts.dryRun)
	if err != nil {
		return err
	}

	logSummary(summary)
	return nil
}

func logSummary(s *incidents.BackfillSummary) {
	logger.Info("Backfill complete",
		zap.Int64("total", s.Total),
		zap.Int("processed", s.Processed),
		zap.Int64("persisted", s.Persisted),
		zap.Bool("dry_run", s.DryRun),
		zap.Float64("average_score", s.AverageScore),
		zap.Int("min_score", s.MinScore),
		zap.Int("max_score", s.MaxScore),
		zap.Duration("duration", s.Duration),
	)
	logger.Info("Risk level distribution",
		zap.Int("critical", s.Levels.Critical),
		zap.Int("high", s.Levels.High),
		zap.Int("medium", s.Levels.Medium),
		zap.Int("low", s.Levels.Low),
	)
	for i, inc := range s.TopHighRisk {
		logger.Info("High risk incident",
			zap.Int("rank", i+1),
			zap.String("id", inc.ID),
			zap.Int("score", inc.Score),
			zap.String("category", string(inc.Category)),
			zap.String("place", inc.Place),
		)
	}
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
