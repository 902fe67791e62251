package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/molscreen/internal/application/search"
	"github.com/turtacn/molscreen/internal/infrastructure/database/postgres"
	"github.com/turtacn/molscreen/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/turtacn/molscreen/internal/infrastructure/database/redis"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molscreen/internal/infrastructure/toolkit"
	httpiface "github.com/turtacn/molscreen/internal/interfaces/http"
	"github.com/turtacn/molscreen/internal/interfaces/http/handlers"
)

// NewServeCmd creates the serve command: wire every component and run the
// HTTP server until interrupted.
func NewServeCmd() *cobra.Command {
	var toolkitName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the screening HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cliCtx, toolkitName)
		},
	}
	cmd.Flags().StringVar(&toolkitName, "toolkit", "rdkit", "cheminformatics toolkit binding to open")
	return cmd
}

func runServe(parent context.Context, cliCtx *CLIContext, toolkitName string) error {
	cfg := cliCtx.Config
	logger := cliCtx.Logger

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Toolkit first: without a binding nothing else is worth starting.
	tk, err := toolkit.Open(toolkitName)
	if err != nil {
		return err
	}

	// Metrics.
	metrics := prometheus.NewNopAppMetrics()
	var collector prometheus.MetricsCollector
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
		}, logger.Named("metrics"))
		if err != nil {
			return err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	// Storage.
	if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
	if err != nil {
		return err
	}
	defer pool.Close()
	repo := repositories.NewRecordRepository(pool.Pool(), logger.Named("repo"))

	// Canonical-form cache.
	rdb, err := redisdb.NewClient(ctx, cfg.Redis, logger.Named("redis"))
	if err != nil {
		return err
	}
	defer rdb.Close()

	cacheOpts := []redisdb.CanonicalCacheOption{redisdb.WithMetrics(metrics)}
	if cfg.Redis.DefaultTTL > 0 {
		cacheOpts = append(cacheOpts, redisdb.WithTTL(cfg.Redis.DefaultTTL))
	}
	if cfg.Redis.KeyPrefix != "" {
		cacheOpts = append(cacheOpts, redisdb.WithPrefix(cfg.Redis.KeyPrefix+"canon:"))
	}
	cache := redisdb.NewCanonicalCache(rdb, logger.Named("cache"), cacheOpts...)

	// Application service.
	svc, err := search.NewService(repo, tk, cfg.Search, cache, metrics, logger.Named("search"))
	if err != nil {
		return err
	}

	// HTTP.
	router := httpiface.NewRouter(httpiface.RouterConfig{
		MoleculeHandler: handlers.NewMoleculeHandler(svc, logger.Named("http")),
		SearchHandler:   handlers.NewSearchHandler(svc, logger.Named("http")),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": handlers.PingerFunc(pool.HealthCheck),
			"redis":    handlers.PingerFunc(rdb.Ping),
		}, logger.Named("health")),
		Logger:    logger.Named("http"),
		Metrics:   metrics,
		Collector: collector,
		Mode:      cfg.Server.Mode,
	})
	server := httpiface.NewServer(cfg.Server, router, logger.Named("http"))

	logger.Info("molscreen starting",
		logging.String("version", Version),
		logging.String("toolkit", toolkitName),
		logging.Int("port", cfg.Server.Port),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop(context.Background())
	})
	return g.Wait()
}
