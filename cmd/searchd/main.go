package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index"
	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/internal/loader"
	"github.com/kwhittaker/estatesearch/internal/searchcache"
	"github.com/kwhittaker/estatesearch/internal/server"
	"github.com/kwhittaker/estatesearch/internal/stream"
	"github.com/kwhittaker/estatesearch/pkg/config"
	"github.com/kwhittaker/estatesearch/pkg/health"
	"github.com/kwhittaker/estatesearch/pkg/kafka"
	"github.com/kwhittaker/estatesearch/pkg/logger"
	"github.com/kwhittaker/estatesearch/pkg/metrics"
	"github.com/kwhittaker/estatesearch/pkg/middleware"
	"github.com/kwhittaker/estatesearch/pkg/postgres"
	pkgredis "github.com/kwhittaker/estatesearch/pkg/redis"
	"github.com/kwhittaker/estatesearch/pkg/resilience"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	var pg *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{}, func() error {
		var connErr error
		pg, connErr = postgres.New(cfg.Postgres)
		return connErr
	})
	if err != nil {
		slog.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	engine := index.New()
	warmStart := time.Now()
	var snapshot document.Snapshot
	err = resilience.WithTimeout(ctx, 2*time.Minute, "warm-start-load", func(ctx context.Context) error {
		var loadErr error
		snapshot, loadErr = loader.New(pg.DB).Load(ctx)
		return loadErr
	})
	if err != nil {
		slog.Error("snapshot load failed", "error", err)
		os.Exit(1)
	}
	engine.WarmStart(snapshot)
	if m != nil {
		m.WarmStartDuration.Set(time.Since(warmStart).Seconds())
		st := engine.Stats()
		m.IndexDocuments.Set(float64(st.Docs))
		m.IndexTokens.Set(float64(st.Tokens))
	}

	var queryCache *searchcache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = searchcache.New(redisClient, cfg.Redis, m)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var invalidator stream.Invalidator
	if queryCache != nil {
		invalidator = queryCache
	}
	changeConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.SearchChanges,
		stream.HandleChange(engine, invalidator, m),
	)

	checker := health.NewChecker()
	checker.Register("index_engine", func(ctx context.Context) health.ComponentHealth {
		if engine.Ready() {
			st := engine.Stats()
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d docs indexed", st.Docs)}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "warm start incomplete"}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pg.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.New(engine, queryCache, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return changeConsumer.Start(gctx)
	})
	g.Go(func() error {
		slog.Info("search service listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("service error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}
