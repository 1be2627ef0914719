package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics/snapshot"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/history"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/cache"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/handler"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/router"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/skills"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/migrations"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting match service", "port", cfg.Server.Port, "match_mode", cfg.Matcher.MatchMode)

	taxonomy, err := loadTaxonomy(cfg.Matcher.TaxonomyPath)
	if err != nil {
		slog.Error("failed to load skill taxonomy", "error", err, "path", cfg.Matcher.TaxonomyPath)
		os.Exit(1)
	}
	mode, err := skills.ParseMatchMode(cfg.Matcher.MatchMode)
	if err != nil {
		slog.Error("invalid match mode", "error", err)
		os.Exit(1)
	}
	extractor := skills.NewExtractor(taxonomy, mode)
	sc := scorer.New(extractor, cfg.Matcher.MaxInputChars)
	slog.Info("skill taxonomy loaded",
		"skills", taxonomy.Len(),
		"ignored", len(taxonomy.Ignore()),
		"fingerprint", taxonomy.Fingerprint(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	shutdownMetrics := metrics.StartServer(cfg.Metrics)

	checker := health.NewChecker(0)
	checker.Register("taxonomy", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d skills", taxonomy.Len())}
	})

	opts := handler.Options{
		Metrics:        m,
		Tracer:         tracing.NewTracer(cfg.Tracing.Enabled, nil),
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		ExtractTimeout: cfg.Matcher.ExtractTimeout,
	}

	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
			checker.Register("redis", health.Disabled("unreachable at startup"))
		} else {
			defer redisClient.Close()
			opts.Cache = cache.New(redisClient, cfg.Redis.CacheTTL, extractor)
			checker.Register("redis", health.PingCheck(redisClient))
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	} else {
		checker.Register("redis", health.Disabled("not configured"))
	}

	var snapshots *snapshot.Store
	if cfg.Postgres.Enabled {
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, analysis history disabled", "error", err)
			checker.Register("postgres", health.Disabled("unreachable at startup"))
		} else {
			defer pg.Close()
			if err := pg.Migrate(ctx, migrations.FS); err != nil {
				slog.Error("failed to apply migrations", "error", err)
				os.Exit(1)
			}
			breaker := resilience.NewCircuitBreaker("history", resilience.BreakerConfig{
				FailureThreshold: 5,
				OnStateChange: func(name string, _, to resilience.State) {
					m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				},
			})
			historyStore := history.NewStore(history.NewPostgresRepository(pg.DB), breaker, resilience.RetryConfig{
				MaxAttempts:    3,
				JitterFraction: 0.2,
			})
			opts.History = historyStore
			checker.Register("history_circuit", historyStore.Check)
			snapshots = snapshot.NewStore(pg.DB)
			checker.Register("postgres", health.PingCheck(pg))
			slog.Info("analysis history enabled", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		}
	} else {
		checker.Register("postgres", health.Disabled("not configured"))
	}

	// Background analytics outlive the signal: they stop only after the
	// HTTP server has finished its in-flight requests.
	pipelineCtx, stopPipeline := context.WithCancel(context.Background())
	defer stopPipeline()

	var wg sync.WaitGroup
	aggregator := analytics.NewAggregator(10)
	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		topic := cfg.Kafka.Topics.MatchEvents
		producer := kafka.NewProducer(cfg.Kafka, topic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Kafka.BufferSize, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
		collector.Start(pipelineCtx)
		opts.Tracker = collector

		consumer := kafka.NewConsumer(cfg.Kafka, topic, aggregator.HandleMessage)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(pipelineCtx); err != nil {
				slog.Error("match event consumer stopped", "error", err)
			}
		}()
		checker.Register("kafka", health.PingCheck(producer))
		slog.Info("match events streaming through kafka", "topic", topic, "brokers", cfg.Kafka.Brokers)
	} else {
		opts.Tracker = aggregator
		checker.Register("kafka", health.Disabled("not configured"))
	}

	var snapshotHandler *snapshot.Handler
	if snapshots != nil {
		snapshotHandler = snapshot.NewHandler(snapshots)
		if cfg.Analytics.SnapshotInterval > 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				snapshot.Run(pipelineCtx, snapshots, aggregator, cfg.Analytics.SnapshotInterval)
			}()
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(ctx, cfg.RateLimit.Window)
	}

	deps := router.Deps{
		Match:     handler.New(sc, opts),
		Analytics: analytics.NewHandler(aggregator),
		Snapshots: snapshotHandler,
		Health:    checker,
		Metrics:   m,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.New(deps, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	slog.Info("match service listening", "addr", server.Addr)
	err = serve(ctx, server, ln, cfg.Server.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown error", "error", err)
		}
	})
	if err != nil {
		slog.Error("server error", "error", err)
	}

	stopPipeline()
	if collector != nil {
		collector.Wait()
		slog.Info("analytics collector drained",
			"published", collector.Published(),
			"dropped", collector.Dropped(),
		)
	}
	wg.Wait()
	slog.Info("match service stopped")
}

func loadTaxonomy(path string) (*skills.Taxonomy, error) {
	if path == "" {
		return skills.DefaultTaxonomy(), nil
	}
	return skills.LoadTaxonomy(path)
}
