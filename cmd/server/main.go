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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/banky/internal/adapter/http"
	"github.com/iho/banky/internal/adapter/extractor"
	"github.com/iho/banky/internal/adapter/http/handler"
	"github.com/iho/banky/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/banky/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/banky/internal/adapter/repository/redis"
	"github.com/iho/banky/internal/classifier"
	"github.com/iho/banky/internal/infrastructure/config"
	"github.com/iho/banky/internal/infrastructure/logger"
	"github.com/iho/banky/internal/infrastructure/metrics"
	"github.com/iho/banky/internal/infrastructure/postgres"
	"github.com/iho/banky/internal/infrastructure/redis"
	"github.com/iho/banky/internal/infrastructure/storage"
	"github.com/iho/banky/internal/template"
	"github.com/iho/banky/internal/usecase"
	"github.com/iho/banky/internal/worker"
)

const limiterIdle = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: cfg.AppName})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	registry := newMetricsRegistry()
	m := metrics.New(registry)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	documentRepo := postgresRepo.NewDocumentRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	resultCache := redisRepo.NewCache(redisClient)
	runLock := redisRepo.NewRunLock(redisClient)

	uploads, err := storage.NewLocalStore(cfg.StorageDir, cfg.MaxUploadSize)
	if err != nil {
		return err
	}

	// Initialize use cases
	pdf := extractor.NewPDFExtractor(log)
	pipeline := usecase.NewPipelineUseCase(usecase.PipelineConfig{
		Documents:       documentRepo,
		Persister:       usecase.NewTransactionPersister(txManager, transactionRepo, idGen, retrier),
		Extractor:       pdf,
		Optical:         extractor.NewOCRRecognizer(ocrConfig(cfg), log),
		Inspector:       pdf,
		Classifier:      classifier.New(),
		Templates:       template.NewRegistry(),
		Retrier:         retrier,
		Metrics:         m,
		Logger:          log,
		DefaultCurrency: cfg.DefaultCurrency,
		MinPageChars:    cfg.MinPageTextChars,
	})

	workers := worker.NewPool(pipeline, runLock, m, worker.PoolConfig{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.WorkerQueueSize,
		LockTTL:   cfg.RunLockTTL,
	}, log)
	sweeper := worker.NewSweeper(documentRepo, m, worker.SweeperConfig{
		Schedule:    cfg.SweepSchedule,
		ParkedAfter: cfg.ParkedAfter,
	}, log)

	ingestUC := usecase.NewIngestUseCase(documentRepo, workers, idGen, m, log)
	documentUC := usecase.NewDocumentUseCase(documentRepo, transactionRepo, resultCache, cfg.ResultCacheTTL, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler().
		AddCheck("postgres", pool).
		AddCheck("redis", handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	limiter := middleware.NewRateLimiter(cfg.UploadRateLimit, cfg.UploadRateBurst, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		DocumentHandler: handler.NewDocumentHandler(documentUC, ingestUC, uploads, cfg.MaxUploadSize, log),
		HealthHandler:   healthHandler,
		Metrics:         m,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		UploadLimiter:   limiter,
		Logger:          log,
	})

	// Create server
	server := &http.Server{
		Addr:         serverAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workers.Start(context.WithoutCancel(ctx))
	if err := sweeper.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterIdle)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.Cleanup(limiterIdle)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		// Stop intake first, then let queued documents finish.
		err := server.Shutdown(shutdownCtx)
		<-sweeper.Stop().Done()
		if stopErr := workers.Stop(shutdownCtx); stopErr != nil {
			log.Warn().Err(stopErr).Msg("worker pool did not drain before shutdown timeout")
		}
		return err
	})

	return g.Wait()
}

// newMetricsRegistry returns a registry carrying the runtime collectors next to the app metrics.
func newMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func ocrConfig(cfg *config.Config) extractor.OCRConfig {
	return extractor.OCRConfig{
		Languages:   cfg.OCRLanguages,
		DPI:         cfg.OCRDPI,
		PageTimeout: cfg.OCRPageTimeout,
		Concurrency: cfg.OCRConcurrency,
	}
}

func serverAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
