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

	"github.com/okian/teamfit/internal/adapters/embedder/openai"
	"github.com/okian/teamfit/internal/adapters/http/api"
	"github.com/okian/teamfit/internal/adapters/http/swagger"
	"github.com/okian/teamfit/internal/adapters/repository/postgres"
	app "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/config"
	"github.com/okian/teamfit/internal/domain/embedding"
	"github.com/okian/teamfit/pkg/logger"
	"github.com/okian/teamfit/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 40 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts, cleanup, err := serviceOptions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)
	swagger.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// serviceOptions translates configuration into service options, opening the
// configured vector store and embedding backend. cleanup releases them.
func serviceOptions(ctx context.Context, cfg *config.Config, log logger.Logger) ([]app.Option, func(), error) {
	cleanup := func() {}
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.TaskQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithTaskRetention(cfg.TaskRetention),
		app.WithRankLimits(cfg.DefaultRankLimit, cfg.MaxRankLimit),
		app.WithPrefilterK(cfg.PrefilterK),
		app.WithEmptyRequirementCoverage(cfg.EmptyRequirementCoverage),
		app.WithEmbeddingDimension(cfg.EmbeddingDimension),
		app.WithEmbeddingTimeout(time.Duration(cfg.EmbeddingTimeoutMS) * time.Millisecond),
	}

	if cfg.EmbeddingBackend == config.EmbeddingBackendOpenAI {
		rt := embedding.NewRuntime(func(context.Context) (embedding.Model, error) {
			return openai.New(cfg.OpenAIAPIKey,
				openai.WithModel(cfg.EmbeddingModel),
				openai.WithDimension(cfg.EmbeddingDimension),
				openai.WithBaseURL(cfg.OpenAIBaseURL),
			), nil
		})
		opts = append(opts, app.WithEmbeddingRuntime(rt))
	}

	if cfg.VectorStore == config.VectorStorePostgres {
		store, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.EmbeddingDimension)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to open vector store: %w", err)
		}
		opts = append(opts, app.WithVectorStore(store))
		cleanup = store.Close
	}

	log.Info(ctx, "configuration loaded",
		logger.String("embedding_backend", cfg.EmbeddingBackend),
		logger.String("vector_store", cfg.VectorStore),
		logger.Int("embedding_dimension", cfg.EmbeddingDimension),
	)
	return opts, cleanup, nil
}

// startServiceMetricsUpdater periodically publishes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics copies stored vector counts into the metrics registry.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	for _, kind := range []string{"employee", "team", "project"} {
		if n, ok := stats["vectors_"+kind].(int); ok {
			metrics.UpdateVectorRecords(kind, n)
		}
	}
	if evals, ok := stats["evaluations"].(int); ok {
		metrics.UpdateEvaluationRecords(evals)
	}
}
