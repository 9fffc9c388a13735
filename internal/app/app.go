// Package app builds and runs the service from configuration. It owns the
// provider selection for storage, run history, and notifications, and the
// lifecycle of everything it opens.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/OptimNow/my-scraper/internal/api"
	"github.com/OptimNow/my-scraper/internal/clock/system"
	"github.com/OptimNow/my-scraper/internal/config"
	"github.com/OptimNow/my-scraper/internal/database"
	"github.com/OptimNow/my-scraper/internal/discovery"
	"github.com/OptimNow/my-scraper/internal/extract"
	"github.com/OptimNow/my-scraper/internal/fetch"
	"github.com/OptimNow/my-scraper/internal/id/uuid"
	"github.com/OptimNow/my-scraper/internal/logging"
	"github.com/OptimNow/my-scraper/internal/metrics"
	"github.com/OptimNow/my-scraper/internal/pipeline"
	"github.com/OptimNow/my-scraper/internal/politeness"
	"github.com/OptimNow/my-scraper/internal/publisher"
	"github.com/OptimNow/my-scraper/internal/storage"
)

// App contains the application's dependencies.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	runner    *pipeline.Runner
	apiServer *api.Server

	store storage.Provider
	db    database.Provider
	pub   publisher.Provider
}

// Build creates the application's dependencies from configuration.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	metrics.Init()

	a := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies",
		zap.String("base_url", cfg.Scraper.BaseURL),
		zap.String("storage", cfg.Storage.Provider),
		zap.String("database", cfg.Database.Provider),
		zap.String("publisher", cfg.Publisher.Provider),
	)

	if err := a.setupStorage(ctx); err != nil {
		return nil, err
	}
	if err := a.setupDatabase(ctx); err != nil {
		return nil, err
	}
	if err := a.setupPublisher(ctx); err != nil {
		return nil, err
	}

	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}
	strategy := extract.StrategyRegistryScan
	if cfg.Scraper.Strategy == "sibling" {
		strategy = extract.StrategySiblingWalk
	}

	clock := system.New()
	fetcher := fetch.NewCollyFetcher(fetch.Config{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logger.Named("fetch"))
	pauser := politeness.TimerPauser{}
	discoverer := discovery.New(fetcher, pauser, discovery.Config{
		BaseURL:   baseURL,
		IndexPath: cfg.Scraper.IndexPath,
		PageParam: cfg.Scraper.PageParam,
		MaxPages:  cfg.Scraper.MaxPages,
		Delay:     cfg.Delay(),
	}, logger.Named("discovery"))
	assembler := extract.NewAssembler(extract.Options{
		Origin:   cfg.Scraper.Origin,
		BaseURL:  baseURL,
		Clock:    clock,
		Strategy: strategy,
	}, logger.Named("extract"))

	a.runner = pipeline.NewRunner(
		discoverer,
		fetcher,
		assembler,
		a.store,
		a.db,
		a.pub,
		uuid.New(),
		clock,
		pauser,
		pipeline.Config{
			FetchTimeout:  cfg.FetchTimeout(),
			Delay:         cfg.Delay(),
			StoragePrefix: cfg.Storage.Prefix,
		},
		logger.Named("pipeline"),
	)
	a.apiServer = api.NewServer(a.runner, cfg, logger.Named("api"))
	return a, nil
}

// Runner exposes the scrape pipeline for CLI entry points.
func (a *App) Runner() *pipeline.Runner {
	return a.runner
}

// Logger exposes the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	return nil
}

// Close releases every provider the app opened.
func (a *App) Close() {
	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("storage close failed", zap.Error(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.logger.Warn("publisher close failed", zap.Error(err))
		}
	}
	if err := a.logger.Sync(); err != nil {
		a.logger.Warn("logger sync failed", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
}

func (a *App) setupStorage(ctx context.Context) error {
	switch a.cfg.Storage.Provider {
	case "gcs":
		a.logger.Info("using GCS storage provider", zap.String("bucket", a.cfg.Storage.GCSBucket))
		provider, err := storage.NewGCSProvider(ctx, a.cfg.Storage.GCSBucket, a.logger.Named("gcs"))
		if err != nil {
			return fmt.Errorf("gcs provider init failed: %w", err)
		}
		a.store = provider
	case "local":
		a.logger.Info("using local storage provider", zap.String("dir", a.cfg.Storage.LocalDir))
		provider, err := storage.NewLocalProvider(a.cfg.Storage.LocalDir)
		if err != nil {
			return fmt.Errorf("local provider init failed: %w", err)
		}
		a.store = provider
	default:
		a.logger.Warn("no storage configured, records will not be persisted")
		a.store = storage.NoOpProvider{}
	}
	return nil
}

func (a *App) setupDatabase(ctx context.Context) error {
	if a.cfg.Database.Provider != "postgres" {
		a.db = database.NoOpProvider{}
		return nil
	}
	provider, err := database.NewPostgresProvider(ctx, a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("postgres provider init failed: %w", err)
	}
	a.logger.Info("run history store initialized")
	a.db = provider
	return nil
}

func (a *App) setupPublisher(ctx context.Context) error {
	if a.cfg.Publisher.Provider != "pubsub" {
		a.pub = publisher.NoOpProvider{}
		return nil
	}
	provider, err := publisher.NewPubSubProvider(ctx, a.cfg.Publisher.ProjectID, a.cfg.Publisher.TopicID)
	if err != nil {
		return fmt.Errorf("pubsub provider init failed: %w", err)
	}
	a.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", a.cfg.Publisher.ProjectID),
		zap.String("topic", a.cfg.Publisher.TopicID),
	)
	a.pub = provider
	return nil
}
