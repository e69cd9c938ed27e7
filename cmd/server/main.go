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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skinmatch/backend/config"
	httpDelivery "github.com/skinmatch/backend/internal/delivery/http"
	"github.com/skinmatch/backend/internal/domain"
	"github.com/skinmatch/backend/internal/infrastructure/cache"
	"github.com/skinmatch/backend/internal/infrastructure/catalog"
	"github.com/skinmatch/backend/internal/infrastructure/model"
	"github.com/skinmatch/backend/internal/infrastructure/registryfile"
	"github.com/skinmatch/backend/internal/logging"
	"github.com/skinmatch/backend/internal/telemetry"
	"github.com/skinmatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// run wires the application and serves until SIGINT/SIGTERM
func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting SkinMatch backend",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("classifier", cfg.Classifier.Type),
		zap.String("matching_strategy", cfg.Matching.Strategy))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.cache.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// app holds the wired components that main needs to serve and clean up
type app struct {
	router http.Handler
	cache  *cache.MemoryCache
}

// buildApp loads data, builds the classifier and services, and assembles the router
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	// Catalog
	rows, err := catalog.LoadCSV(cfg.Catalog.Path, catalog.Options{
		IngredientsColumn: cfg.Catalog.IngredientsColumn,
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	products := usecase.NewCatalog(rows)
	logger.Info("catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("products", products.Len()))

	// Category keyword registry
	registry, err := loadRegistry(cfg.Registry.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("category registry ready",
		zap.Int("categories", len(registry.Names())),
		zap.Int("keywords", len(registry.AllKeywords())))

	// Classifier
	clf, err := newClassifier(ctx, cfg.Classifier, registry, logger)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetrics()

	adapter, err := usecase.NewPredictionAdapter(clf.classifier, clf.features, clf.categories, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("build prediction adapter: %w", err)
	}

	// Initialize usecase layer
	memoryCache := cache.NewMemoryCache(time.Minute, cache.WithMaxEntries(cfg.Cache.MaxEntries))
	matcher := usecase.NewProductMatcher(cfg.Matching.Strategy, products, registry)
	filtering := usecase.NewFilteringService(registry, matcher, memoryCache, logger, metrics,
		usecase.FilteringServiceConfig{
			CacheEnabled:       cfg.Cache.Enabled,
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		})
	recommendation := usecase.NewRecommendationService(adapter, filtering)

	logger.Info("filtering configured",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Bool("debug", cfg.Matching.EnableDebugLogging))

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(httpDelivery.Dependencies{
		Adapter:        adapter,
		Filtering:      filtering,
		Recommendation: recommendation,
		Registry:       registry,
		Catalog:        products,
		Logger:         logger,
		ModelVersion:   clf.version,
	})

	return &app{
		router: httpDelivery.SetupRouter(cfg, handler, metrics, logger),
		cache:  memoryCache,
	}, nil
}

// loadRegistry returns the built-in category table unless a YAML override is configured
func loadRegistry(path string) (*usecase.KeywordRegistry, error) {
	if path == "" {
		return usecase.DefaultKeywordRegistry(), nil
	}
	categories, err := registryfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	registry, err := usecase.NewKeywordRegistry(categories)
	if err != nil {
		return nil, fmt.Errorf("build registry from %s: %w", path, err)
	}
	return registry, nil
}

// classifierSetup is a classifier plus the input and output orders it was built for
type classifierSetup struct {
	classifier domain.Classifier
	features   []string
	categories []string
	version    string
}

// newClassifier builds the configured classifier. A local artifact declares its own
// feature and label order; a remote sidecar is assumed to use the default concern
// order and the registry's category order.
func newClassifier(
	ctx context.Context,
	cfg config.ClassifierConfig,
	registry *usecase.KeywordRegistry,
	logger *zap.Logger,
) (*classifierSetup, error) {
	switch cfg.Type {
	case "local":
		m, err := model.LoadLinearModel(cfg.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		for _, label := range m.Labels() {
			if !registry.Has(label) {
				logger.Warn("model label has no registry keywords", zap.String("category", label))
			}
		}
		logger.Info("local model loaded",
			zap.String("path", cfg.ModelPath),
			zap.String("version", m.Version()),
			zap.Int("features", len(m.Features())),
			zap.Int("labels", len(m.Labels())))
		return &classifierSetup{
			classifier: m,
			features:   m.Features(),
			categories: m.Labels(),
			version:    m.Version(),
		}, nil

	case "remote":
		remote := model.NewRemoteClassifier(model.RemoteConfig{
			BaseURL:          cfg.BaseURL,
			Timeout:          cfg.Timeout,
			RequestsPerSec:   cfg.Rate,
			Burst:            cfg.Burst,
			FailureThreshold: cfg.BreakerFailures,
			OpenTimeout:      cfg.BreakerOpenDelay,
		}, logger)

		healthCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		version, err := remote.Health(healthCtx)
		if err != nil {
			// The sidecar may come up after us; requests fail until it does
			logger.Warn("remote classifier not reachable at startup",
				zap.String("base_url", cfg.BaseURL),
				zap.Error(err))
		} else {
			logger.Info("remote classifier reachable",
				zap.String("base_url", cfg.BaseURL),
				zap.String("version", version))
		}
		return &classifierSetup{
			classifier: remote,
			features:   usecase.DefaultConcernFeatures,
			categories: registry.Names(),
			version:    version,
		}, nil

	default:
		return nil, fmt.Errorf("unknown classifier type %q", cfg.Type)
	}
}
