package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/shape-stylist/internal/config"
	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
	"github.com/kirillkom/shape-stylist/internal/core/usecase"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/catalog/shopify"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/llm/openai"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/queue/nats"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/report/xlsx"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/resilience"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/settings/localfs"
)

const defaultOllamaURL = "http://localhost:11434"

// BreakerStateSink receives circuit breaker transitions, typically a metrics gauge.
type BreakerStateSink func(operation string, state int)

type Options struct {
	Logger       *slog.Logger
	BreakerState BreakerStateSink
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue       ports.AnalysisQueue
	BodyShapeUC *usecase.BodyShapeUseCase
	RecommendUC *usecase.ShopRecommendationUseCase
	SettingsUC  *usecase.SettingsUseCase
	AnalysisUC  *usecase.CatalogAnalysisUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	profiles := postgres.NewProfileRepository(db)
	analysis := postgres.NewAnalysisRepository(db)

	settingsStore, err := localfs.New(cfg.SettingsPath, domain.DefaultSettings())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init settings store: %w", err)
	}

	// AI and catalog calls are never retried; the breaker only sheds load
	// while a provider is failing.
	observer := breakerObserver(opts.BreakerState)
	noRetry := breakerConfig(cfg).BreakerOnly()
	aiExecutor := resilience.NewExecutor(noRetry, logger).WithStateObserver(observer)
	catalogExecutor := resilience.NewExecutor(noRetry, logger).WithStateObserver(observer)
	queueExecutor := resilience.NewExecutor(breakerConfig(cfg), logger).WithStateObserver(observer)

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Executor: queueExecutor,
		Logger:   logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ai, err := newAICompleter(cfg, aiExecutor, logger)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	catalog, err := newCatalogProvider(cfg, catalogExecutor, logger)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init catalog provider: %w", err)
	}

	orchestratorCfg := usecase.OrchestratorConfig{
		SampleCap:   cfg.AISampleCap,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		AITimeout:   time.Duration(cfg.AITimeoutSeconds) * time.Second,
	}
	scorer := usecase.NewSuitabilityScorer(usecase.KeywordScorer{})
	filter := usecase.NewCatalogFilter()
	orchestrator := usecase.NewRecommendationOrchestrator(ai, scorer, filter, orchestratorCfg, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,

		BodyShapeUC: usecase.NewBodyShapeUseCase(usecase.NewBodyShapeClassifier(), profiles),
		RecommendUC: usecase.NewShopRecommendationUseCase(catalog, settingsStore, profiles, filter, orchestrator, logger),
		SettingsUC:  usecase.NewSettingsUseCase(settingsStore),
		AnalysisUC: usecase.NewCatalogAnalysisUseCase(
			catalog,
			ai,
			scorer,
			analysis,
			queue,
			xlsx.NewWriter(),
			usecase.AnalysisPacing{
				Every: cfg.AnalysisPaceEvery,
				Delay: time.Duration(cfg.AnalysisPaceDelayMS) * time.Millisecond,
			},
			orchestratorCfg,
			logger,
		),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func breakerConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	if cfg.BreakerFailureRatio > 0 {
		out.BreakerFailureRatio = cfg.BreakerFailureRatio
	}
	if cfg.BreakerOpenTimeoutSeconds > 0 {
		out.BreakerOpenTimeout = time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second
	}
	return out
}

func breakerObserver(sink BreakerStateSink) resilience.StateObserver {
	if sink == nil {
		return nil
	}
	return func(operation string, _, to gobreaker.State) {
		sink(operation, breakerStateValue(to))
	}
}

func breakerStateValue(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// newAICompleter returns a nil completer for AI_PROVIDER=none, which makes
// every recommendation use the scorer.
func newAICompleter(cfg config.Config, executor *resilience.Executor, logger *slog.Logger) (ports.AICompleter, error) {
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	switch cfg.AIProvider {
	case "", "ollama":
		baseURL := cfg.AIBaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		return ollama.New(baseURL, cfg.AIModel, ollama.Options{
			Timeout:  timeout,
			Executor: executor,
			Logger:   logger,
		}), nil
	case "openai":
		client, err := openai.New(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, openai.Options{
			Timeout:  timeout,
			Executor: executor,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "none":
		logger.Info("ai_provider_disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}
}

func newCatalogProvider(cfg config.Config, executor *resilience.Executor, logger *slog.Logger) (ports.CatalogProvider, error) {
	if cfg.ShopifyShop == "" {
		logger.Warn("catalog_provider_unconfigured", "hint", "set SHOPIFY_SHOP and SHOPIFY_ACCESS_TOKEN")
		return unconfiguredCatalog{}, nil
	}
	client, err := shopify.New(shopify.Options{
		Shop:        cfg.ShopifyShop,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		PageSize:    cfg.CatalogPageSize,
		MaxPages:    cfg.CatalogMaxPages,
		Executor:    executor,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

type unconfiguredCatalog struct{}

func (unconfiguredCatalog) ListProducts(_ context.Context, shop string) ([]domain.Product, error) {
	return nil, domain.WrapError(domain.ErrCatalogUnavailable, "list products", fmt.Errorf("no catalog provider configured for shop %q", shop))
}
