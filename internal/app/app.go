package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"CrimeScanner/internal/api"
	"CrimeScanner/internal/classifier"
	"CrimeScanner/internal/config"
	"CrimeScanner/internal/infrastructure/fetcher"
	"CrimeScanner/internal/infrastructure/llm"
	"CrimeScanner/internal/infrastructure/lock"
	"CrimeScanner/internal/infrastructure/ml"
	"CrimeScanner/internal/infrastructure/parser"
	"CrimeScanner/internal/infrastructure/scheduler"
	"CrimeScanner/internal/infrastructure/storage"
	"CrimeScanner/internal/infrastructure/telegram"
	"CrimeScanner/internal/logging"
	"CrimeScanner/internal/ports"
	"CrimeScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	seeder    *usecase.Seeder
	scheduler *usecase.Scheduler
	server    *http.Server
	closers   []func() error
}

type stores struct {
	sources    ports.SourceRegistry
	categories ports.CategoryRegistry
	articles   ports.ArticleStore
}

// New builds the application: storage, sweep lock, pipeline, scheduler and HTTP server.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	st, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}

	sweepLock, err := a.openLock(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	registry := classifier.NewRegistry()
	if cfg.ChatGPT.APIKey != "" {
		registry.Register(llm.NewChatGPTClassifier(cfg.ChatGPT))
	}
	if cfg.ML.InferenceURL != "" {
		registry.Register(ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey, cfg.ML.Timeout))
	}
	cls, err := registry.Resolve(cfg.Classifier.Name)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("classifier: %w (registered: %v)", err, registry.Names())
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:    st.sources,
		Categories: st.categories,
		Articles:   st.articles,
		Fetcher: fetcher.New(nil, fetcher.Options{
			Timeout:      cfg.Fetcher.Timeout,
			MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
			UserAgent:    cfg.Fetcher.UserAgent,
		}, baseLogger.With("component", "fetcher")),
		Extractor:          parser.NewHTMLExtractor(cfg.Pipeline.MaxLinksPerSource, baseLogger.With("component", "extractor")),
		Classifier:         cls,
		ArticleConcurrency: cfg.Pipeline.ArticleConcurrency,
		Logger:             baseLogger.With("component", "pipeline"),
	})

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		notifier = telegram.NewNotifier(tg.BaseURL, tg.BotToken, tg.ChatID)
	}

	var driver ports.Scheduler
	if cfg.Scheduler.Enabled {
		driver = scheduler.NewTicker(cfg.Scheduler.Interval, cfg.Scheduler.RunOnStart)
	}

	a.scheduler = usecase.NewScheduler(usecase.SchedulerDeps{
		Driver:   driver,
		Pipeline: pipeline,
		Lock:     sweepLock,
		Notifier: notifier,
		Location: cfg.Scheduler.Location(),
		Logger:   baseLogger.With("component", "scheduler"),
	})
	a.seeder = usecase.NewSeeder(st.sources, st.categories, cfg.Sources, baseLogger.With("component", "seeder"))

	service := usecase.NewService(st.sources, st.categories, st.articles, a.scheduler)
	a.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(service, baseLogger.With("component", "api")),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	baseLogger.Info("application configured",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("classifier", cls.Name()),
		slog.Bool("redis_lock", cfg.Redis.Addr != ""),
		slog.Bool("telegram", notifier != nil),
		slog.Int("sources", len(cfg.Sources)))
	return a, nil
}

func (a *Application) openStores(ctx context.Context) (stores, error) {
	switch a.cfg.Storage.Driver {
	case config.StoragePostgres:
		pg, err := storage.OpenPostgres(ctx, a.cfg.Storage.DSN)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, pg.Close)
		return stores{sources: pg, categories: pg, articles: pg}, nil
	default:
		sources := storage.NewSourceRepository(nil)
		categories := storage.NewCategoryRepository()
		return stores{
			sources:    sources,
			categories: categories,
			articles:   storage.NewArticleRepository(sources, categories, nil),
		}, nil
	}
}

func (a *Application) openLock(ctx context.Context) (ports.SweepLock, error) {
	if a.cfg.Redis.Addr == "" {
		return lock.NewLocal(), nil
	}
	l, err := lock.NewRedis(ctx, lock.RedisOptions{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
		Key:      a.cfg.Redis.LockKey,
		TTL:      a.cfg.Redis.LockTTL,
	}, a.logger.With("component", "lock"))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, l.Close)
	return l, nil
}

// Run seeds the registries, starts the scheduler and serves HTTP until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := a.seeder.Seed(ctx); err != nil {
		return fmt.Errorf("seed registries: %w", err)
	}
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", slog.Any("error", err))
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("sweep still running at shutdown", slog.Any("error", err))
	}
	return runErr
}

func (a *Application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close resource", slog.Any("error", err))
		}
	}
	a.closers = nil
}
