package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"FundingScanner/internal/config"
	"FundingScanner/internal/detection"
	"FundingScanner/internal/domain"
	"FundingScanner/internal/infrastructure/console"
	"FundingScanner/internal/infrastructure/email"
	"FundingScanner/internal/infrastructure/parser"
	"FundingScanner/internal/infrastructure/scheduler"
	"FundingScanner/internal/infrastructure/storage"
	"FundingScanner/internal/infrastructure/telegram"
	"FundingScanner/internal/logging"
	"FundingScanner/internal/metrics"
	"FundingScanner/internal/patterns"
	"FundingScanner/internal/ports"
	"FundingScanner/internal/scanner"
	"FundingScanner/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Options alter wiring without touching the config file.
type Options struct {
	// DryRun swaps the configured store for an in-memory one and prints the digest instead of sending it.
	DryRun bool
	// Stdout receives console output. Defaults to os.Stdout.
	Stdout io.Writer
	// Source replaces the feed source. Used by tests.
	Source ports.ArticleSource
	// Clock replaces time.Now.
	Clock func() time.Time
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    ports.Store
	pipeline *usecase.Pipeline
	now      func() time.Time
}

// NewDetector builds the detection chain from config alone; it needs no I/O.
func NewDetector(cfg config.Config) (*detection.Detector, error) {
	lib, err := patterns.New(cfg.Detection.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	det, err := detection.NewDetector(detection.Config{
		Threshold: cfg.Detection.Threshold,
		Weights:   cfg.Detection.Weights,
		Library:   lib,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return det, nil
}

// New opens the store and wires source, detector, notifiers and pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	detector, err := NewDetector(cfg)
	if err != nil {
		return nil, err
	}

	var store ports.Store
	if opts.DryRun {
		store = storage.NewMemoryStore(storage.WithClock(opts.Clock))
	} else {
		store, err = storage.Open(ctx, storage.Settings{
			Driver:    cfg.Database.Driver,
			DSN:       cfg.Database.DSN,
			Path:      cfg.Database.Path,
			RedisURL:  cfg.Cache.RedisURL,
			Retention: cfg.Retention.Window(),
			Logger:    baseLogger.With("component", "store"),
			Clock:     opts.Clock,
		})
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	source := opts.Source
	if source == nil {
		registry := scanner.NewRegistry(parser.NewRSSScanner(nil, parser.RSSOptions{
			Timeout:   cfg.Feeds.Timeout,
			Retries:   cfg.Feeds.Retries,
			Backoff:   cfg.Feeds.Backoff,
			Delay:     cfg.Feeds.Delay,
			UserAgent: cfg.Feeds.UserAgent,
		}))
		source = parser.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))
	}

	pipeline, err := usecase.NewPipeline(usecase.PipelineDeps{
		Source:        source,
		Store:         store,
		Detector:      detector,
		Notifier:      buildNotifier(cfg, opts, baseLogger),
		Logger:        baseLogger.With("component", "pipeline"),
		Retention:     cfg.Retention.Window(),
		MaxArticleAge: cfg.Pipeline.MaxArticleAge(),
		Digest:        domain.DigestKind(cfg.Pipeline.Digest),
		SendEmpty:     cfg.Notifications.SendEmpty,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		pipeline: pipeline,
		now:      opts.Clock,
	}, nil
}

func buildNotifier(cfg config.Config, opts Options, log *slog.Logger) ports.Notifier {
	if opts.DryRun {
		return console.NewNotifier(opts.Stdout)
	}

	var channels []usecase.NamedNotifier
	if e := cfg.Notifications.Email; e.Enabled {
		renderer := email.NewRenderer(cfg.SourceNames())
		channels = append(channels, usecase.NamedNotifier{
			Name: "email",
			Notifier: email.NewNotifier(email.Config{
				SMTPServer: e.SMTPServer,
				SMTPPort:   e.SMTPPort,
				SMTPUser:   e.Username,
				SMTPPass:   e.Password,
				FromEmail:  e.From,
				ToEmail:    e.To,
				BackupDir:  e.BackupDir,
				Enabled:    true,
			}, renderer, log.With("component", "notifier.email")),
		})
	}
	if t := cfg.Notifications.Telegram; t.Enabled() {
		channels = append(channels, usecase.NamedNotifier{
			Name:     "telegram",
			Notifier: telegram.NewNotifier(t.BotToken, t.ChatID, t.APIBase),
		})
	}

	if len(channels) == 0 {
		log.Warn("no notification channel configured, digests go to stdout")
		return console.NewNotifier(opts.Stdout)
	}
	return usecase.NewFanOut(channels...)
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (usecase.Report, error) {
	now := a.now().In(a.cfg.Scheduler.Location())
	return a.pipeline.Run(ctx, now)
}

// Daemon runs the pipeline on the configured interval until ctx is cancelled.
// When metrics.addr is set, /metrics is served alongside.
func (a *Application) Daemon(ctx context.Context) error {
	driver, err := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location())
	if err != nil {
		return err
	}
	sched := usecase.NewScheduler(driver.WithClock(a.now), a.pipeline, a.logger.With("component", "scheduler"))

	var srv *http.Server
	serverErr := make(chan error, 1)
	if addr := a.cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			a.logger.Info("metrics server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("daemon started", "interval", a.cfg.Scheduler.Interval)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
		a.logger.Error("metrics server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown", "error", err)
		}
	}
	a.logger.Info("daemon stopped")
	return runErr
}

// Purge runs the retention sweep only.
func (a *Application) Purge(ctx context.Context) (int64, error) {
	return a.pipeline.Purge(ctx)
}

// Stats returns persisted counters.
func (a *Application) Stats(ctx context.Context) (domain.StoreStats, error) {
	return a.pipeline.Stats(ctx)
}

// Close releases the store.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
