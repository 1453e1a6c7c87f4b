package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDigest/internal/aggregate"
	"NewsDigest/internal/collector"
	"NewsDigest/internal/config"
	"NewsDigest/internal/infrastructure/email"
	"NewsDigest/internal/infrastructure/github"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/rss"
	"NewsDigest/internal/infrastructure/scheduler"
	"NewsDigest/internal/infrastructure/storage"
	"NewsDigest/internal/infrastructure/web"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/report"
	"NewsDigest/internal/secrets"
	"NewsDigest/internal/usecase"
)

// Application wires configuration and secrets to use cases and lifecycle
// orchestration.
type Application struct {
	cfg    config.Config
	runner *usecase.Runner
	ledger *storage.Ledger
	logger *slog.Logger
}

// New builds a runnable application instance. Secrets must already be
// resolved; they are passed by reference into the LLM client and notifier
// and nowhere else.
func New(cfg config.Config, creds *secrets.Secrets, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := collector.NewRegistry()
	registry.Register(github.NewTrendingCollector(nil))
	registry.Register(rss.NewFeedCollector(nil))
	registry.Register(web.NewPageCollector(nil))

	llmClient := llm.NewClient(cfg.LLM, creds.LLMAPIKey())

	classifier := aggregate.NewClassifier(cfg.Categories, llmClient,
		baseLogger.With("component", "classifier"))

	generator := report.NewGenerator(llmClient, cfg.Report, cfg.Categories,
		cfg.LLM.MaxInFlight, baseLogger.With("component", "generator"))

	var notifier ports.Notifier
	if cfg.Email.Enabled {
		notifier = email.NewNotifier(cfg.Email, creds)
	}

	ledger, err := storage.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Registry:   registry,
		Sources:    cfg.Sources,
		Collection: cfg.Collection,
		Classifier: classifier,
		Generator:  generator,
		Writer:     report.NewWriter(cfg.Output.Dir),
		Notifier:   notifier,
		Ledger:     ledger,
		Logger:     baseLogger.With("component", "runner"),
	})

	return &Application{
		cfg:    cfg,
		runner: runner,
		ledger: ledger,
		logger: baseLogger,
	}, nil
}

// RunOnce performs a single pipeline pass for the current day.
func (a *Application) RunOnce(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.runner.RunOnce(ctx, now)
}

// RunScheduled registers the daily trigger and blocks until ctx is done.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver, err := scheduler.NewDailyScheduler(a.cfg.Scheduler.RunTime, a.cfg.Scheduler.Location())
	if err != nil {
		return fmt.Errorf("configure scheduler: %w", err)
	}

	today := time.Now().In(a.cfg.Scheduler.Location()).Format("2006-01-02")
	if status, err := a.ledger.Status(ctx, today); err == nil && status != "" {
		a.logger.Info("today already has a recorded run", "date", today, "status", status)
	}

	sched := usecase.NewScheduler(driver, a.runner)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	a.logger.Info("scheduler started",
		"run_time", a.cfg.Scheduler.RunTime,
		"timezone", a.cfg.Scheduler.Timezone,
		"next_run", driver.NextRun(time.Now()))

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.ledger == nil {
		return nil
	}
	return a.ledger.Close()
}
