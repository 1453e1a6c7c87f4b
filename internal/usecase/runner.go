package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"NewsDigest/internal/aggregate"
	"NewsDigest/internal/collector"
	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/report"
)

// RunnerDeps wires all driven adapters into the pipeline runner.
type RunnerDeps struct {
	Registry   *collector.Registry
	Sources    []config.SourceConfig
	Collection config.CollectionConfig
	Classifier *aggregate.Classifier
	Generator  *report.Generator
	Writer     *report.Writer
	Notifier   ports.Notifier
	Ledger     ports.RunLedger
	Logger     *slog.Logger
}

// Runner drives the daily pipeline state machine:
// Idle → Collecting → Aggregating → Generating → Delivering → Idle, with
// Aborted reachable from Collecting. At most one run executes at a time.
type Runner struct {
	registry   *collector.Registry
	sources    []config.SourceConfig
	collection config.CollectionConfig
	classifier *aggregate.Classifier
	generator  *report.Generator
	writer     *report.Writer
	notifier   ports.Notifier
	ledger     ports.RunLedger
	logger     *slog.Logger

	running atomic.Bool
}

// NewRunner constructs the orchestration component.
func NewRunner(deps RunnerDeps) *Runner {
	return &Runner{
		registry:   deps.Registry,
		sources:    deps.Sources,
		collection: deps.Collection,
		classifier: deps.Classifier,
		generator:  deps.Generator,
		writer:     deps.Writer,
		notifier:   deps.Notifier,
		ledger:     deps.Ledger,
		logger:     deps.Logger,
	}
}

// RunOnce executes one full pipeline pass for the given day. A pass that
// reaches delivery counts as a successful day even when delivery fails; a
// pass aborted during collection leaves zero artifacts.
func (r *Runner) RunOnce(ctx context.Context, day time.Time) error {
	if !r.running.CompareAndSwap(false, true) {
		return domain.ErrRunInProgress
	}
	defer r.running.Store(false)

	date := day.Format("2006-01-02")
	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	log := r.logger.With("run_id", runID, "date", date)

	if r.ledger != nil {
		ok, err := r.ledger.Acquire(ctx, date, runID)
		if err != nil {
			return fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			log.Info("run already recorded for date, skipping")
			return nil
		}
	}

	log.Info("run started", "state", domain.RunCollecting)
	results, failures := r.collectAll(ctx, day)

	if err := ctx.Err(); err != nil {
		r.recordAborted(date, runID, startedAt, "shutdown during collection")
		return err
	}

	log.Info("collection done", "sources", len(r.sources), "failures", failures, "state", domain.RunAggregating)

	merged := aggregate.Merge(results)
	merged = aggregate.FilterByAge(merged, day, r.collection.MaxAge())
	if len(merged) == 0 {
		log.Error("no items collected, aborting run")
		r.recordAborted(date, runID, startedAt, "all sources empty or failed")
		return domain.ErrAggregationEmpty
	}

	items := r.classifier.ClassifyAll(ctx, merged)

	log.Info("aggregation done", "items", len(items), "state", domain.RunGenerating)
	rpt := r.generator.Generate(ctx, items, day)

	if err := ctx.Err(); err != nil {
		r.recordAborted(date, runID, startedAt, "shutdown during generation")
		return err
	}

	markdown := report.RenderMarkdown(rpt)
	plain := report.RenderText(rpt)

	paths, err := r.writer.Write(rpt, markdown, plain, items)
	if err != nil {
		r.recordAborted(date, runID, startedAt, "artifact write failed")
		return fmt.Errorf("write artifacts: %w", err)
	}
	log.Info("artifacts written", "markdown", paths.Markdown, "state", domain.RunDelivering)

	deliveryFailed := false
	if r.notifier != nil {
		if result, err := r.notifier.Deliver(ctx, rpt, markdown, plain); err != nil {
			deliveryFailed = true
			log.Warn("delivery failed, run still counts as completed", "error", err)
		} else {
			log.Info("digest delivered", "recipients", len(result.Recipients))
		}
	}

	degraded := rpt.DegradedSections()
	r.record(domain.RunRecord{
		ID:               runID,
		Date:             date,
		Status:           domain.RunCompleted,
		DegradedSections: degraded,
		DeliveryFailed:   deliveryFailed,
		StartedAt:        startedAt,
		FinishedAt:       time.Now().UTC(),
	})

	log.Info("run completed", "degraded_sections", degraded, "delivery_failed", deliveryFailed, "state", domain.RunIdle)
	return nil
}

// collectAll issues every enabled source concurrently and waits for all of
// them. A failed source is logged and skipped; its slot in the results stays
// empty. A per-collector timeout bounds how long one source can block.
func (r *Runner) collectAll(ctx context.Context, day time.Time) ([][]domain.RawItem, int) {
	results := make([][]domain.RawItem, len(r.sources))
	errs := make([]error, len(r.sources))

	var g errgroup.Group
	for i, source := range r.sources {
		i := i
		if !source.Enabled {
			continue
		}

		c, err := r.registry.Resolve(source.Type)
		if err != nil {
			errs[i] = &domain.CollectorError{Source: source.Name, Err: err}
			continue
		}

		req := collector.Request{
			Day:        day,
			SourceName: source.Name,
			URL:        source.URL,
			Topics:     source.Topics,
			Limit:      source.Limit,
			Interval:   r.collection.Interval(),
			Options:    source.Options,
		}

		g.Go(func() error {
			collectCtx := ctx
			if timeout := r.collection.Timeout(); timeout > 0 {
				var cancel context.CancelFunc
				collectCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			items, err := c.Collect(collectCtx, req)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failures++
		r.logger.Warn("source collection failed", "source", r.sources[i].Name, "error", err)
	}

	return results, failures
}

func (r *Runner) recordAborted(date, runID string, startedAt time.Time, note string) {
	r.record(domain.RunRecord{
		ID:         runID,
		Date:       date,
		Status:     domain.RunAborted,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Note:       note,
	})
	r.logger.Error("run aborted", "date", date, "note", note)
}

func (r *Runner) record(rec domain.RunRecord) {
	if r.ledger == nil {
		return
	}
	// terminal states must be recorded even when the run context is gone
	if err := r.ledger.Record(context.Background(), rec); err != nil {
		r.logger.Error("failed to record run state", "date", rec.Date, "error", err)
	}
}
