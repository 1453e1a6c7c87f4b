package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// AnalysisClient obtains language-model synthesis for the report.
type AnalysisClient interface {
	Analyze(ctx context.Context, category string, items []domain.ClassifiedItem) (string, error)
	Commentary(ctx context.Context, sections []domain.ReportSection) (string, error)
}

// Categorizer assigns categories to items the keyword rules could not place.
type Categorizer interface {
	CategorizeBatch(ctx context.Context, items []domain.RawItem, categories []string) ([]string, error)
}

// Notifier converts the rendered digest into an email payload and delivers it.
type Notifier interface {
	Deliver(ctx context.Context, report domain.Report, markdown, plain string) (domain.DeliveryResult, error)
}

// RunLedger enforces one run per date key and records terminal run states.
type RunLedger interface {
	Acquire(ctx context.Context, date, runID string) (bool, error)
	Record(ctx context.Context, rec domain.RunRecord) error
}

// Scheduler controls when pipeline passes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
