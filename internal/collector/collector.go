package collector

import (
	"context"
	"fmt"
	"time"

	"NewsDigest/internal/domain"
)

// Request carries all parameters required to execute one collection pass
// against a single configured source.
type Request struct {
	Day        time.Time
	SourceName string
	URL        string
	Topics     []string
	Limit      int
	Interval   time.Duration
	Options    map[string]string
}

// Collector captures a single source strategy (GitHub trending, RSS, web).
// Implementations skip malformed entries and fail only on total
// unreachability.
type Collector interface {
	Type() string
	Collect(ctx context.Context, req Request) ([]domain.RawItem, error)
}

// Registry keeps a mapping from source types to their implementations.
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: map[string]Collector{}}
}

// Register adds or replaces a collector implementation.
func (r *Registry) Register(c Collector) {
	if r.collectors == nil {
		r.collectors = map[string]Collector{}
	}
	r.collectors[c.Type()] = c
}

// Resolve returns a collector by source type or an error if it is absent.
func (r *Registry) Resolve(sourceType string) (Collector, error) {
	if c, ok := r.collectors[sourceType]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("collector type %s is not registered", sourceType)
}

// Sleep pauses between requests to the same source, honoring cancellation.
// Collectors use it to respect upstream rate limits.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
