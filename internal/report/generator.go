package report

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Generator builds the immutable daily Report from the classified corpus:
// highlight selection, per-category analysis, and overall commentary.
type Generator struct {
	llm            ports.AnalysisClient
	categories     []config.CategoryConfig
	highlightCount int
	rankSignal     string
	maxInFlight    int64
	logger         *slog.Logger
}

// NewGenerator wires the analysis client and report tuning.
func NewGenerator(llm ports.AnalysisClient, cfg config.ReportConfig, categories []config.CategoryConfig, maxInFlight int, logger *slog.Logger) *Generator {
	if cfg.HighlightCount <= 0 {
		cfg.HighlightCount = 5
	}
	if cfg.RankSignal == "" {
		cfg.RankSignal = "stars"
	}
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Generator{
		llm:            llm,
		categories:     categories,
		highlightCount: cfg.HighlightCount,
		rankSignal:     cfg.RankSignal,
		maxInFlight:    int64(maxInFlight),
		logger:         logger,
	}
}

// Generate produces the Report for one day. Sections for categories without
// items are omitted. Analysis calls for independent sections run concurrently
// under the in-flight bound; a section whose call fails after retries
// degrades to the fixed placeholder rather than aborting the report.
func (g *Generator) Generate(ctx context.Context, items []domain.ClassifiedItem, day time.Time) domain.Report {
	sections := g.buildSections(items)
	g.analyzeSections(ctx, sections)

	commentary := domain.AnalysisUnavailable
	if g.llm != nil {
		text, err := g.llm.Commentary(ctx, sections)
		if err != nil {
			g.warn("commentary degraded", "error", err)
		} else {
			commentary = text
		}
	}

	return domain.Report{
		Date:        day.Format("2006-01-02"),
		GeneratedAt: time.Now().UTC(),
		Highlights:  g.selectHighlights(items),
		Sections:    sections,
		Commentary:  commentary,
	}
}

// selectHighlights picks the top-K items by the numeric rank signal. Ties
// break by earliest published time, then by source name; items without a
// timestamp sort after dated ones.
func (g *Generator) selectHighlights(items []domain.ClassifiedItem) []domain.ClassifiedItem {
	ranked := make([]domain.ClassifiedItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := g.signal(ranked[i]), g.signal(ranked[j])
		if si != sj {
			return si > sj
		}

		ti, tj := ranked[i].PublishedAt, ranked[j].PublishedAt
		switch {
		case ti != nil && tj != nil && !ti.Equal(*tj):
			return ti.Before(*tj)
		case ti != nil && tj == nil:
			return true
		case ti == nil && tj != nil:
			return false
		}

		return ranked[i].Source < ranked[j].Source
	})

	if len(ranked) > g.highlightCount {
		ranked = ranked[:g.highlightCount]
	}
	return ranked
}

func (g *Generator) signal(item domain.ClassifiedItem) int {
	raw := item.Extra[g.rankSignal]
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// buildSections groups items by category in the fixed configured order.
// Uncategorized leftovers form a trailing section.
func (g *Generator) buildSections(items []domain.ClassifiedItem) []domain.ReportSection {
	grouped := map[domain.Category][]domain.ClassifiedItem{}
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	var sections []domain.ReportSection
	for _, cat := range g.categories {
		key := domain.Category(cat.Name)
		if len(grouped[key]) == 0 {
			continue
		}
		title := cat.Title
		if title == "" {
			title = cat.Name
		}
		sections = append(sections, domain.ReportSection{
			Category: key,
			Title:    title,
			Items:    grouped[key],
		})
	}

	if rest := grouped[domain.Uncategorized]; len(rest) > 0 {
		sections = append(sections, domain.ReportSection{
			Category: domain.Uncategorized,
			Title:    "Other",
			Items:    rest,
		})
	}

	return sections
}

func (g *Generator) analyzeSections(ctx context.Context, sections []domain.ReportSection) {
	if g.llm == nil {
		for i := range sections {
			sections[i].Analysis = domain.AnalysisUnavailable
		}
		return
	}

	sem := semaphore.NewWeighted(g.maxInFlight)
	var wg sync.WaitGroup

	for i := range sections {
		if err := sem.Acquire(ctx, 1); err != nil {
			sections[i].Analysis = domain.AnalysisUnavailable
			continue
		}

		wg.Add(1)
		go func(section *domain.ReportSection) {
			defer wg.Done()
			defer sem.Release(1)

			text, err := g.llm.Analyze(ctx, string(section.Category), section.Items)
			if err != nil {
				g.warn("section analysis degraded", "category", section.Category, "error", err)
				section.Analysis = domain.AnalysisUnavailable
				return
			}
			section.Analysis = text
		}(&sections[i])
	}

	wg.Wait()
}

func (g *Generator) warn(msg string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
