package aggregate

import (
	"context"
	"log/slog"
	"strings"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Classifier assigns each item to exactly one category from the configured
// ordered set. Keyword rules run first; items no rule matches are sent to the
// delegated categorizer in one batch, and land in the uncategorized bucket
// when that call fails or abstains.
type Classifier struct {
	categories []config.CategoryConfig
	delegate   ports.Categorizer
	logger     *slog.Logger
}

// NewClassifier wires the configured category set and an optional delegate.
func NewClassifier(categories []config.CategoryConfig, delegate ports.Categorizer, logger *slog.Logger) *Classifier {
	return &Classifier{
		categories: categories,
		delegate:   delegate,
		logger:     logger,
	}
}

// ClassifyAll maps every item to a ClassifiedItem. Classification is total:
// the output always has one entry per input, in input order.
func (c *Classifier) ClassifyAll(ctx context.Context, items []domain.RawItem) []domain.ClassifiedItem {
	classified := make([]domain.ClassifiedItem, len(items))

	var unmatched []int
	for i, item := range items {
		cat, ok := c.matchKeywords(item)
		if !ok {
			unmatched = append(unmatched, i)
			cat = domain.Uncategorized
		}
		classified[i] = domain.ClassifiedItem{RawItem: item, Category: cat}
	}

	if len(unmatched) > 0 && c.delegate != nil {
		c.delegateBatch(ctx, items, classified, unmatched)
	}

	c.logStats(classified)
	return classified
}

// matchKeywords scores every category by keyword hits over title+summary and
// picks the best one. Ties resolve to the earlier category in configured
// order, keeping assignment deterministic.
func (c *Classifier) matchKeywords(item domain.RawItem) (domain.Category, bool) {
	text := strings.ToLower(item.Title + " " + item.Summary)

	best := -1
	bestScore := 0
	for i, cat := range c.categories {
		score := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				score++
			}
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return domain.Uncategorized, false
	}
	return domain.Category(c.categories[best].Name), true
}

func (c *Classifier) delegateBatch(ctx context.Context, items []domain.RawItem, classified []domain.ClassifiedItem, unmatched []int) {
	batch := make([]domain.RawItem, len(unmatched))
	for i, at := range unmatched {
		batch[i] = items[at]
	}

	names := make([]string, len(c.categories))
	valid := map[string]bool{}
	for i, cat := range c.categories {
		names[i] = cat.Name
		valid[cat.Name] = true
	}

	assigned, err := c.delegate.CategorizeBatch(ctx, batch, names)
	if err != nil {
		c.debug("batch categorization failed, falling back to uncategorized", "items", len(batch), "error", err)
		return
	}

	for i, at := range unmatched {
		if i >= len(assigned) {
			break
		}
		if valid[assigned[i]] {
			classified[at].Category = domain.Category(assigned[i])
		}
	}
}

func (c *Classifier) logStats(classified []domain.ClassifiedItem) {
	if c.logger == nil {
		return
	}

	counts := map[domain.Category]int{}
	for _, item := range classified {
		counts[item.Category]++
	}
	c.logger.Info("classification done", "items", len(classified), "categories", len(counts))
}

func (c *Classifier) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
