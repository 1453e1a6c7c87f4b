// Package aggregate merges per-collector results into one deduplicated,
// classified item set.
package aggregate

import (
	"time"

	"NewsDigest/internal/domain"
)

// Merge flattens per-collector results preserving collector-then-item order
// and deduplicates by (source, url). The latest occurrence in flattened order
// wins, since later collectors may carry richer data for a re-seen URL; the
// surviving item keeps the position of its first occurrence.
func Merge(results [][]domain.RawItem) []domain.RawItem {
	var merged []domain.RawItem
	index := map[domain.ItemKey]int{}

	for _, list := range results {
		for _, item := range list {
			key := item.Key()
			if at, ok := index[key]; ok {
				merged[at] = item
				continue
			}
			index[key] = len(merged)
			merged = append(merged, item)
		}
	}

	return merged
}

// FilterByAge drops items older than maxAge relative to now. Items without a
// published timestamp are kept. A non-positive maxAge disables the filter.
func FilterByAge(items []domain.RawItem, now time.Time, maxAge time.Duration) []domain.RawItem {
	if maxAge <= 0 {
		return items
	}

	cutoff := now.Add(-maxAge)
	kept := make([]domain.RawItem, 0, len(items))
	for _, item := range items {
		if item.PublishedAt != nil && item.PublishedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, item)
	}

	return kept
}
