package domain

import "time"

// RawItem is one collected unit of information from any source.
type RawItem struct {
	Source      string
	Title       string
	URL         string
	PublishedAt *time.Time
	Summary     string
	Extra       map[string]string
}

// ItemKey identifies an item for deduplication.
type ItemKey struct {
	Source string
	URL    string
}

// Key returns the deduplication identity of the item.
func (i RawItem) Key() ItemKey {
	return ItemKey{Source: i.Source, URL: i.URL}
}

// Category is a topical bucket from the configured, ordered category set.
type Category string

// Uncategorized is the designated fallback bucket when no rule matches
// and the classification service abstains or fails.
const Uncategorized Category = "uncategorized"

// ClassifiedItem is a deduplicated item tagged with exactly one category.
type ClassifiedItem struct {
	RawItem
	Category Category
}
