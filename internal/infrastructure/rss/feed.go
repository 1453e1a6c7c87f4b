package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsDigest/internal/collector"
	"NewsDigest/internal/domain"
)

const (
	defaultEntryLimit = 15
	maxSummaryBytes   = 2000
)

// FeedCollector fetches one RSS/Atom feed and normalizes its entries.
type FeedCollector struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

var _ collector.Collector = (*FeedCollector)(nil)

// NewFeedCollector wires an HTTP client; a nil client gets a default with a
// 30s timeout.
func NewFeedCollector(client *http.Client) *FeedCollector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeedCollector{
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: "NewsDigest/1.0 RSS Reader",
	}
}

// Type identifies the strategy inside the registry.
func (f *FeedCollector) Type() string {
	return "rss"
}

// Collect fetches and parses the configured feed. Entries without a title
// are skipped; a non-2xx response or an unparseable payload fails the
// collector entirely.
func (f *FeedCollector) Collect(ctx context.Context, req collector.Request) ([]domain.RawItem, error) {
	if req.URL == "" {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("no feed url configured")}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("request feed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("feed returned %s", resp.Status)}
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("parse feed: %w", err)}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultEntryLimit
	}

	items := make([]domain.RawItem, 0, limit)
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}

		item, ok := normalizeEntry(entry, req.SourceName)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func normalizeEntry(entry *gofeed.Item, sourceName string) (domain.RawItem, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" || entry.Link == "" {
		return domain.RawItem{}, false
	}

	summary := entry.Content
	if summary == "" {
		summary = entry.Description
	}
	summary = stripHTML(summary)
	if len(summary) > maxSummaryBytes {
		cut := maxSummaryBytes
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut]
	}

	var published *time.Time
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = entry.UpdatedParsed
	}

	extra := map[string]string{}
	if entry.Author != nil && entry.Author.Name != "" {
		extra["author"] = entry.Author.Name
	}
	if len(entry.Categories) > 0 {
		extra["tags"] = strings.Join(entry.Categories, ",")
	}

	return domain.RawItem{
		Source:      sourceName,
		Title:       title,
		URL:         entry.Link,
		PublishedAt: published,
		Summary:     summary,
		Extra:       extra,
	}, true
}

// stripHTML flattens feed entry markup to plain text.
func stripHTML(raw string) string {
	if raw == "" || !strings.Contains(raw, "<") {
		return strings.TrimSpace(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(doc.Text())
}
