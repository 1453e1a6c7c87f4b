package web

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/collector"
	"NewsDigest/internal/domain"
)

const defaultItemLimit = 10

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// PageCollector scrapes article listings from official blogs and news pages.
// Per-source CSS selectors come from the source Options so that adding a page
// is a configuration change, not a code change.
type PageCollector struct {
	client *http.Client
}

var _ collector.Collector = (*PageCollector)(nil)

// NewPageCollector wires an HTTP client; a nil client gets a default with a
// 30s timeout.
func NewPageCollector(client *http.Client) *PageCollector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PageCollector{client: client}
}

// Type identifies the strategy inside the registry.
func (p *PageCollector) Type() string {
	return "web"
}

// Collect fetches the configured page and extracts linked entries. An entry
// without a resolvable link or title is skipped; an unreachable page fails
// the collector entirely.
func (p *PageCollector) Collect(ctx context.Context, req collector.Request) ([]domain.RawItem, error) {
	if req.URL == "" {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("no page url configured")}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("request page: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("page returned %s", resp.Status)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("parse page: %w", err)}
	}

	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: fmt.Errorf("invalid page url: %w", err)}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultItemLimit
	}

	itemSelector := req.Options["itemSelector"]
	if itemSelector == "" {
		itemSelector = "article"
	}
	titleSelector := req.Options["titleSelector"]
	if titleSelector == "" {
		titleSelector = "h1 a, h2 a, h3 a"
	}

	var items []domain.RawItem
	seen := map[string]struct{}{}

	doc.Find(itemSelector).EachWithBreak(func(i int, entry *goquery.Selection) bool {
		link := entry.Find(titleSelector).First()

		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok {
			return true
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return true
		}
		if _, dup := seen[resolved]; dup {
			return true
		}
		seen[resolved] = struct{}{}

		summary := strings.TrimSpace(entry.Find("p").First().Text())

		items = append(items, domain.RawItem{
			Source:  req.SourceName,
			Title:   title,
			URL:     resolved,
			Summary: summary,
		})

		return len(items) < limit
	})

	return items, nil
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
