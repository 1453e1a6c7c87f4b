package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/collector"
	"NewsDigest/internal/domain"
)

const defaultTrendingURL = "https://github.com/trending"

var aiKeywords = []string{"ai", "llm", "gpt", "model", "ml", "deep", "neural", "agent"}

// TrendingCollector crawls GitHub trending pages and extracts repositories
// as digest items, with star counts carried in Extra for ranking.
type TrendingCollector struct {
	client    *http.Client
	userAgent string
}

var _ collector.Collector = (*TrendingCollector)(nil)

// NewTrendingCollector wires an HTTP client; a nil client gets a default
// with a 30s timeout.
func NewTrendingCollector(client *http.Client) *TrendingCollector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TrendingCollector{
		client:    client,
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	}
}

// Type identifies the strategy inside the registry.
func (t *TrendingCollector) Type() string {
	return "github"
}

// Collect walks the per-topic trending pages plus the general page. Topic
// pages contribute up to req.Limit repositories each; the general page is
// filtered down to AI-related names. A malformed row is skipped; an
// unreachable page fails the whole collector.
func (t *TrendingCollector) Collect(ctx context.Context, req collector.Request) ([]domain.RawItem, error) {
	base := req.URL
	if base == "" {
		base = defaultTrendingURL
	}

	var items []domain.RawItem
	seen := map[string]struct{}{}

	topics := req.Topics
	if len(topics) > 3 {
		topics = topics[:3]
	}

	for _, topic := range topics {
		pageURL, err := buildTrendingURL(base, topic)
		if err != nil {
			return nil, &domain.CollectorError{Source: req.SourceName, Err: err}
		}

		repos, err := t.fetchPage(ctx, pageURL, req.SourceName, topic)
		if err != nil {
			return nil, &domain.CollectorError{Source: req.SourceName, Err: err}
		}

		if req.Limit > 0 && len(repos) > req.Limit {
			repos = repos[:req.Limit]
		}
		for _, item := range repos {
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			items = append(items, item)
		}

		if err := collector.Sleep(ctx, req.Interval); err != nil {
			return nil, &domain.CollectorError{Source: req.SourceName, Err: err}
		}
	}

	generalURL, err := buildTrendingURL(base, "")
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: err}
	}

	general, err := t.fetchPage(ctx, generalURL, req.SourceName, "general")
	if err != nil {
		return nil, &domain.CollectorError{Source: req.SourceName, Err: err}
	}

	for _, item := range general {
		if !looksLikeAI(item.Title) {
			continue
		}
		if _, ok := seen[item.URL]; ok {
			continue
		}
		seen[item.URL] = struct{}{}
		items = append(items, item)
	}

	return items, nil
}

func (t *TrendingCollector) fetchPage(ctx context.Context, pageURL, sourceName, topic string) ([]domain.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request trending page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse trending page: %w", err)
	}

	return extractRepos(doc, sourceName, topic), nil
}

func extractRepos(doc *goquery.Document, sourceName, topic string) []domain.RawItem {
	var items []domain.RawItem

	doc.Find("article.Box-row").Each(func(i int, row *goquery.Selection) {
		href, ok := row.Find("h2 a").First().Attr("href")
		if !ok {
			return
		}

		repoPath := strings.Trim(strings.TrimSpace(href), "/")
		if repoPath == "" {
			return
		}

		description := strings.TrimSpace(row.Find("p").First().Text())
		language := strings.TrimSpace(row.Find("[itemprop='programmingLanguage']").First().Text())
		stars := cleanStarCount(row.Find("a[href$='/stargazers']").First().Text())
		todayStars := cleanStarCount(row.Find("span.d-inline-block.float-sm-right").First().Text())

		items = append(items, domain.RawItem{
			Source:  sourceName,
			Title:   repoPath,
			URL:     "https://github.com/" + repoPath,
			Summary: description,
			Extra: map[string]string{
				"stars":       stars,
				"today_stars": todayStars,
				"language":    language,
				"topic":       topic,
			},
		})
	})

	return items
}

func buildTrendingURL(base, topic string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid trending url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("since", "daily")
	if topic != "" {
		query.Set("topic", topic)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// cleanStarCount normalizes "1,234" or "520 stars today" to a bare digit run.
func cleanStarCount(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func looksLikeAI(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range aiKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
