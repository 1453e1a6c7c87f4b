package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"NewsDigest/internal/collector"
	"NewsDigest/internal/domain"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>AI Research Wire</title>
    <link>https://example.com</link>
    <item>
      <title>New reasoning benchmark released</title>
      <link>https://example.com/benchmark</link>
      <description>&lt;p&gt;A &lt;b&gt;tougher&lt;/b&gt; evaluation suite.&lt;/p&gt;</description>
      <pubDate>Mon, 31 Aug 2026 08:00:00 GMT</pubDate>
      <author>wire@example.com (Dana Reyes)</author>
      <category>benchmarks</category>
      <category>evaluation</category>
    </item>
    <item>
      <title></title>
      <link>https://example.com/untitled</link>
    </item>
    <item>
      <title>Lab announces funding round</title>
      <link>https://example.com/funding</link>
    </item>
  </channel>
</rss>`

func serveFeed(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFeedCollectorNormalizesEntries(t *testing.T) {
	t.Parallel()

	server := serveFeed(t, sampleFeed, http.StatusOK)

	c := NewFeedCollector(server.Client())
	items, err := c.Collect(context.Background(), collector.Request{
		SourceName: "research-wire",
		URL:        server.URL,
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	// the untitled entry is dropped
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Source != "research-wire" {
		t.Errorf("source = %q", first.Source)
	}
	if first.Title != "New reasoning benchmark released" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://example.com/benchmark" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Summary != "A tougher evaluation suite." {
		t.Errorf("summary should be stripped of markup, got %q", first.Summary)
	}
	if first.PublishedAt == nil {
		t.Error("expected published timestamp")
	}
	if first.Extra["tags"] != "benchmarks,evaluation" {
		t.Errorf("tags = %q", first.Extra["tags"])
	}

	if items[1].Title != "Lab announces funding round" {
		t.Errorf("second item = %q", items[1].Title)
	}
	if items[1].PublishedAt != nil {
		t.Error("entry without pubDate must carry a nil timestamp")
	}
}

func TestFeedCollectorAppliesLimit(t *testing.T) {
	t.Parallel()

	server := serveFeed(t, sampleFeed, http.StatusOK)

	c := NewFeedCollector(server.Client())
	items, err := c.Collect(context.Background(), collector.Request{
		SourceName: "research-wire",
		URL:        server.URL,
		Limit:      1,
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestFeedCollectorRejectsBadStatus(t *testing.T) {
	t.Parallel()

	server := serveFeed(t, "gone", http.StatusNotFound)

	c := NewFeedCollector(server.Client())
	_, err := c.Collect(context.Background(), collector.Request{
		SourceName: "research-wire",
		URL:        server.URL,
	})

	var cerr *domain.CollectorError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CollectorError, got %v", err)
	}
	if cerr.Source != "research-wire" {
		t.Errorf("source = %q", cerr.Source)
	}
}

func TestFeedCollectorRejectsUnparseablePayload(t *testing.T) {
	t.Parallel()

	server := serveFeed(t, "this is not xml at all", http.StatusOK)

	c := NewFeedCollector(server.Client())
	_, err := c.Collect(context.Background(), collector.Request{
		SourceName: "research-wire",
		URL:        server.URL,
	})
	if err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestFeedCollectorRequiresURL(t *testing.T) {
	t.Parallel()

	c := NewFeedCollector(nil)
	_, err := c.Collect(context.Background(), collector.Request{SourceName: "research-wire"})
	if err == nil {
		t.Fatal("expected error for missing feed url")
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"<p>hello <b>world</b></p>", "hello world"},
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripHTMLCapsLongSummaries(t *testing.T) {
	t.Parallel()

	entry := sampleFeedWithSummary(strings.Repeat("x", 5000))
	server := serveFeed(t, entry, http.StatusOK)

	c := NewFeedCollector(server.Client())
	items, err := c.Collect(context.Background(), collector.Request{SourceName: "research-wire", URL: server.URL})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if len(items[0].Summary) != 2000 {
		t.Errorf("summary length = %d, want capped at 2000", len(items[0].Summary))
	}
}

func TestSummaryCapKeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	// 1500 two-byte runes is 3000 bytes, over the cap
	entry := sampleFeedWithSummary(strings.Repeat("é", 1500))
	server := serveFeed(t, entry, http.StatusOK)

	c := NewFeedCollector(server.Client())
	items, err := c.Collect(context.Background(), collector.Request{SourceName: "research-wire", URL: server.URL})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	summary := items[0].Summary
	if len(summary) > 2000 {
		t.Errorf("summary length = %d, want at most 2000 bytes", len(summary))
	}
	if !utf8.ValidString(summary) {
		t.Error("capped summary must not split a rune")
	}
}

func sampleFeedWithSummary(summary string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>AI Research Wire</title>
    <link>https://example.com</link>
    <item>
      <title>Long article</title>
      <link>https://example.com/long</link>
      <description>` + summary + `</description>
    </item>
  </channel>
</rss>`
}
