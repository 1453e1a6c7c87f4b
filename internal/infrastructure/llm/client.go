package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const (
	initialRetryDelay = 1 * time.Second

	analysisSystemPrompt = "You are an AI-industry analyst. Given a list of news items from one topical " +
		"category, write a concise analysis paragraph covering the notable developments and why they matter. " +
		"Respond with the analysis text only."

	commentarySystemPrompt = "You are an AI-industry analyst. Given today's digest sections, write one " +
		"overall commentary paragraph connecting the day's developments. Respond with the commentary text only."

	categorizeSystemPrompt = "You assign news items to topical categories. Given numbered items and a list " +
		"of category names, respond with JSON only: {\"assignments\": [\"<category>\", ...]} with one entry " +
		"per item, in order. Use exactly the given category names."
)

// Client talks to an OpenAI-compatible chat-completions endpoint for section
// analysis, overall commentary, and batch categorization.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	maxRetries int
	httpClient *http.Client
}

var _ ports.AnalysisClient = (*Client)(nil)
var _ ports.Categorizer = (*Client)(nil)

// NewClient builds a client from configuration and the injected API key.
func NewClient(cfg config.LLMConfig, apiKey string) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     apiKey,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze requests analysis text for one category's items.
func (c *Client) Analyze(ctx context.Context, category string, items []domain.ClassifiedItem) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n\n", category)
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, item.Title, item.Source)
		if item.Summary != "" {
			fmt.Fprintf(&b, "%s\n", truncate(item.Summary, 600))
		}
		if stars := item.Extra["stars"]; stars != "" {
			fmt.Fprintf(&b, "Stars: %s\n", stars)
		}
		b.WriteString("\n")
	}

	return c.complete(ctx, analysisSystemPrompt, b.String())
}

// Commentary requests one overall commentary across all sections.
func (c *Client) Commentary(ctx context.Context, sections []domain.ReportSection) (string, error) {
	var b strings.Builder
	for _, section := range sections {
		fmt.Fprintf(&b, "## %s (%d items)\n", section.Title, len(section.Items))
		for _, item := range section.Items {
			fmt.Fprintf(&b, "- %s\n", item.Title)
		}
		b.WriteString("\n")
	}

	return c.complete(ctx, commentarySystemPrompt, b.String())
}

// CategorizeBatch assigns one configured category name per item. Entries the
// model abstains on come back empty and the caller falls back to its bucket.
func (c *Client) CategorizeBatch(ctx context.Context, items []domain.RawItem, categories []string) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Categories: %s\n\n", strings.Join(categories, ", "))
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, item.Title, truncate(item.Summary, 200))
	}

	raw, err := c.complete(ctx, categorizeSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Assignments []string `json:"assignments"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse categorization response: %w", err)
	}

	return parsed.Assignments, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete posts one chat exchange, retrying transient failures (network
// errors, timeouts, 408/429/5xx) with exponential backoff.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("llm client misconfigured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * initialRetryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, retryable, err := c.attempt(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}

	return "", fmt.Errorf("llm request failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) attempt(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
		return "", retryableStatus(resp.StatusCode), err
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("no choices in llm response")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), false, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// cleanJSONResponse strips Markdown code fences some models wrap JSON in.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
