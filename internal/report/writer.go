package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"NewsDigest/internal/domain"
)

// Paths locates the three artifacts of one run.
type Paths struct {
	Markdown string
	Text     string
	RawData  string
}

// Writer persists the per-run artifacts into a date-keyed directory. The
// at-most-one-run rule means no two writers ever race on the same date.
type Writer struct {
	baseDir string
}

// NewWriter roots artifact output at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Write saves the rendered documents and the raw classified corpus under
// <base>/<date>/. Either all three files land or the date directory is
// removed again, so an aborted run never leaves partial artifacts.
func (w *Writer) Write(r domain.Report, markdown, plain string, items []domain.ClassifiedItem) (Paths, error) {
	dateDir := filepath.Join(w.baseDir, r.Date)
	if err := os.MkdirAll(dateDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create report dir: %w", err)
	}

	paths := Paths{
		Markdown: filepath.Join(dateDir, fmt.Sprintf("digest_%s.md", r.Date)),
		Text:     filepath.Join(dateDir, fmt.Sprintf("digest_%s.txt", r.Date)),
		RawData:  filepath.Join(dateDir, fmt.Sprintf("raw_data_%s.json", r.Date)),
	}

	if err := w.writeAll(paths, markdown, plain, r, items); err != nil {
		_ = os.RemoveAll(dateDir)
		return Paths{}, err
	}

	return paths, nil
}

func (w *Writer) writeAll(paths Paths, markdown, plain string, r domain.Report, items []domain.ClassifiedItem) error {
	if err := os.WriteFile(paths.Markdown, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	if err := os.WriteFile(paths.Text, []byte(plain), 0o644); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	raw, err := marshalSnapshot(r, items)
	if err != nil {
		return fmt.Errorf("marshal raw data: %w", err)
	}
	if err := os.WriteFile(paths.RawData, raw, 0o644); err != nil {
		return fmt.Errorf("write raw data: %w", err)
	}

	return nil
}

type snapshotItem struct {
	Source      string            `json:"source"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Category    string            `json:"category"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func marshalSnapshot(r domain.Report, items []domain.ClassifiedItem) ([]byte, error) {
	snapshot := struct {
		GeneratedAt time.Time      `json:"generated_at"`
		Date        string         `json:"date"`
		TotalItems  int            `json:"total_items"`
		Items       []snapshotItem `json:"items"`
	}{
		GeneratedAt: r.GeneratedAt,
		Date:        r.Date,
		TotalItems:  len(items),
		Items:       make([]snapshotItem, 0, len(items)),
	}

	for _, item := range items {
		snapshot.Items = append(snapshot.Items, snapshotItem{
			Source:      item.Source,
			Title:       item.Title,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
			Summary:     item.Summary,
			Category:    string(item.Category),
			Extra:       item.Extra,
		})
	}

	return json.MarshalIndent(snapshot, "", "  ")
}
