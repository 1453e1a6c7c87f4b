package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"NewsDigest/internal/domain"
)

func TestWriterWritesDateKeyedArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir)

	rpt := domain.Report{
		Date:        "2026-08-31",
		GeneratedAt: time.Date(2026, time.August, 31, 20, 0, 0, 0, time.UTC),
	}

	items := []domain.ClassifiedItem{
		{
			RawItem:  domain.RawItem{Source: "GitHub", Title: "acme/kit", URL: "https://github.com/acme/kit", Extra: map[string]string{"stars": "10"}},
			Category: "open-source",
		},
	}

	paths, err := w.Write(rpt, "# digest", "digest", items)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}

	wantDir := filepath.Join(dir, "2026-08-31")
	for _, p := range []string{paths.Markdown, paths.Text, paths.RawData} {
		if filepath.Dir(p) != wantDir {
			t.Fatalf("artifact %s not under date dir %s", p, wantDir)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
	}

	raw, err := os.ReadFile(paths.RawData)
	if err != nil {
		t.Fatalf("read raw data: %v", err)
	}

	var snapshot struct {
		Date       string `json:"date"`
		TotalItems int    `json:"total_items"`
		Items      []struct {
			Source   string `json:"source"`
			URL      string `json:"url"`
			Category string `json:"category"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("parse raw data: %v", err)
	}

	if snapshot.Date != "2026-08-31" || snapshot.TotalItems != 1 {
		t.Fatalf("unexpected snapshot header: %+v", snapshot)
	}
	if snapshot.Items[0].Category != "open-source" {
		t.Fatalf("snapshot must carry categories, got %s", snapshot.Items[0].Category)
	}
}

func TestWriterRemovesDateDirOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir)

	// a directory squatting on the text artifact path makes the second
	// write fail after the markdown file already landed
	dateDir := filepath.Join(dir, "2026-08-31")
	if err := os.MkdirAll(filepath.Join(dateDir, "digest_2026-08-31.txt"), 0o755); err != nil {
		t.Fatalf("plant obstacle: %v", err)
	}

	rpt := domain.Report{
		Date:        "2026-08-31",
		GeneratedAt: time.Date(2026, time.August, 31, 20, 0, 0, 0, time.UTC),
	}

	_, err := w.Write(rpt, "# digest", "digest", nil)
	if err == nil {
		t.Fatal("expected write failure")
	}

	if _, statErr := os.Stat(dateDir); !os.IsNotExist(statErr) {
		t.Fatalf("failed write must leave no date directory, stat: %v", statErr)
	}
}
