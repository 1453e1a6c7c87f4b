package aggregate

import (
	"context"
	"fmt"
	"testing"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
)

var testCategories = []config.CategoryConfig{
	{Name: "model-progress", Keywords: []string{"gpt", "llm", "model"}},
	{Name: "agents", Keywords: []string{"agent", "tool"}},
	{Name: "open-source", Keywords: []string{"open source", "github", "release"}},
}

type fakeCategorizer struct {
	assignments []string
	err         error
	calls       int
}

func (f *fakeCategorizer) CategorizeBatch(ctx context.Context, items []domain.RawItem, categories []string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.assignments, nil
}

func TestClassifyAllKeywordMatch(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testCategories, nil, nil)

	items := []domain.RawItem{
		{Title: "New GPT model beats benchmark"},
		{Title: "Agent toolkit released", Summary: "build your own agent with tool use"},
	}

	classified := c.ClassifyAll(context.Background(), items)

	if len(classified) != 2 {
		t.Fatalf("expected 2 classified items, got %d", len(classified))
	}
	if classified[0].Category != "model-progress" {
		t.Fatalf("expected model-progress, got %s", classified[0].Category)
	}
	if classified[1].Category != "agents" {
		t.Fatalf("expected agents, got %s", classified[1].Category)
	}
}

func TestClassifyAllIsDeterministic(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testCategories, nil, nil)
	item := domain.RawItem{Title: "gpt agent"} // one hit in two categories

	first := c.ClassifyAll(context.Background(), []domain.RawItem{item})
	for i := 0; i < 10; i++ {
		again := c.ClassifyAll(context.Background(), []domain.RawItem{item})
		if again[0].Category != first[0].Category {
			t.Fatalf("classification not deterministic: %s vs %s", again[0].Category, first[0].Category)
		}
	}

	// ties resolve to the earlier category in configured order
	if first[0].Category != "model-progress" {
		t.Fatalf("expected tie to resolve to first configured category, got %s", first[0].Category)
	}
}

func TestClassifyAllDelegatesUnmatched(t *testing.T) {
	t.Parallel()

	delegate := &fakeCategorizer{assignments: []string{"agents"}}
	c := NewClassifier(testCategories, delegate, nil)

	items := []domain.RawItem{
		{Title: "gpt released"},
		{Title: "something entirely unrelated"},
	}

	classified := c.ClassifyAll(context.Background(), items)

	if delegate.calls != 1 {
		t.Fatalf("expected one batch call, got %d", delegate.calls)
	}
	if classified[1].Category != "agents" {
		t.Fatalf("expected delegated category, got %s", classified[1].Category)
	}
}

func TestClassifyAllFallsBackToUncategorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		delegate *fakeCategorizer
	}{
		{name: "no delegate", delegate: nil},
		{name: "delegate fails", delegate: &fakeCategorizer{err: fmt.Errorf("rate limited")}},
		{name: "delegate abstains", delegate: &fakeCategorizer{assignments: []string{""}}},
		{name: "delegate invents category", delegate: &fakeCategorizer{assignments: []string{"made-up"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var delegate *fakeCategorizer
			c := NewClassifier(testCategories, nil, nil)
			if tt.delegate != nil {
				delegate = tt.delegate
				c = NewClassifier(testCategories, delegate, nil)
			}

			classified := c.ClassifyAll(context.Background(), []domain.RawItem{
				{Title: "nothing matches here"},
			})

			if classified[0].Category != domain.Uncategorized {
				t.Fatalf("expected uncategorized fallback, got %s", classified[0].Category)
			}
		})
	}
}

func TestClassifyAllIsTotal(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testCategories, nil, nil)

	items := []domain.RawItem{
		{Title: "gpt"},
		{Title: "xyz"},
		{Title: "github release"},
	}

	classified := c.ClassifyAll(context.Background(), items)

	if len(classified) != len(items) {
		t.Fatalf("classification must be total: %d in, %d out", len(items), len(classified))
	}
	for i, item := range classified {
		if item.Category == "" {
			t.Fatalf("item %d has no category", i)
		}
	}
}
