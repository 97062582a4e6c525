package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/models"
)

type fakeKnowledge struct {
	material func(ctx context.Context, query string) ([]models.KnowledgeEntry, error)
	metadata func(ctx context.Context, query string) ([]models.KnowledgeEntry, error)
}

func (f *fakeKnowledge) SearchMaterial(ctx context.Context, query string) ([]models.KnowledgeEntry, error) {
	return f.material(ctx, query)
}

func (f *fakeKnowledge) SearchMetadata(ctx context.Context, query string) ([]models.KnowledgeEntry, error) {
	return f.metadata(ctx, query)
}

type fakeSummarizer struct {
	summarize func(ctx context.Context, from, to time.Time) (string, error)
}

func (f *fakeSummarizer) SummarizeRange(ctx context.Context, from, to time.Time) (string, error) {
	return f.summarize(ctx, from, to)
}

func TestToolboxSearchMaterial(t *testing.T) {
	knowledge := &fakeKnowledge{
		material: func(_ context.Context, query string) ([]models.KnowledgeEntry, error) {
			if query != "recursion" {
				t.Fatalf("query = %q, want recursion", query)
			}
			return []models.KnowledgeEntry{
				{Title: "Week 3 slides", Content: "Recursion needs a base case."},
			}, nil
		},
	}

	tb := NewToolbox(knowledge, nil, zap.NewNop())
	out, err := tb.Execute(context.Background(), genai.FunctionCall{
		Name: toolRelevantKnowledge,
		Args: map[string]interface{}{"query": "recursion"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, _ := out["content"].(string)
	if !strings.Contains(content, "Week 3 slides") || !strings.Contains(content, "base case") {
		t.Fatalf("content = %q, want entry title and body", content)
	}
}

func TestToolboxSearchWithoutQuery(t *testing.T) {
	knowledge := &fakeKnowledge{
		metadata: func(context.Context, string) ([]models.KnowledgeEntry, error) {
			t.Fatal("search must not run without a query")
			return nil, nil
		},
	}

	tb := NewToolbox(knowledge, nil, zap.NewNop())
	if _, err := tb.Execute(context.Background(), genai.FunctionCall{
		Name: toolCourseMetadata,
		Args: map[string]interface{}{},
	}); err == nil {
		t.Fatal("expected error for missing query")
	}
}

func TestToolboxNilCollaborators(t *testing.T) {
	tb := NewToolbox(nil, nil, zap.NewNop())

	out, err := tb.Execute(context.Background(), genai.FunctionCall{
		Name: toolRelevantKnowledge,
		Args: map[string]interface{}{"query": "anything"},
	})
	if err != nil {
		t.Fatalf("nil knowledge base must not fail the call: %v", err)
	}
	if out["content"] != "knowledge base unavailable" {
		t.Fatalf("content = %v", out["content"])
	}

	out, err = tb.Execute(context.Background(), genai.FunctionCall{
		Name: toolWeeklySummary,
		Args: map[string]interface{}{"startDate": "2025-04-01T00:00:00Z", "endDate": "2025-04-08T00:00:00Z"},
	})
	if err != nil {
		t.Fatalf("nil summarizer must not fail the call: %v", err)
	}
	if out["content"] != "action history unavailable" {
		t.Fatalf("content = %v", out["content"])
	}
}

func TestToolboxWeeklySummary(t *testing.T) {
	summarizer := &fakeSummarizer{
		summarize: func(_ context.Context, from, to time.Time) (string, error) {
			if !from.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("from = %v", from)
			}
			if !to.Equal(time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("to = %v", to)
			}
			return "Replied to 3 questions about recursion.", nil
		},
	}

	tb := NewToolbox(nil, summarizer, zap.NewNop())
	out, err := tb.Execute(context.Background(), genai.FunctionCall{
		Name: toolWeeklySummary,
		Args: map[string]interface{}{"startDate": "2025-04-01T00:00:00Z", "endDate": "2025-04-08T00:00:00Z"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["content"] != "Replied to 3 questions about recursion." {
		t.Fatalf("content = %v", out["content"])
	}
}

func TestToolboxWeeklySummaryBadDates(t *testing.T) {
	tb := NewToolbox(nil, &fakeSummarizer{
		summarize: func(context.Context, time.Time, time.Time) (string, error) { return "", nil },
	}, zap.NewNop())

	if _, err := tb.Execute(context.Background(), genai.FunctionCall{
		Name: toolWeeklySummary,
		Args: map[string]interface{}{"startDate": "last week", "endDate": "2025-04-08T00:00:00Z"},
	}); err == nil {
		t.Fatal("expected error for unparseable startDate")
	}
}

func TestToolboxUnknownTool(t *testing.T) {
	tb := NewToolbox(nil, nil, zap.NewNop())
	if _, err := tb.Execute(context.Background(), genai.FunctionCall{Name: "deleteCourse"}); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestToolboxSearchErrorPropagates(t *testing.T) {
	knowledge := &fakeKnowledge{
		material: func(context.Context, string) ([]models.KnowledgeEntry, error) {
			return nil, errors.New("db down")
		},
	}

	tb := NewToolbox(knowledge, nil, zap.NewNop())
	if _, err := tb.Execute(context.Background(), genai.FunctionCall{
		Name: toolRelevantKnowledge,
		Args: map[string]interface{}{"query": "recursion"},
	}); err == nil {
		t.Fatal("expected search error to propagate")
	}
}
