package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/models"
)

// Tool names exposed to the professor agent.
const (
	toolRelevantKnowledge = "getRelevantKnowledge"
	toolCourseMetadata    = "getCourseMetadata"
	toolWeeklySummary     = "getWeeklySummary"
)

// KnowledgeSearcher retrieves course material and course metadata for the
// professor agent's lookup tools.
type KnowledgeSearcher interface {
	SearchMaterial(ctx context.Context, query string) ([]models.KnowledgeEntry, error)
	SearchMetadata(ctx context.Context, query string) ([]models.KnowledgeEntry, error)
}

// ActionSummarizer produces a summary of the actions taken in a date range.
type ActionSummarizer interface {
	SummarizeRange(ctx context.Context, from, to time.Time) (string, error)
}

// Toolbox executes the retrieval tools the professor agent may call before
// giving its final answer.
type Toolbox struct {
	knowledge  KnowledgeSearcher
	summarizer ActionSummarizer
	logger     *zap.Logger
}

// NewToolbox creates a toolbox. Either collaborator may be nil; the matching
// tool then reports that it is unavailable instead of failing the agent call.
func NewToolbox(knowledge KnowledgeSearcher, summarizer ActionSummarizer, logger *zap.Logger) *Toolbox {
	return &Toolbox{
		knowledge:  knowledge,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Declarations returns the tool schema handed to the model.
func (t *Toolbox) Declarations() []*genai.Tool {
	queryParams := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "What to look up, phrased as a short search query.",
			},
		},
		Required: []string{"query"},
	}

	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name: toolRelevantKnowledge,
					Description: "Retrieves course subject content from materials such as books, " +
						"slides or lecture notes. Use it to answer questions about concepts, " +
						"theories, definitions or explanations related to the studied content.",
					Parameters: queryParams,
				},
				{
					Name: toolCourseMetadata,
					Description: "Retrieves information about the course itself: structure, " +
						"assignments, deadlines and related materials. Use it for questions " +
						"about dates and course organization.",
					Parameters: queryParams,
				},
				{
					Name: toolWeeklySummary,
					Description: "Retrieves a summary of the actions the assistant took in a " +
						"date range. Dates are RFC3339 strings.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"startDate": {Type: genai.TypeString},
							"endDate":   {Type: genai.TypeString},
						},
						Required: []string{"startDate", "endDate"},
					},
				},
			},
		},
	}
}

// Execute runs one requested tool call and returns its response payload.
func (t *Toolbox) Execute(ctx context.Context, call genai.FunctionCall) (map[string]interface{}, error) {
	t.logger.Info("Executing agent tool", zap.String("tool", call.Name))

	switch call.Name {
	case toolRelevantKnowledge:
		return t.search(ctx, call, "material")
	case toolCourseMetadata:
		return t.search(ctx, call, "metadata")
	case toolWeeklySummary:
		return t.weeklySummary(ctx, call)
	default:
		return nil, fmt.Errorf("unknown tool: %s", call.Name)
	}
}

func (t *Toolbox) search(ctx context.Context, call genai.FunctionCall, kind string) (map[string]interface{}, error) {
	if t.knowledge == nil {
		return map[string]interface{}{"content": "knowledge base unavailable"}, nil
	}

	query, ok := call.Args["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("tool %s called without a query", call.Name)
	}

	var (
		entries []models.KnowledgeEntry
		err     error
	)
	if kind == "material" {
		entries, err = t.knowledge.SearchMaterial(ctx, query)
	} else {
		entries, err = t.knowledge.SearchMetadata(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}

	if len(entries) == 0 {
		return map[string]interface{}{"content": "no matching entries found"}, nil
	}

	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString(entry.Title)
		sb.WriteString(": ")
		sb.WriteString(entry.Content)
		sb.WriteString("\n")
	}

	return map[string]interface{}{"content": sb.String()}, nil
}

func (t *Toolbox) weeklySummary(ctx context.Context, call genai.FunctionCall) (map[string]interface{}, error) {
	if t.summarizer == nil {
		return map[string]interface{}{"content": "action history unavailable"}, nil
	}

	from, err := parseToolDate(call.Args["startDate"])
	if err != nil {
		return nil, fmt.Errorf("invalid startDate: %w", err)
	}
	to, err := parseToolDate(call.Args["endDate"])
	if err != nil {
		return nil, fmt.Errorf("invalid endDate: %w", err)
	}

	summary, err := t.summarizer.SummarizeRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize actions: %w", err)
	}

	return map[string]interface{}{"content": summary}, nil
}

func parseToolDate(arg interface{}) (time.Time, error) {
	value, ok := arg.(string)
	if !ok || value == "" {
		return time.Time{}, fmt.Errorf("missing date argument")
	}
	return parseExternalTime(value)
}
