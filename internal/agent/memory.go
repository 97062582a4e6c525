package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/gmaragao/profAI/internal/models"
)

// ActionReader provides the stored actions a summary is built from.
type ActionReader interface {
	GetByDateRange(ctx context.Context, from, to time.Time) ([]*models.Action, error)
}

// Memory summarizes the assistant's past actions over a date range. It backs
// the professor agent's weekly-summary tool.
type Memory struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	actions ActionReader
	logger  *zap.Logger
}

// MemoryConfig for the memory agent.
type MemoryConfig struct {
	APIKey    string
	ModelName string
}

// NewMemory creates the summarization agent.
func NewMemory(ctx context.Context, cfg MemoryConfig, actions ActionReader, logger *zap.Logger) (*Memory, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash-exp"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(MemoryInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: genai.Ptr[int32](1024),
	}

	return &Memory{
		client:  client,
		model:   model,
		actions: actions,
		logger:  logger,
	}, nil
}

// Close releases the underlying Gemini client.
func (m *Memory) Close() error {
	return m.client.Close()
}

// SummarizeRange fetches the actions recorded between from and to and asks the
// model for a short overview of them.
func (m *Memory) SummarizeRange(ctx context.Context, from, to time.Time) (string, error) {
	actions, err := m.actions.GetByDateRange(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("failed to fetch actions for summary: %w", err)
	}

	if len(actions) == 0 {
		return "No actions taken in this period.", nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"actionsSummary": actions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal actions for summary: %w", err)
	}

	resp, err := m.model.GenerateContent(ctx, genai.Text(string(payload)))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	m.logger.Debug("Action summary produced",
		zap.Int("action_count", len(actions)),
		zap.Time("from", from),
		zap.Time("to", to))

	return text, nil
}
