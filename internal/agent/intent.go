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

// IntentClassifier wraps the Gemini call that classifies one LMS update.
type IntentClassifier struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	logger     *zap.Logger
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// IntentConfig for the intent classifier.
type IntentConfig struct {
	APIKey     string
	ModelName  string
	MaxRetries int
	RetryDelay time.Duration
}

// NewIntentClassifier creates a classifier backed by a Gemini model.
func NewIntentClassifier(ctx context.Context, cfg IntentConfig, logger *zap.Logger) (*IntentClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash-exp"
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ClassifierInstruction)},
	}
	model.ResponseMIMEType = "application/json"
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.2),
		TopP:            genai.Ptr[float32](0.9),
		MaxOutputTokens: genai.Ptr[int32](800),
	}

	logger.Info("Intent classifier initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &IntentClassifier{
		client:     client,
		model:      model,
		logger:     logger,
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Close releases the underlying Gemini client.
func (c *IntentClassifier) Close() error {
	return c.client.Close()
}

// classifiedIntentResponse is the raw shape the model answers with. All values
// are strings; timestamps are parsed afterwards.
type classifiedIntentResponse struct {
	UserID          string `json:"userId"`
	CourseID        string `json:"courseId"`
	SummarizedInput string `json:"summarizedInput"`
	ForumID         string `json:"forumId"`
	PostID          string `json:"postId"`
	Intent          string `json:"intent"`
	Source          string `json:"source"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// Classify sends one update to the model and returns the structured intent.
// The external LMS timestamps are carried through onto the result; they are
// what the orchestrator's watermark is derived from.
func (c *IntentClassifier) Classify(ctx context.Context, input models.ClassifierInput) (*models.ClassifiedIntent, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classifier input: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying intent classification",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			time.Sleep(c.retryDelay)
		}

		resp, err := c.model.GenerateContent(ctx, genai.Text(string(payload)))
		if err != nil {
			lastErr = fmt.Errorf("gemini API error: %w", err)
			c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("empty response from gemini")
			c.logger.Error("Empty response from Gemini", zap.Int("attempt", attempt+1))
			continue
		}

		textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
		if !ok {
			lastErr = fmt.Errorf("unexpected response type from gemini")
			c.logger.Error("Unexpected response type", zap.Int("attempt", attempt+1))
			continue
		}

		cleanJSON := cleanJSONResponse(string(textPart))

		var raw classifiedIntentResponse
		if err := json.Unmarshal([]byte(cleanJSON), &raw); err != nil {
			lastErr = fmt.Errorf("failed to parse classifier response: %w", err)
			c.logger.Error("Failed to parse JSON response",
				zap.Error(err),
				zap.String("cleaned_response", cleanJSON),
				zap.Int("attempt", attempt+1))
			continue
		}

		intent, err := raw.toModel()
		if err != nil {
			lastErr = err
			c.logger.Error("Invalid classifier response", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		c.logger.Debug("Update classified",
			zap.String("intent", intent.Intent),
			zap.String("post_id", intent.PostID),
			zap.Int("attempt", attempt+1))

		return intent, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (r classifiedIntentResponse) toModel() (*models.ClassifiedIntent, error) {
	createdAt, err := parseExternalTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt in classifier response: %w", err)
	}

	intent := &models.ClassifiedIntent{
		UserID:            r.UserID,
		CourseID:          r.CourseID,
		SummarizedInput:   r.SummarizedInput,
		ForumID:           r.ForumID,
		PostID:            r.PostID,
		Intent:            r.Intent,
		Source:            r.Source,
		ExternalCreatedAt: createdAt,
	}

	if r.UpdatedAt != "" {
		if updatedAt, err := parseExternalTime(r.UpdatedAt); err == nil {
			intent.ExternalUpdatedAt = &updatedAt
		}
	}

	return intent, nil
}
