package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/gmaragao/profAI/internal/models"
)

// maxToolRounds bounds how many tool-call exchanges one invocation may do
// before the model must answer.
const maxToolRounds = 4

// Professor is the action-decision agent. Given a classified intent it decides
// what pedagogical action to take, consulting retrieval tools as needed.
type Professor struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	toolbox   *Toolbox
	logger    *zap.Logger
	modelName string
}

// ProfessorConfig for the professor agent.
type ProfessorConfig struct {
	APIKey            string
	ModelName         string
	ExtraInstructions string // appended to the system prompt, course-specific
}

// NewProfessor creates the action-decision agent.
func NewProfessor(ctx context.Context, cfg ProfessorConfig, toolbox *Toolbox, logger *zap.Logger) (*Professor, error) {
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

	instruction := ProfessorInstruction
	if cfg.ExtraInstructions != "" {
		instruction += "\n\nYou also should follow these extra instructions:\n" + cfg.ExtraInstructions
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: genai.Ptr[int32](2048),
	}
	if toolbox != nil {
		model.Tools = toolbox.Declarations()
	}

	logger.Info("Professor agent initialized", zap.String("model", cfg.ModelName))

	return &Professor{
		client:    client,
		model:     model,
		toolbox:   toolbox,
		logger:    logger,
		modelName: cfg.ModelName,
	}, nil
}

// Close releases the underlying Gemini client.
func (p *Professor) Close() error {
	return p.client.Close()
}

// Invoke asks the model for an action decision and returns the raw JSON text
// of its final answer. Tool calls requested by the model are executed and fed
// back before the final answer is taken. Parsing the answer into an Action is
// the caller's concern; a malformed answer surfaces there.
func (p *Professor) Invoke(ctx context.Context, intent *models.ClassifiedIntent) (string, error) {
	userData := map[string]string{
		"userId":          intent.UserID,
		"courseId":        intent.CourseID,
		"summarizedInput": intent.SummarizedInput,
		"forumId":         intent.ForumID,
		"postId":          intent.PostID,
		"intent":          intent.Intent,
		"source":          intent.Source,
	}

	payload, err := json.Marshal(userData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user data: %w", err)
	}

	session := p.model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text("USER_DATA: "+string(payload)))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}

		responses := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result, err := p.toolbox.Execute(ctx, call)
			if err != nil {
				p.logger.Error("Tool execution failed",
					zap.String("tool", call.Name),
					zap.Error(err))
				result = map[string]interface{}{"error": err.Error()}
			}
			responses = append(responses, genai.FunctionResponse{
				Name:     call.Name,
				Response: result,
			})
		}

		resp, err = session.SendMessage(ctx, responses...)
		if err != nil {
			return "", fmt.Errorf("gemini API error after tool call: %w", err)
		}
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	p.logger.Debug("Professor agent answered",
		zap.String("post_id", intent.PostID),
		zap.Int("answer_length", len(text)))

	return cleanJSONResponse(text), nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}

	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}

	return "", fmt.Errorf("no text part in gemini response")
}
