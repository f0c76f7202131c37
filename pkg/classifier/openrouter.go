package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"pixsort/internal/costtracker"
)

// ChatCompletionClient is the minimal slice of the OpenAI client the
// classifier needs, so tests can substitute a mock.
type ChatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenRouterClassifier classifies images through an OpenAI-compatible
// chat-completions endpoint (OpenRouter by default).
type OpenRouterClassifier struct {
	client         ChatCompletionClient
	model          string
	promptTemplate string
	costTracker    costtracker.CostTracker
}

// NewOpenRouterClassifier builds a classifier against the given endpoint.
// baseURL may be empty to use the stock OpenAI endpoint.
func NewOpenRouterClassifier(apiKey, baseURL, model, promptTemplate string, tracker costtracker.CostTracker) (*OpenRouterClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(cfg)
	log.Infof("OpenRouter classifier initialized with model %s", model)

	return &OpenRouterClassifier{
		client:         client,
		model:          model,
		promptTemplate: promptTemplate,
		costTracker:    tracker,
	}, nil
}

// NewOpenRouterClassifierWithClient injects a prebuilt client. Used by tests.
func NewOpenRouterClassifierWithClient(client ChatCompletionClient, model, promptTemplate string, tracker costtracker.CostTracker) *OpenRouterClassifier {
	return &OpenRouterClassifier{
		client:         client,
		model:          model,
		promptTemplate: promptTemplate,
		costTracker:    tracker,
	}
}

// Name returns the provider name.
func (c *OpenRouterClassifier) Name() string { return "openrouter" }

// ModelName returns the specific model identifier.
func (c *OpenRouterClassifier) ModelName() string { return c.model }

func (c *OpenRouterClassifier) Classify(ctx context.Context, req Request) (Decision, error) {
	if c.client == nil {
		return Decision{}, fmt.Errorf("OpenRouter classifier is not initialized")
	}

	prompt := BuildPrompt(c.promptTemplate, req.Folders)
	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MIMEType,
		base64.StdEncoding.EncodeToString(req.ImageData))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return Decision{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Decision{}, ErrNoChoices
	}

	c.recordUsage(ctx, req.ImageName, resp.Usage)

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	return ParseReply(req.ImageName, content)
}

func (c *OpenRouterClassifier) recordUsage(ctx context.Context, imageName string, usage openai.Usage) {
	if c.costTracker == nil || usage.TotalTokens == 0 {
		return
	}
	event := costtracker.CostEvent{
		Operation:    "classification",
		ProviderName: c.Name(),
		ModelName:    c.model,
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
	}
	if err := c.costTracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record usage for %s: %v", imageName, err)
	}
}

var _ ImageClassifier = (*OpenRouterClassifier)(nil)
