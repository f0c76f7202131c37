package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"pixsort/internal/costtracker"
)

// GeminiClassifier classifies images through the Google Gemini API.
type GeminiClassifier struct {
	client         *genai.Client
	model          string
	promptTemplate string
	costTracker    costtracker.CostTracker
}

// NewGeminiClassifier creates a Gemini-backed classifier.
func NewGeminiClassifier(ctx context.Context, apiKey, model, promptTemplate string, tracker costtracker.CostTracker) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Infof("Gemini classifier initialized with model %s", model)

	return &GeminiClassifier{
		client:         client,
		model:          model,
		promptTemplate: promptTemplate,
		costTracker:    tracker,
	}, nil
}

// Name returns the provider name.
func (c *GeminiClassifier) Name() string { return "gemini" }

// ModelName returns the specific model identifier.
func (c *GeminiClassifier) ModelName() string { return c.model }

// Close releases the underlying API client.
func (c *GeminiClassifier) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *GeminiClassifier) Classify(ctx context.Context, req Request) (Decision, error) {
	if c.client == nil {
		return Decision{}, fmt.Errorf("Gemini classifier is not initialized")
	}

	prompt := BuildPrompt(c.promptTemplate, req.Folders)
	// genai wants the bare subtype ("jpeg", "png"), not the full MIME type.
	format := strings.TrimPrefix(req.MIMEType, "image/")

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(format, req.ImageData),
		genai.Text(prompt),
	)
	if err != nil {
		return Decision{}, fmt.Errorf("Gemini generate content failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Decision{}, ErrNoChoices
	}

	c.recordUsage(ctx, req.ImageName, resp.UsageMetadata)

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return ParseReply(req.ImageName, strings.TrimSpace(sb.String()))
}

func (c *GeminiClassifier) recordUsage(ctx context.Context, imageName string, usage *genai.UsageMetadata) {
	if c.costTracker == nil || usage == nil || usage.TotalTokenCount == 0 {
		return
	}
	event := costtracker.CostEvent{
		Operation:    "classification",
		ProviderName: c.Name(),
		ModelName:    c.model,
		InputTokens:  int(usage.PromptTokenCount),
		OutputTokens: int(usage.CandidatesTokenCount),
	}
	if err := c.costTracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record usage for %s: %v", imageName, err)
	}
}

var _ ImageClassifier = (*GeminiClassifier)(nil)
