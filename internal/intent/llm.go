package intent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/models"
)

// LLMClassifier asks a langchaingo chat model for a JSON intent
type LLMClassifier struct {
	model       llms.Model
	instruction string
	options     []llms.CallOption
}

// NewLLMClassifier creates a classifier that prompts model with the catalog's menu
func NewLLMClassifier(model llms.Model, c *catalog.Catalog, options ...llms.CallOption) *LLMClassifier {
	return &LLMClassifier{
		model:       model,
		instruction: BuildInstruction(c),
		options:     options,
	}
}

// Classify sends one request; there is no retry
func (l *LLMClassifier) Classify(ctx context.Context, utterance string) (models.VoiceIntent, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, l.instruction),
		llms.TextParts(llms.ChatMessageTypeHuman, utterance),
	}

	resp, err := l.model.GenerateContent(ctx, messages, l.options...)
	if err != nil {
		return models.VoiceIntent{}, fmt.Errorf("failed to generate intent: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return models.VoiceIntent{}, ErrEmptyResponse
	}

	return ParseResponse(resp.Choices[0].Content)
}
