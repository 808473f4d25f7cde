package intent

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/models"
)

// DefaultGeminiModel is used when no model is configured for the gemini provider
const DefaultGeminiModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier uses the Gemini API with a response schema that mirrors VoiceIntent
type GeminiClassifier struct {
	models contentGenerator
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiClient creates a genai client for the Gemini API backend
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiClassifier creates a Gemini-backed classifier
func NewGeminiClassifier(client *genai.Client, model string, c *catalog.Catalog, temperature float32) *GeminiClassifier {
	return newGeminiClassifier(client.Models, model, c, temperature)
}

func newGeminiClassifier(gen contentGenerator, model string, c *catalog.Catalog, temperature float32) *GeminiClassifier {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClassifier{
		models: gen,
		model:  model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(BuildInstruction(c), genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    intentSchema(c),
			Temperature:       genai.Ptr(temperature),
		},
	}
}

// Classify sends one request; there is no retry
func (g *GeminiClassifier) Classify(ctx context.Context, utterance string) (models.VoiceIntent, error) {
	contents := []*genai.Content{genai.NewContentFromText(utterance, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, g.config)
	if err != nil {
		return models.VoiceIntent{}, fmt.Errorf("failed to generate intent: %w", err)
	}
	if resp == nil {
		return models.VoiceIntent{}, ErrEmptyResponse
	}

	return ParseResponse(resp.Text())
}

func intentSchema(c *catalog.Catalog) *genai.Schema {
	actions := make([]string, len(models.Actions))
	for i, a := range models.Actions {
		actions[i] = string(a)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action": {
				Type: genai.TypeString,
				Enum: actions,
			},
			"item": {
				Type:        genai.TypeString,
				Description: "Menu name for ADD_ORDER",
				Enum:        c.Names(),
				Nullable:    genai.Ptr(true),
			},
			"temperature": {
				Type:     genai.TypeString,
				Enum:     []string{string(models.Hot), string(models.Ice)},
				Nullable: genai.Ptr(true),
			},
		},
		Required: []string{"action"},
	}
}
