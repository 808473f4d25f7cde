package intent

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/models"
)

type chatCompleter interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

// AzureClassifier calls an Azure OpenAI chat deployment
type AzureClassifier struct {
	client      chatCompleter
	deployment  string
	instruction string
	temperature float32
	maxTokens   int32
}

// NewAzureClient creates an Azure OpenAI client authenticated with an API key
func NewAzureClient(endpoint, apiKey string) (*azopenai.Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("azure openai endpoint is required")
	}
	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}
	return client, nil
}

// NewAzureClassifier creates a classifier for the given deployment
func NewAzureClassifier(client *azopenai.Client, deployment string, c *catalog.Catalog, temperature float32, maxTokens int32) *AzureClassifier {
	return newAzureClassifier(client, deployment, c, temperature, maxTokens)
}

func newAzureClassifier(client chatCompleter, deployment string, c *catalog.Catalog, temperature float32, maxTokens int32) *AzureClassifier {
	return &AzureClassifier{
		client:      client,
		deployment:  deployment,
		instruction: BuildInstruction(c),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Classify sends one request; there is no retry. The instruction travels in
// the user turn together with the utterance.
func (a *AzureClassifier) Classify(ctx context.Context, utterance string) (models.VoiceIntent, error) {
	prompt := a.instruction + "\n\nUtterance: " + utterance

	opts := azopenai.ChatCompletionsOptions{
		Messages: []azopenai.ChatRequestMessageClassification{
			&azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(prompt),
			},
		},
		Temperature:    to.Ptr(a.temperature),
		DeploymentName: to.Ptr(a.deployment),
	}
	if a.maxTokens > 0 {
		opts.MaxTokens = to.Ptr(a.maxTokens)
	}

	resp, err := a.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return models.VoiceIntent{}, fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return models.VoiceIntent{}, ErrEmptyResponse
	}

	return ParseResponse(*resp.Choices[0].Message.Content)
}
