package intent

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/config"
)

// ProviderType represents the remote service behind the classifier
type ProviderType string

const (
	NoProvider           ProviderType = "none"
	OpenAIProvider       ProviderType = "openai"
	GitHubModelsProvider ProviderType = "github_models"
	AnthropicProvider    ProviderType = "anthropic"
	OllamaProvider       ProviderType = "ollama"
	GeminiProvider       ProviderType = "gemini"
	AzureOpenAIProvider  ProviderType = "azure_openai"
)

// ModelProvider holds the defaults for a provider type
type ModelProvider struct {
	Type         ProviderType
	DefaultModel string
	KeyEnv       string // environment variable consulted when no key is configured
	BaseURL      string
	BaseURLEnv   string
	ModelEnv     string
}

var providers = map[ProviderType]ModelProvider{
	OpenAIProvider: {
		Type:         OpenAIProvider,
		DefaultModel: "gpt-4o-mini",
		KeyEnv:       "OPENAI_API_KEY",
	},
	GitHubModelsProvider: {
		Type:         GitHubModelsProvider,
		DefaultModel: "gpt-4o-mini",
		KeyEnv:       "GITHUB_TOKEN",
		BaseURL:      "https://models.inference.ai.azure.com",
	},
	AnthropicProvider: {
		Type:         AnthropicProvider,
		DefaultModel: "claude-3-5-haiku-latest",
		KeyEnv:       "ANTHROPIC_API_KEY",
	},
	OllamaProvider: {
		Type:         OllamaProvider,
		DefaultModel: "llama3.1",
		BaseURL:      "http://localhost:11434",
	},
	GeminiProvider: {
		Type:         GeminiProvider,
		DefaultModel: DefaultGeminiModel,
		KeyEnv:       "GEMINI_API_KEY",
	},
	AzureOpenAIProvider: {
		Type:       AzureOpenAIProvider,
		KeyEnv:     "AZURE_OPENAI_API_KEY",
		BaseURLEnv: "AZURE_OPENAI_ENDPOINT",
		ModelEnv:   "AZURE_OPENAI_DEPLOYMENT_NAME",
	},
}

// NewRemoteClassifier builds the remote classifier described by cfg. It
// returns a nil Classifier when no provider is configured or the provider
// has no credentials; callers then run on the keyword fallback alone.
func NewRemoteClassifier(ctx context.Context, cfg config.IntentConfig, c *catalog.Catalog, logger *zap.Logger) (Classifier, error) {
	pt := ProviderType(cfg.Provider)
	if pt == "" || pt == NoProvider {
		logger.Info("No remote intent provider configured, using keyword matching only")
		return nil, nil
	}

	provider, ok := providers[pt]
	if !ok {
		return nil, fmt.Errorf("unsupported intent provider: %s", cfg.Provider)
	}

	apiKey := cfg.APIKey
	if apiKey == "" && provider.KeyEnv != "" {
		apiKey = os.Getenv(provider.KeyEnv)
	}
	if apiKey == "" && provider.KeyEnv != "" {
		logger.Warn("Intent provider has no API key, using keyword matching only",
			zap.String("provider", string(pt)),
			zap.String("env", provider.KeyEnv),
		)
		return nil, nil
	}

	model := firstNonEmpty(cfg.Model, envValue(provider.ModelEnv), provider.DefaultModel)
	baseURL := firstNonEmpty(cfg.BaseURL, envValue(provider.BaseURLEnv), provider.BaseURL)

	var (
		classifier Classifier
		err        error
	)
	switch pt {
	case GeminiProvider:
		classifier, err = initializeGemini(ctx, apiKey, model, cfg, c)
	case AzureOpenAIProvider:
		classifier, err = initializeAzure(apiKey, baseURL, model, cfg, c)
	default:
		var llm llms.Model
		llm, err = initializeLLM(pt, apiKey, model, baseURL)
		if err == nil {
			classifier = NewLLMClassifier(llm, c, callOptions(cfg)...)
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Remote intent classifier ready",
		zap.String("provider", string(pt)),
		zap.String("model", model),
	)

	if cfg.Breaker.Enabled {
		classifier = NewBreakerClassifier(classifier, cfg.Breaker, logger)
	}
	return classifier, nil
}

func initializeLLM(pt ProviderType, apiKey, model, baseURL string) (llms.Model, error) {
	switch pt {
	case OpenAIProvider, GitHubModelsProvider:
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(model),
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
		}
		return llm, nil
	case AnthropicProvider:
		opts := []anthropic.Option{
			anthropic.WithToken(apiKey),
			anthropic.WithModel(model),
		}
		if baseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(baseURL))
		}
		llm, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Anthropic model: %w", err)
		}
		return llm, nil
	case OllamaProvider:
		llm, err := ollama.New(
			ollama.WithModel(model),
			ollama.WithServerURL(baseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Ollama model: %w", err)
		}
		return llm, nil
	}
	return nil, fmt.Errorf("unsupported model type: %s", pt)
}

func initializeGemini(ctx context.Context, apiKey, model string, cfg config.IntentConfig, c *catalog.Catalog) (Classifier, error) {
	client, err := NewGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return NewGeminiClassifier(client, model, c, float32(cfg.Temperature)), nil
}

func initializeAzure(apiKey, endpoint, deployment string, cfg config.IntentConfig, c *catalog.Catalog) (Classifier, error) {
	if deployment == "" {
		return nil, fmt.Errorf("azure openai deployment name is required")
	}
	client, err := NewAzureClient(endpoint, apiKey)
	if err != nil {
		return nil, err
	}
	return NewAzureClassifier(client, deployment, c, float32(cfg.Temperature), int32(cfg.MaxTokens)), nil
}

func envValue(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// callOptions applies to every langchaingo backend; anthropic ignores JSON mode
// and relies on the instruction alone.
func callOptions(cfg config.IntentConfig) []llms.CallOption {
	opts := []llms.CallOption{
		llms.WithTemperature(cfg.Temperature),
		llms.WithJSONMode(),
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	return opts
}
