// Package providers creates embedding providers by type.
package providers

import (
	"context"
	"fmt"

	"github.com/botirk38/softcosine/providers/gemini"
	"github.com/botirk38/softcosine/providers/openai"
	"github.com/botirk38/softcosine/tokenizer"
	"github.com/botirk38/softcosine/types"
)

// Config holds the settings shared by every provider type.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerSecond float64
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config openai.OpenAIConfig) (types.EmbeddingProvider, error) {
	return openai.NewOpenAIProvider(config)
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config gemini.GeminiConfig) (types.EmbeddingProvider, error) {
	return gemini.NewGeminiProvider(ctx, config)
}

// NewProvider creates a provider of the given type together with a token
// counter matching its tokenization.
func NewProvider(ctx context.Context, providerType types.ProviderType, config Config) (types.EmbeddingProvider, tokenizer.TokenCounter, error) {
	switch providerType {
	case types.ProviderOpenAI:
		p, err := openai.NewOpenAIProvider(openai.OpenAIConfig{
			APIKey:            config.APIKey,
			BaseURL:           config.BaseURL,
			Model:             config.Model,
			RequestsPerSecond: config.RequestsPerSecond,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, tokenizer.NewOpenAITokenizer(), nil
	case types.ProviderGemini:
		p, err := gemini.NewGeminiProvider(ctx, gemini.GeminiConfig{
			APIKey:            config.APIKey,
			Model:             config.Model,
			RequestsPerSecond: config.RequestsPerSecond,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, tokenizer.NewGeminiTokenizer(p.Client(), p.Model()), nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", types.ErrUnknownProvider, providerType)
	}
}
