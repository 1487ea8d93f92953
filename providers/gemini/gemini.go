// Package gemini provides an embedding provider backed by the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/botirk38/softcosine/types"
)

// Ensure GeminiProvider implements the interface.
var _ types.EmbeddingProvider = (*GeminiProvider)(nil)

const (
	DefaultGeminiModel       = "text-embedding-004"
	DefaultRequestsPerSecond = 5.0
)

// GeminiConfig provides configuration options for the Gemini embedding provider
type GeminiConfig struct {
	APIKey string
	Model  string
	// RequestsPerSecond caps outgoing requests. Zero uses DefaultRequestsPerSecond.
	RequestsPerSecond float64
}

// GeminiProvider uses the Gemini API to embed text.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGeminiProvider creates an embedding provider for Gemini.
func NewGeminiProvider(ctx context.Context, config GeminiConfig) (*GeminiProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("%w: Gemini API key is required", types.ErrConfiguration)
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	rps := config.RequestsPerSecond
	if rps < 0 {
		return nil, fmt.Errorf("%w: requests per second must be non-negative", types.ErrConfiguration)
	}
	if rps == 0 {
		rps = DefaultRequestsPerSecond
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Client returns the underlying SDK client, e.g. for token counting.
func (p *GeminiProvider) Client() *genai.Client {
	return p.client
}

// Model returns the embedding model name.
func (p *GeminiProvider) Model() string {
	return p.model
}

// EmbedText embeds a single text.
func (p *GeminiProvider) EmbedText(text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(context.Background(), []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in one request. Results follow the input order.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("no embedding returned by Gemini for input %d", i)
		}
		embeddings[i] = e.Values
	}
	return embeddings, nil
}

func (p *GeminiProvider) Close() {}
