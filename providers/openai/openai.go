// Package openai provides an embedding provider backed by the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"os"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"

	"github.com/botirk38/softcosine/types"
)

// Ensure OpenAIProvider implements the interface.
var _ types.EmbeddingProvider = (*OpenAIProvider)(nil)

const (
	DefaultOpenAIModel       = openai.EmbeddingModelTextEmbedding3Small
	DefaultRequestsPerSecond = 5.0
	defaultBurst             = 1
)

// OpenAIProvider uses OpenAI's API to embed text.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// OpenAIConfig provides configuration options for OpenAI embedding provider
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Model   string
	// RequestsPerSecond caps outgoing requests. Zero uses DefaultRequestsPerSecond.
	RequestsPerSecond float64
}

// NewOpenAIProvider creates an embedding provider for OpenAI.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("%w: OpenAI API key is required", types.ErrConfiguration)
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	rps := config.RequestsPerSecond
	if rps < 0 {
		return nil, fmt.Errorf("%w: requests per second must be non-negative", types.ErrConfiguration)
	}
	if rps == 0 {
		rps = DefaultRequestsPerSecond
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:  &client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), defaultBurst),
	}, nil
}

// EmbedText sends a single embedding request to OpenAI.
func (p *OpenAIProvider) EmbedText(text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(context.Background(), []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in one request. Results follow the input order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		idx := int(data.Index)
		if idx < 0 || idx >= len(texts) {
			return nil, fmt.Errorf("openai returned embedding index %d out of range", idx)
		}
		embeddings[idx] = toFloat32(data.Embedding)
	}
	for i, e := range embeddings {
		if e == nil {
			return nil, fmt.Errorf("no embedding returned by OpenAI for input %d", i)
		}
	}
	return embeddings, nil
}

// OpenAI returns []float64; the lookup tables hold []float32.
func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func (p *OpenAIProvider) Close() {}
