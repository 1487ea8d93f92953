package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/botirk38/softcosine/types"
)

func TestNewGeminiProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingKey", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		_, err := NewGeminiProvider(ctx, GeminiConfig{})
		if !errors.Is(err, types.ErrConfiguration) {
			t.Errorf("Expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("NegativeRate", func(t *testing.T) {
		_, err := NewGeminiProvider(ctx, GeminiConfig{APIKey: "key", RequestsPerSecond: -2})
		if !errors.Is(err, types.ErrConfiguration) {
			t.Errorf("Expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		p, err := NewGeminiProvider(ctx, GeminiConfig{APIKey: "key"})
		if err != nil {
			t.Fatalf("Expected provider, got error: %v", err)
		}
		defer p.Close()
		if p.Model() != DefaultGeminiModel {
			t.Errorf("Expected model %s, got %s", DefaultGeminiModel, p.Model())
		}
		if p.Client() == nil {
			t.Error("Expected client to be set")
		}
		out, err := p.EmbedBatch(ctx, nil)
		if err != nil || out != nil {
			t.Errorf("Expected nil result for empty input, got %v (err %v)", out, err)
		}
	})
}
