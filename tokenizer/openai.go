// Package tokenizer counts tokens so embedding requests stay within provider limits.
package tokenizer

import (
	"context"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter counts the tokens a provider would charge for text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Ensure tokenizers implement the interface.
var (
	_ TokenCounter = (*OpenAITokenizer)(nil)
	_ TokenCounter = (*GeminiTokenizer)(nil)
)

// OpenAITokenizer counts tokens for OpenAI embedding inputs using tiktoken
type OpenAITokenizer struct {
	once sync.Once
	enc  tokenizer.Codec
	err  error
}

// NewOpenAITokenizer creates a new OpenAITokenizer
func NewOpenAITokenizer() *OpenAITokenizer {
	return &OpenAITokenizer{}
}

// CountTokens counts tokens in text using the Cl100kBase encoding.
// This is a local, fast operation that doesn't require an API call
func (t *OpenAITokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	t.once.Do(func() {
		t.enc, t.err = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if t.err != nil {
		return 0, t.err
	}

	ids, _, _ := t.enc.Encode(text)
	return len(ids), nil
}
