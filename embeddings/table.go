// Package embeddings supplies term embedding lookups for matrix construction.
package embeddings

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/tokenizer"
	"github.com/botirk38/softcosine/types"
)

// Ensure Table implements the interface.
var _ types.EmbeddingLookup = (*Table)(nil)

// Table maps terms to dense embeddings of a single dimension.
type Table struct {
	vectors map[string][]float32
	dim     int
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{vectors: make(map[string][]float32)}
}

// Set stores the embedding of term. All embeddings must share one dimension.
func (t *Table) Set(term string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding for %q", types.ErrConfiguration, term)
	}
	if t.dim != 0 && len(vector) != t.dim {
		return fmt.Errorf("%w: %q has dimension %d, expected %d", types.ErrDimensionMismatch, term, len(vector), t.dim)
	}
	t.dim = len(vector)
	t.vectors[term] = vector
	return nil
}

// Lookup returns the embedding of term.
func (t *Table) Lookup(term string) ([]float32, bool) {
	v, ok := t.vectors[term]
	return v, ok
}

// Len returns the number of terms with an embedding.
func (t *Table) Len() int {
	return len(t.vectors)
}

// Dim returns the embedding dimension, or 0 for an empty table.
func (t *Table) Dim() int {
	return t.dim
}

// LoadWord2Vec reads the word2vec text format: one "term v1 v2 ..." line per
// term, optionally preceded by a "count dim" header.
func LoadWord2Vec(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 && isHeader(fields) {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has no vector", types.ErrConfiguration, line)
		}

		vector := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", types.ErrConfiguration, line, err)
			}
			vector[i] = float32(x)
		}
		if err := t.Set(fields[0], vector); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func isHeader(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}

// BatchConfig bounds the requests FromProvider sends.
type BatchConfig struct {
	// MaxBatchSize caps the number of terms per request. Zero means DefaultMaxBatchSize.
	MaxBatchSize int
	// MaxBatchTokens caps the summed token count per request. Zero disables the cap.
	MaxBatchTokens int
	// Counter counts tokens per term. Required when MaxBatchTokens is set.
	Counter tokenizer.TokenCounter
}

// DefaultMaxBatchSize is used when BatchConfig.MaxBatchSize is zero.
const DefaultMaxBatchSize = 256

// FromProvider embeds terms with provider and returns them as a Table.
// Terms are grouped into batches that respect cfg.
func FromProvider(ctx context.Context, provider types.EmbeddingProvider, terms []string, cfg BatchConfig) (*Table, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: provider cannot be nil", types.ErrConfiguration)
	}
	if cfg.MaxBatchSize < 0 || cfg.MaxBatchTokens < 0 {
		return nil, fmt.Errorf("%w: batch limits must be non-negative", types.ErrConfiguration)
	}
	if cfg.MaxBatchTokens > 0 && cfg.Counter == nil {
		return nil, fmt.Errorf("%w: a token counter is required with a token budget", types.ErrConfiguration)
	}
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}

	batches, err := plan(ctx, terms, cfg)
	if err != nil {
		return nil, err
	}

	t := NewTable()
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors, err := provider.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d: %w", i, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("batch %d: provider returned %d embeddings for %d terms", i, len(vectors), len(batch))
		}
		for j, term := range batch {
			if err := t.Set(term, vectors[j]); err != nil {
				return nil, err
			}
		}
		logger.Debug("embeddings: batch %d/%d (%d terms)", i+1, len(batches), len(batch))
	}
	return t, nil
}

// plan splits terms into batches. A single term over the token budget gets a
// batch of its own.
func plan(ctx context.Context, terms []string, cfg BatchConfig) ([][]string, error) {
	var batches [][]string
	var current []string
	tokens := 0

	for _, term := range terms {
		n := 0
		if cfg.MaxBatchTokens > 0 {
			var err error
			n, err = cfg.Counter.CountTokens(ctx, term)
			if err != nil {
				return nil, fmt.Errorf("counting tokens for %q: %w", term, err)
			}
		}

		full := len(current) == cfg.MaxBatchSize ||
			(cfg.MaxBatchTokens > 0 && len(current) > 0 && tokens+n > cfg.MaxBatchTokens)
		if full {
			batches = append(batches, current)
			current, tokens = nil, 0
		}
		current = append(current, term)
		tokens += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}
