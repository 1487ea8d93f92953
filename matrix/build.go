package matrix

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/types"
)

// embedded is a vocabulary term that has an embedding.
type embedded struct {
	id     int
	vector []float32
	weight float64
}

// candidate is a possible neighbor of the term being processed.
type candidate struct {
	id    int
	value float64
	key   float64
}

// Validate checks the build configuration.
func (c *Config) Validate() error {
	if c.NonzeroLimit < 0 {
		return fmt.Errorf("%w: nonzero limit %d is negative", types.ErrConfiguration, c.NonzeroLimit)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("%w: min similarity %g not in [0, 1]", types.ErrConfiguration, c.MinSimilarity)
	}
	if c.Exponent <= 0 || math.IsNaN(c.Exponent) || math.IsInf(c.Exponent, 0) {
		return fmt.Errorf("%w: exponent %g must be positive", types.ErrConfiguration, c.Exponent)
	}
	if c.Comparator == nil {
		return fmt.Errorf("%w: comparator is required", types.ErrConfiguration)
	}
	return nil
}

// Build constructs a term similarity matrix over vocabulary from embedding similarities.
//
// Terms are visited in descending weight order (vocabulary order without weights).
// Each visited term takes its most similar embedded neighbors until its row holds
// NonzeroLimit entries; a neighbor whose own row is already full is skipped. Every
// accepted pair is stored in both rows, so the matrix is exactly symmetric and no row
// exceeds the limit. Terms without an embedding keep identity-only rows.
func Build(ctx context.Context, vocabulary types.Vocabulary, lookup types.EmbeddingLookup, opts ...Option) (*Matrix, error) {
	cfg := NewConfig()
	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if vocabulary == nil || vocabulary.Len() == 0 {
		return nil, fmt.Errorf("%w: vocabulary is empty", types.ErrConfiguration)
	}
	if lookup == nil {
		return nil, fmt.Errorf("%w: embedding lookup is required", types.ErrConfiguration)
	}

	size := vocabulary.Len()
	terms, err := collectEmbedded(vocabulary, lookup, cfg.Weights)
	if err != nil {
		return nil, err
	}
	logger.Debug("matrix: %d of %d terms have embeddings", len(terms), size)

	if cfg.Weights != nil {
		sort.SliceStable(terms, func(a, b int) bool {
			if terms[a].weight != terms[b].weight {
				return terms[a].weight > terms[b].weight
			}
			return terms[a].id < terms[b].id
		})
	}

	cells := make([]map[int]float64, size)
	counts := make([]int, size)
	rowSums := make([]float64, size)

	for done, t := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if counts[t.id] < cfg.NonzeroLimit {
			for _, c := range rankCandidates(t, terms, cfg) {
				if counts[t.id] >= cfg.NonzeroLimit {
					break
				}
				if counts[c.id] >= cfg.NonzeroLimit {
					continue
				}
				if _, exists := cells[t.id][c.id]; exists {
					continue
				}
				if cfg.Dominant && (rowSums[t.id]+c.value >= 1 || rowSums[c.id]+c.value >= 1) {
					continue
				}
				if cells[t.id] == nil {
					cells[t.id] = make(map[int]float64)
				}
				if cells[c.id] == nil {
					cells[c.id] = make(map[int]float64)
				}
				cells[t.id][c.id] = c.value
				cells[c.id][t.id] = c.value
				counts[t.id]++
				counts[c.id]++
				rowSums[t.id] += c.value
				rowSums[c.id] += c.value
			}
		}
		if cfg.Progress != nil {
			cfg.Progress(done+1, len(terms))
		}
	}

	m := &Matrix{size: size, rows: make([][]types.Component, size)}
	for i, row := range cells {
		m.rows[i] = sortedRow(row)
	}
	logger.Debug("matrix: stored %d nonzero entries, longest row %d", m.NonzeroCount(), m.MaxRowLen())
	return m, nil
}

// collectEmbedded returns the vocabulary terms present in the embedding space, in id order.
func collectEmbedded(vocabulary types.Vocabulary, lookup types.EmbeddingLookup, weights types.TermWeighter) ([]embedded, error) {
	dim := -1
	terms := make([]embedded, 0, vocabulary.Len())
	for id := 0; id < vocabulary.Len(); id++ {
		w := 1.0
		if weights != nil {
			w = weights.Weight(id)
			if w < 0 || math.IsNaN(w) {
				return nil, fmt.Errorf("%w: negative weight %g for term %d", types.ErrConfiguration, w, id)
			}
		}

		term, ok := vocabulary.Term(id)
		if !ok {
			continue
		}
		vector, ok := lookup.Lookup(term)
		if !ok || len(vector) == 0 {
			continue
		}
		if dim == -1 {
			dim = len(vector)
		} else if len(vector) != dim {
			return nil, fmt.Errorf("%w: embedding of %q has %d dimensions, expected %d",
				types.ErrConfiguration, term, len(vector), dim)
		}
		terms = append(terms, embedded{id: id, vector: vector, weight: w})
	}
	return terms, nil
}

// rankCandidates scores every other embedded term against t and returns the
// retained ones by descending rank key, ties broken by ascending id.
func rankCandidates(t embedded, terms []embedded, cfg *Config) []candidate {
	if cfg.NonzeroLimit == 0 {
		return nil
	}
	candidates := make([]candidate, 0, len(terms))
	for _, c := range terms {
		if c.id == t.id {
			continue
		}
		sim := cfg.Comparator(t.vector, c.vector)
		if sim <= 0 || math.IsNaN(sim) {
			continue
		}
		value := math.Pow(math.Min(sim, 1), cfg.Exponent)
		if value < similarityFloor || value < cfg.MinSimilarity {
			continue
		}
		key := value
		if cfg.Weights != nil {
			key = value * t.weight * c.weight
		}
		candidates = append(candidates, candidate{id: c.id, value: value, key: key})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].key != candidates[b].key {
			return candidates[a].key > candidates[b].key
		}
		return candidates[a].id < candidates[b].id
	})
	return candidates
}
