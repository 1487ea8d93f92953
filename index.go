// Package softcosine ranks sparse term-vector documents by soft cosine
// similarity under a term similarity matrix.
package softcosine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/botirk38/softcosine/options"
	"github.com/botirk38/softcosine/similarity"
	"github.com/botirk38/softcosine/types"
)

// Index holds an ordered corpus of sparse vectors and their precomputed self-norms.
// Appends and queries must not run concurrently without external synchronization.
type Index struct {
	backend types.IndexBackend
	matrix  types.TermSimilarities
}

// Match represents a ranked search result with its similarity score.
type Match struct {
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

// New creates an empty Index bound to matrix with functional options.
// Without a backend option the corpus is kept in memory.
func New(matrix types.TermSimilarities, opts ...options.Option) (*Index, error) {
	if matrix == nil {
		return nil, errors.New("matrix cannot be nil")
	}

	cfg := options.NewConfig()
	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Index{backend: cfg.Backend, matrix: matrix}, nil
}

// Build creates an Index holding corpus in order. No index is returned if any vector is invalid.
func Build(ctx context.Context, corpus []types.SparseVector, matrix types.TermSimilarities, opts ...options.Option) (*Index, error) {
	opts = append([]options.Option{options.WithCapacity(len(corpus))}, opts...)
	ix, err := New(matrix, opts...)
	if err != nil {
		return nil, err
	}
	if err := ix.AppendBatch(ctx, corpus); err != nil {
		ix.Close()
		return nil, err
	}
	return ix, nil
}

// Score computes the soft cosine similarity of two vectors under matrix.
func Score(a, b types.SparseVector, matrix types.TermSimilarities) float64 {
	return similarity.SoftCosine(a.Canonical(), b.Canonical(), matrix)
}

// prepare canonicalizes v and checks it against the matrix vocabulary.
func (ix *Index) prepare(v types.SparseVector) (types.SparseVector, error) {
	v = v.Canonical()
	if err := v.Check(ix.matrix.Size()); err != nil {
		return nil, err
	}
	return v, nil
}

// Append adds v at the end of the corpus and returns its position.
// The self-norm is computed once; existing documents are not touched.
func (ix *Index) Append(ctx context.Context, v types.SparseVector) (int, error) {
	v, err := ix.prepare(v)
	if err != nil {
		return 0, err
	}
	doc := types.StoredDocument{
		Vector: v,
		Norm:   similarity.Norm(v, ix.matrix),
	}
	return ix.backend.Append(ctx, doc)
}

// AppendBatch validates all vectors first, then appends them in order.
func (ix *Index) AppendBatch(ctx context.Context, vs []types.SparseVector) error {
	prepared := make([]types.SparseVector, len(vs))
	for i, v := range vs {
		p, err := ix.prepare(v)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		prepared[i] = p
	}

	for _, v := range prepared {
		doc := types.StoredDocument{Vector: v, Norm: similarity.Norm(v, ix.matrix)}
		if _, err := ix.backend.Append(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// Query returns one similarity per indexed document, in insertion order.
// Zero-norm documents and queries score 0. An empty index yields an empty slice.
func (ix *Index) Query(ctx context.Context, q types.SparseVector) ([]float64, error) {
	q, err := ix.prepare(q)
	if err != nil {
		return nil, err
	}

	n, err := ix.backend.Len(ctx)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, 0, n)
	queryNorm := similarity.Norm(q, ix.matrix)

	err = ix.backend.Range(ctx, func(pos int, doc types.StoredDocument) error {
		if queryNorm == 0 || doc.Norm == 0 {
			scores = append(scores, 0)
			return nil
		}
		inner := similarity.Inner(q, doc.Vector, ix.matrix)
		scores = append(scores, similarity.Normalized(inner, queryNorm, doc.Norm))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// MostSimilar returns up to n documents sorted by descending similarity.
// Ties keep insertion order.
func (ix *Index) MostSimilar(ctx context.Context, q types.SparseVector, n int) ([]Match, error) {
	if n <= 0 {
		return nil, errors.New("n must be positive")
	}

	scores, err := ix.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(scores))
	for i, s := range scores {
		matches[i] = Match{Position: i, Score: s}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > n {
		return matches[:n], nil
	}
	return matches, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len(ctx context.Context) (int, error) {
	return ix.backend.Len(ctx)
}

// Document returns the stored vector and self-norm at pos.
func (ix *Index) Document(ctx context.Context, pos int) (types.StoredDocument, bool, error) {
	return ix.backend.Get(ctx, pos)
}

// Matrix returns the term similarity matrix the index was built against.
func (ix *Index) Matrix() types.TermSimilarities {
	return ix.matrix
}

// Reset removes every document from the index.
func (ix *Index) Reset(ctx context.Context) error {
	return ix.backend.Flush(ctx)
}

// Close closes the underlying backend.
func (ix *Index) Close() error {
	return ix.backend.Close()
}

// QueryResult holds the result of an async Query operation.
type QueryResult struct {
	Scores []float64
	Error  error
}

// QueryAsync runs Query in a goroutine.
// Returns a channel that will receive the result when complete.
func (ix *Index) QueryAsync(ctx context.Context, q types.SparseVector) <-chan QueryResult {
	resultCh := make(chan QueryResult, 1)
	go func() {
		defer close(resultCh)
		scores, err := ix.Query(ctx, q)
		resultCh <- QueryResult{Scores: scores, Error: err}
	}()
	return resultCh
}

// MostSimilarResult holds the result of an async MostSimilar operation.
type MostSimilarResult struct {
	Matches []Match
	Error   error
}

// MostSimilarAsync runs MostSimilar in a goroutine.
// Returns a channel that will receive the result when complete.
func (ix *Index) MostSimilarAsync(ctx context.Context, q types.SparseVector, n int) <-chan MostSimilarResult {
	resultCh := make(chan MostSimilarResult, 1)
	go func() {
		defer close(resultCh)
		matches, err := ix.MostSimilar(ctx, q, n)
		resultCh <- MostSimilarResult{Matches: matches, Error: err}
	}()
	return resultCh
}
