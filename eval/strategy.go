// Package eval compares scoring strategies on ranked retrieval tasks.
package eval

import (
	"context"
	"fmt"

	softcosine "github.com/botirk38/softcosine"
	"github.com/botirk38/softcosine/matrix"
	"github.com/botirk38/softcosine/types"
)

// Strategy names.
const (
	StrategyCosine     = "cosine"
	StrategySoftCosine = "softcosine"
)

// Strategy scores every corpus document against a query.
type Strategy interface {
	Name() string
	Scores(ctx context.Context, query types.SparseVector, corpus []types.SparseVector) ([]float64, error)
}

// indexStrategy builds a fresh in-memory index per call so strategies can be
// shared by concurrent workers.
type indexStrategy struct {
	name   string
	matrix types.TermSimilarities
}

// NewStrategy returns the named strategy over m. Cosine uses an identity
// matrix of the same size, so only m.Size() matters for it.
func NewStrategy(name string, m types.TermSimilarities) (Strategy, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: matrix cannot be nil", types.ErrConfiguration)
	}
	switch name {
	case StrategyCosine:
		identity, err := matrix.Identity(m.Size())
		if err != nil {
			return nil, err
		}
		return &indexStrategy{name: name, matrix: identity}, nil
	case StrategySoftCosine:
		return &indexStrategy{name: name, matrix: m}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedStrategy, name)
	}
}

func (s *indexStrategy) Name() string {
	return s.name
}

func (s *indexStrategy) Scores(ctx context.Context, query types.SparseVector, corpus []types.SparseVector) ([]float64, error) {
	ix, err := softcosine.Build(ctx, corpus, s.matrix)
	if err != nil {
		return nil, err
	}
	defer ix.Close()
	return ix.Query(ctx, query)
}
