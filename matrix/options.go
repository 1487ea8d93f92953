package matrix

import (
	"fmt"

	"github.com/botirk38/softcosine/similarity"
	"github.com/botirk38/softcosine/types"
)

const (
	// DefaultNonzeroLimit caps the off-diagonal entries kept per row.
	DefaultNonzeroLimit = 100
	// DefaultExponent is applied to clamped embedding similarities.
	DefaultExponent = 2.0

	// similarityFloor is the smallest value stored in the matrix.
	similarityFloor = 1e-8
)

// Option represents a configuration option for Build
type Option func(*Config) error

// Config holds the parameters of a matrix build
type Config struct {
	NonzeroLimit  int
	MinSimilarity float64
	Exponent      float64
	Weights       types.TermWeighter
	Comparator    similarity.SimilarityFunc
	Dominant      bool
	Progress      func(done, total int)
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		NonzeroLimit: DefaultNonzeroLimit,
		Exponent:     DefaultExponent,
		Comparator:   similarity.CosineSimilarity,
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithNonzeroLimit caps the number of off-diagonal entries per row.
func WithNonzeroLimit(limit int) Option {
	return func(cfg *Config) error {
		cfg.NonzeroLimit = limit
		return nil
	}
}

// WithMinSimilarity discards entries whose value is below min.
func WithMinSimilarity(min float64) Option {
	return func(cfg *Config) error {
		cfg.MinSimilarity = min
		return nil
	}
}

// WithExponent raises each clamped embedding similarity to the given power.
func WithExponent(exponent float64) Option {
	return func(cfg *Config) error {
		cfg.Exponent = exponent
		return nil
	}
}

// WithTermWeights prefers important term pairs when rows are truncated.
func WithTermWeights(weights types.TermWeighter) Option {
	return func(cfg *Config) error {
		if weights == nil {
			return fmt.Errorf("%w: term weights cannot be nil", types.ErrConfiguration)
		}
		cfg.Weights = weights
		return nil
	}
}

// WithComparator sets the embedding similarity function (cosine by default).
func WithComparator(comparator similarity.SimilarityFunc) Option {
	return func(cfg *Config) error {
		if comparator == nil {
			return fmt.Errorf("%w: comparator cannot be nil", types.ErrConfiguration)
		}
		cfg.Comparator = comparator
		return nil
	}
}

// WithDiagonalDominance keeps the off-diagonal sum of every row below 1.
// The resulting matrix is strictly diagonally dominant and therefore positive definite.
func WithDiagonalDominance() Option {
	return func(cfg *Config) error {
		cfg.Dominant = true
		return nil
	}
}

// WithProgress registers a callback invoked after each processed term.
func WithProgress(fn func(done, total int)) Option {
	return func(cfg *Config) error {
		cfg.Progress = fn
		return nil
	}
}
