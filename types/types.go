package types

import (
	"context"
	"time"
)

// StoredDocument holds a corpus vector and its precomputed self-norm.
type StoredDocument struct {
	Vector SparseVector `json:"vector"`
	Norm   float64      `json:"norm"`
}

// IndexBackend defines the interface for different index storage backends.
// Backends are append-only: documents keep the position they were appended at.
type IndexBackend interface {
	// Append stores a document at the end and returns its position
	Append(ctx context.Context, doc StoredDocument) (int, error)

	// Get retrieves the document stored at pos
	Get(ctx context.Context, pos int) (StoredDocument, bool, error)

	// Len returns the number of stored documents
	Len(ctx context.Context) (int, error)

	// Range calls fn for every document in insertion order.
	// Iteration stops at the first error returned by fn.
	Range(ctx context.Context, fn func(pos int, doc StoredDocument) error) error

	// Flush removes all documents
	Flush(ctx context.Context) error

	// Close closes the backend and releases resources
	Close() error
}

// BackendConfig provides configuration options for backends
type BackendConfig struct {
	// For Redis: address or redis:// URL. For SQLite: database file path.
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// CacheSize bounds the decoded-document cache of remote backends
	CacheSize int
	Timeout   time.Duration

	// Additional options
	Options map[string]any
}

// BackendType represents the type of index backend
type BackendType string

const (
	BackendMemory BackendType = "memory"
	BackendSQLite BackendType = "sqlite"
	BackendRedis  BackendType = "redis"
)

// Vocabulary is a bijection between terms and dense ids 0..Len()-1.
type Vocabulary interface {
	Len() int
	ID(term string) (int, bool)
	Term(id int) (string, bool)
}

// EmbeddingLookup returns the embedding of a term, if the term is known.
type EmbeddingLookup interface {
	Lookup(term string) ([]float32, bool)
}

// TermWeighter supplies a non-negative importance weight per term id.
type TermWeighter interface {
	Weight(id int) float64
}

// TermSimilarities is a read-only sparse symmetric term similarity matrix.
type TermSimilarities interface {
	// Size returns the vocabulary size the matrix was built for
	Size() int
	// Row returns the off-diagonal nonzero entries of a row, sorted by term
	Row(term int) []Component
	// SimilarityOf returns 1 on the diagonal and 0 for absent entries
	SimilarityOf(i, j int) float64
}

// EmbeddingProvider defines the interface all embedding providers must satisfy.
type EmbeddingProvider interface {
	// EmbedText turns a piece of text into its embedding vector.
	EmbedText(text string) ([]float32, error)
	// EmbedBatch embeds several texts in one request, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Close frees any resources held by the provider.
	Close()
}

// ProviderType represents the type of embedding provider
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
)
