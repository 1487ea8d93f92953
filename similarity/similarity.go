// Package similarity provides similarity algorithms for comparing embedding
// vectors and the soft cosine measure for sparse term-vectors.
package similarity

// SimilarityFunc represents a function that computes similarity between two embedding vectors.
// It should return a float64 where higher values indicate greater similarity.
type SimilarityFunc func(a, b []float32) float64
