package similarity

import "math"

// CosineSimilarity is the default comparator for term embeddings when a
// similarity matrix is built. It returns 0 for empty, zero or different
// length vectors, which leaves the term pair out of the matrix.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
