package similarity

import (
	"math"
	"sort"

	"github.com/botirk38/softcosine/types"
)

// Inner computes the soft inner product a^T S b, where S is the term similarity matrix.
// Both vectors must be sorted by term. Only the nonzero entries of S for terms in a
// are visited, intersected with the support of b.
func Inner(a, b types.SparseVector, m types.TermSimilarities) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var sum float64
	for _, x := range a {
		if w, ok := b.Weight(x.Term); ok {
			sum += x.Value * w
		}
		if row := m.Row(x.Term); len(row) > 0 {
			sum += x.Value * rowDot(row, b)
		}
	}
	return sum
}

// rowDot computes sum(row[j] * b[j]) over the shared terms.
// The shorter side is iterated and the longer side binary searched.
func rowDot(row []types.Component, b types.SparseVector) float64 {
	short, long := row, []types.Component(b)
	if len(short) > len(long) {
		short, long = long, short
	}

	var sum float64
	lo := 0
	for _, s := range short {
		rest := long[lo:]
		k := sort.Search(len(rest), func(i int) bool { return rest[i].Term >= s.Term })
		lo += k
		if lo >= len(long) {
			break
		}
		if long[lo].Term == s.Term {
			sum += s.Value * long[lo].Value
			lo++
		}
	}
	return sum
}

// Norm returns sqrt(a^T S a). A non-positive or non-finite self product yields 0.
func Norm(a types.SparseVector, m types.TermSimilarities) float64 {
	self := Inner(a, a, m)
	if !(self > 0) || math.IsInf(self, 0) {
		return 0
	}
	return math.Sqrt(self)
}

// SoftCosine computes the soft cosine measure between two sparse term-vectors.
// Returns 0 if either vector is empty or has a non-positive self product.
func SoftCosine(a, b types.SparseVector, m types.TermSimilarities) float64 {
	normA := Norm(a, m)
	if normA == 0 {
		return 0
	}
	normB := Norm(b, m)
	if normB == 0 {
		return 0
	}
	return Normalized(Inner(a, b, m), normA, normB)
}

// Normalized divides an inner product by two precomputed norms and clamps the
// result to [-1, 1]. A zero norm or a non-finite quotient yields 0.
func Normalized(inner, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	score := inner / (normA * normB)
	switch {
	case math.IsNaN(score):
		return 0
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}
