// Package types holds the data model and collaborator interfaces shared by
// the matrix, scorer, index and backends.
package types

import (
	"fmt"
	"math"
	"sort"
)

// Component is a single (term id, value) coordinate of a sparse vector or matrix row.
type Component struct {
	Term  int     `json:"t"`
	Value float64 `json:"v"`
}

// SparseVector is a sparse weighted term-vector, sorted by Term with unique terms.
type SparseVector []Component

// NewSparseVector creates a sorted SparseVector from a term-weight map.
// Zero weights are dropped.
func NewSparseVector(weights map[int]float64) SparseVector {
	if len(weights) == 0 {
		return nil
	}
	v := make(SparseVector, 0, len(weights))
	for term, w := range weights {
		if w == 0 {
			continue
		}
		v = append(v, Component{Term: term, Value: w})
	}
	sort.Slice(v, func(i, j int) bool {
		return v[i].Term < v[j].Term
	})
	return v
}

// Canonical returns a sorted copy of v with duplicate terms summed and zero weights removed.
// A vector that is already canonical is returned as is.
func (v SparseVector) Canonical() SparseVector {
	if v.isCanonical() {
		return v
	}
	out := make(SparseVector, len(v))
	copy(out, v)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Term < out[j].Term
	})

	merged := out[:0]
	for _, c := range out {
		if n := len(merged); n > 0 && merged[n-1].Term == c.Term {
			merged[n-1].Value += c.Value
			continue
		}
		merged = append(merged, c)
	}

	result := merged[:0]
	for _, c := range merged {
		if c.Value != 0 {
			result = append(result, c)
		}
	}
	return result
}

func (v SparseVector) isCanonical() bool {
	for i, c := range v {
		if c.Value == 0 {
			return false
		}
		if i > 0 && v[i-1].Term >= c.Term {
			return false
		}
	}
	return true
}

// Check validates v against a vocabulary of size dim.
func (v SparseVector) Check(dim int) error {
	for _, c := range v {
		if c.Term < 0 || c.Term >= dim {
			return fmt.Errorf("%w: term %d not in [0, %d)", ErrOutOfRange, c.Term, dim)
		}
		if c.Value < 0 || math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
			return fmt.Errorf("%w: weight %g for term %d is not a finite non-negative number", ErrConfiguration, c.Value, c.Term)
		}
	}
	return nil
}

// Weight returns the weight stored for term, using binary search.
func (v SparseVector) Weight(term int) (float64, bool) {
	i := sort.Search(len(v), func(i int) bool { return v[i].Term >= term })
	if i < len(v) && v[i].Term == term {
		return v[i].Value, true
	}
	return 0, false
}

// Terms returns the term ids of v in order.
func (v SparseVector) Terms() []int {
	terms := make([]int, len(v))
	for i, c := range v {
		terms[i] = c.Term
	}
	return terms
}
