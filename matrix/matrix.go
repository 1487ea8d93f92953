// Package matrix builds and stores sparse symmetric term similarity matrices
// derived from word embeddings.
package matrix

import (
	"fmt"
	"sort"

	"github.com/botirk38/softcosine/types"
)

// Ensure Matrix implements the interface.
var _ types.TermSimilarities = (*Matrix)(nil)

// Matrix is an immutable sparse symmetric V x V term similarity matrix.
// The diagonal is implicit and always 1. Rows hold off-diagonal entries sorted by term.
type Matrix struct {
	size int
	rows [][]types.Component
}

// Edge is an undirected off-diagonal matrix entry.
type Edge struct {
	I, J  int
	Value float64
}

// Identity returns a matrix of the given size with no off-diagonal entries.
// Soft cosine under the identity matrix is plain cosine similarity.
func Identity(size int) (*Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: vocabulary is empty", types.ErrConfiguration)
	}
	return &Matrix{size: size, rows: make([][]types.Component, size)}, nil
}

// FromEntries builds a matrix from explicit edges. Each edge is stored in both rows.
// Diagonal edges and values below the similarity floor are ignored; a later edge
// for the same pair replaces an earlier one.
func FromEntries(size int, edges []Edge) (*Matrix, error) {
	m, err := Identity(size)
	if err != nil {
		return nil, err
	}

	cells := make([]map[int]float64, size)
	set := func(i, j int, v float64) {
		if cells[i] == nil {
			cells[i] = make(map[int]float64)
		}
		cells[i][j] = v
	}
	for _, e := range edges {
		if e.I < 0 || e.I >= size || e.J < 0 || e.J >= size {
			return nil, fmt.Errorf("%w: edge (%d, %d) outside [0, %d)", types.ErrOutOfRange, e.I, e.J, size)
		}
		if err := checkValue(e.Value); err != nil {
			return nil, err
		}
		if e.I == e.J || e.Value < similarityFloor {
			continue
		}
		set(e.I, e.J, e.Value)
		set(e.J, e.I, e.Value)
	}

	for i, row := range cells {
		m.rows[i] = sortedRow(row)
	}
	return m, nil
}

// checkValue rejects similarities outside [0, 1], NaN included.
func checkValue(v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%w: similarity %g not in [0, 1]", types.ErrConfiguration, v)
	}
	return nil
}

func sortedRow(cells map[int]float64) []types.Component {
	if len(cells) == 0 {
		return nil
	}
	row := make([]types.Component, 0, len(cells))
	for j, v := range cells {
		row = append(row, types.Component{Term: j, Value: v})
	}
	sort.Slice(row, func(a, b int) bool { return row[a].Term < row[b].Term })
	return row
}

// Size returns the vocabulary size.
func (m *Matrix) Size() int {
	return m.size
}

// Row returns the off-diagonal entries of row term. Callers must not modify it.
// Out of range terms have no entries.
func (m *Matrix) Row(term int) []types.Component {
	if term < 0 || term >= m.size {
		return nil
	}
	return m.rows[term]
}

// SimilarityOf returns the similarity between terms i and j:
// 1 on the diagonal, the stored value, or 0 when the entry is absent.
func (m *Matrix) SimilarityOf(i, j int) float64 {
	if i == j {
		return 1
	}
	row := m.Row(i)
	k := sort.Search(len(row), func(k int) bool { return row[k].Term >= j })
	if k < len(row) && row[k].Term == j {
		return row[k].Value
	}
	return 0
}

// NonzeroCount returns the number of stored off-diagonal entries, counting both halves.
func (m *Matrix) NonzeroCount() int {
	n := 0
	for _, row := range m.rows {
		n += len(row)
	}
	return n
}

// MaxRowLen returns the largest number of off-diagonal entries in any row.
func (m *Matrix) MaxRowLen() int {
	longest := 0
	for _, row := range m.rows {
		longest = max(longest, len(row))
	}
	return longest
}
