package matrix

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/botirk38/softcosine/types"
)

// document is the serialized form of a Matrix.
type document struct {
	Size int                 `json:"size"`
	Rows [][]types.Component `json:"rows"`
}

// Save writes the matrix as JSON. Values round-trip exactly.
func (m *Matrix) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(document{Size: m.size, Rows: m.rows}); err != nil {
		return fmt.Errorf("failed to encode matrix: %w", err)
	}
	return nil
}

// Load reads a matrix written by Save and checks its invariants.
func Load(r io.Reader) (*Matrix, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode matrix: %w", err)
	}
	if doc.Size <= 0 {
		return nil, fmt.Errorf("%w: matrix size %d", types.ErrConfiguration, doc.Size)
	}
	if len(doc.Rows) > doc.Size {
		return nil, fmt.Errorf("%w: %d rows for size %d", types.ErrConfiguration, len(doc.Rows), doc.Size)
	}

	m := &Matrix{size: doc.Size, rows: make([][]types.Component, doc.Size)}
	for i, row := range doc.Rows {
		for k, c := range row {
			if c.Term < 0 || c.Term >= doc.Size || c.Term == i {
				return nil, fmt.Errorf("%w: row %d references term %d", types.ErrOutOfRange, i, c.Term)
			}
			if err := checkValue(c.Value); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			if c.Value < similarityFloor {
				return nil, fmt.Errorf("%w: row %d stores %g below the similarity floor", types.ErrConfiguration, i, c.Value)
			}
			if k > 0 && row[k-1].Term >= c.Term {
				return nil, fmt.Errorf("%w: row %d is not sorted", types.ErrConfiguration, i)
			}
		}
		if len(row) > 0 {
			m.rows[i] = row
		}
	}
	for i, row := range m.rows {
		for _, c := range row {
			if m.SimilarityOf(c.Term, i) != c.Value {
				return nil, fmt.Errorf("%w: entry (%d, %d) is not symmetric", types.ErrConfiguration, i, c.Term)
			}
		}
	}
	return m, nil
}

// SaveFile writes the matrix to path atomically (tmp file + rename).
func (m *Matrix) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := m.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile reads a matrix from path.
func LoadFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
