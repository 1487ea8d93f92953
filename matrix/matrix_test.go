package matrix

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/botirk38/softcosine/similarity"
	"github.com/botirk38/softcosine/types"
)

// sliceVocab is a Vocabulary backed by a slice of terms.
type sliceVocab []string

func (v sliceVocab) Len() int { return len(v) }

func (v sliceVocab) ID(term string) (int, bool) {
	for i, t := range v {
		if t == term {
			return i, true
		}
	}
	return 0, false
}

func (v sliceVocab) Term(id int) (string, bool) {
	if id < 0 || id >= len(v) {
		return "", false
	}
	return v[id], true
}

type mapLookup map[string][]float32

func (m mapLookup) Lookup(term string) ([]float32, bool) {
	v, ok := m[term]
	return v, ok
}

type sliceWeights []float64

func (w sliceWeights) Weight(id int) float64 { return w[id] }

// randomSpace builds n terms with deterministic random non-negative embeddings.
func randomSpace(n, dim int) (sliceVocab, mapLookup) {
	rng := rand.New(rand.NewSource(42))
	vocab := make(sliceVocab, n)
	lookup := make(mapLookup, n)
	for i := range vocab {
		vocab[i] = "t" + strconv.Itoa(i)
		vec := make([]float32, dim)
		for d := range vec {
			vec[d] = rng.Float32()
		}
		lookup[vocab[i]] = vec
	}
	return vocab, lookup
}

func TestBuildValidation(t *testing.T) {
	ctx := context.Background()
	vocab := sliceVocab{"a", "b"}
	lookup := mapLookup{"a": {1, 0}, "b": {0, 1}}

	tests := []struct {
		name   string
		vocab  types.Vocabulary
		lookup types.EmbeddingLookup
		opts   []Option
	}{
		{"EmptyVocabulary", sliceVocab{}, lookup, nil},
		{"NilVocabulary", nil, lookup, nil},
		{"NilLookup", vocab, nil, nil},
		{"NegativeLimit", vocab, lookup, []Option{WithNonzeroLimit(-1)}},
		{"ZeroExponent", vocab, lookup, []Option{WithExponent(0)}},
		{"MinSimilarityAboveOne", vocab, lookup, []Option{WithMinSimilarity(1.5)}},
		{"NegativeWeight", vocab, lookup, []Option{WithTermWeights(sliceWeights{1, -1})}},
		{"NilTermWeights", vocab, lookup, []Option{WithTermWeights(nil)}},
		{"NilComparator", vocab, lookup, []Option{WithComparator(nil)}},
		{"MismatchedDimensions", vocab, mapLookup{"a": {1, 0}, "b": {1, 0, 0}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(ctx, tt.vocab, tt.lookup, tt.opts...)
			if !errors.Is(err, types.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
			if m != nil {
				t.Error("Expected no matrix on configuration error")
			}
		})
	}
}

func TestBuildInvariants(t *testing.T) {
	vocab, lookup := randomSpace(60, 8)
	const limit = 5

	m, err := Build(context.Background(), vocab, lookup, WithNonzeroLimit(limit), WithExponent(1))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	t.Run("RowCap", func(t *testing.T) {
		for i := 0; i < m.Size(); i++ {
			if n := len(m.Row(i)); n > limit {
				t.Errorf("Row %d has %d entries, limit %d", i, n, limit)
			}
		}
		if m.MaxRowLen() > limit {
			t.Errorf("MaxRowLen %d exceeds %d", m.MaxRowLen(), limit)
		}
	})

	t.Run("Symmetry", func(t *testing.T) {
		for i := 0; i < m.Size(); i++ {
			for _, c := range m.Row(i) {
				if m.SimilarityOf(i, c.Term) != m.SimilarityOf(c.Term, i) {
					t.Errorf("Entry (%d, %d) is not symmetric", i, c.Term)
				}
			}
		}
	})

	t.Run("Identity", func(t *testing.T) {
		for i := 0; i < m.Size(); i++ {
			if m.SimilarityOf(i, i) != 1 {
				t.Errorf("SimilarityOf(%d, %d) = %f, expected 1", i, i, m.SimilarityOf(i, i))
			}
		}
	})

	t.Run("ValuesInUnitInterval", func(t *testing.T) {
		for i := 0; i < m.Size(); i++ {
			for _, c := range m.Row(i) {
				if c.Value <= 0 || c.Value > 1 {
					t.Errorf("Entry (%d, %d) = %f outside (0, 1]", i, c.Term, c.Value)
				}
			}
		}
	})

	t.Run("ValuesAreEmbeddingSimilarities", func(t *testing.T) {
		for _, c := range m.Row(0) {
			want := similarity.CosineSimilarity(lookup[vocab[0]], lookup[vocab[c.Term]])
			if math.Abs(c.Value-want) > 1e-12 {
				t.Errorf("Entry (0, %d) = %f, expected %f", c.Term, c.Value, want)
			}
		}
	})
}

func TestBuildKeepsNearestNeighbor(t *testing.T) {
	vocab := sliceVocab{"king", "queen", "apple"}
	lookup := mapLookup{
		"king":  {1, 0.1},
		"queen": {1, 0.2},
		"apple": {0.1, 1},
	}

	m, err := Build(context.Background(), vocab, lookup, WithNonzeroLimit(1))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.SimilarityOf(0, 1) == 0 {
		t.Error("Expected king and queen to be neighbors")
	}
	if m.SimilarityOf(0, 2) != 0 {
		t.Error("Expected king and apple not to be neighbors with limit 1")
	}

	want := math.Pow(similarity.CosineSimilarity(lookup["king"], lookup["queen"]), DefaultExponent)
	if math.Abs(m.SimilarityOf(0, 1)-want) > 1e-12 {
		t.Errorf("Expected squared cosine %f, got %f", want, m.SimilarityOf(0, 1))
	}
}

func TestBuildTermsWithoutEmbeddings(t *testing.T) {
	vocab := sliceVocab{"a", "b", "unknown"}
	lookup := mapLookup{"a": {1, 0}, "b": {1, 0.1}}

	m, err := Build(context.Background(), vocab, lookup)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(m.Row(2)) != 0 {
		t.Errorf("Expected identity-only row for unknown term, got %v", m.Row(2))
	}
	if m.SimilarityOf(2, 2) != 1 {
		t.Error("Expected unknown term to keep its diagonal")
	}
	if m.SimilarityOf(0, 1) == 0 {
		t.Error("Expected embedded terms to be related")
	}
}

func TestBuildZeroLimitIsIdentity(t *testing.T) {
	vocab, lookup := randomSpace(10, 4)
	m, err := Build(context.Background(), vocab, lookup, WithNonzeroLimit(0))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.NonzeroCount() != 0 {
		t.Errorf("Expected no off-diagonal entries, got %d", m.NonzeroCount())
	}
}

func TestBuildMinSimilarity(t *testing.T) {
	vocab, lookup := randomSpace(30, 6)
	m, err := Build(context.Background(), vocab, lookup, WithMinSimilarity(0.7), WithNonzeroLimit(50))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := 0; i < m.Size(); i++ {
		for _, c := range m.Row(i) {
			if c.Value < 0.7 {
				t.Errorf("Entry (%d, %d) = %f below min similarity", i, c.Term, c.Value)
			}
		}
	}
}

func TestBuildTermWeightsPreferImportantPairs(t *testing.T) {
	// "b" and "c" are equally similar to "a"; "c" is the rarer term.
	vocab := sliceVocab{"a", "b", "c"}
	lookup := mapLookup{
		"a": {1, 0, 0},
		"b": {1, 1, 0},
		"c": {1, 0, 1},
	}

	plain, err := Build(context.Background(), vocab, lookup, WithNonzeroLimit(1))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if plain.SimilarityOf(0, 1) == 0 {
		t.Error("Expected tie broken by term id without weights")
	}

	weighted, err := Build(context.Background(), vocab, lookup,
		WithNonzeroLimit(1), WithTermWeights(sliceWeights{1, 0.5, 3}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if weighted.SimilarityOf(0, 2) == 0 {
		t.Error("Expected the heavier term to be retained")
	}
	if weighted.SimilarityOf(0, 1) != 0 {
		t.Error("Expected the lighter term to be truncated")
	}
}

func TestBuildDiagonalDominance(t *testing.T) {
	vocab, lookup := randomSpace(40, 3)
	m, err := Build(context.Background(), vocab, lookup, WithNonzeroLimit(20), WithDiagonalDominance())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := 0; i < m.Size(); i++ {
		var sum float64
		for _, c := range m.Row(i) {
			sum += c.Value
		}
		if sum >= 1 {
			t.Errorf("Row %d off-diagonal sum %f is not below 1", i, sum)
		}
	}
}

func TestBuildProgressAndCancellation(t *testing.T) {
	vocab, lookup := randomSpace(12, 4)

	t.Run("Progress", func(t *testing.T) {
		calls := 0
		last := 0
		_, err := Build(context.Background(), vocab, lookup, WithProgress(func(done, total int) {
			calls++
			last = done
			if total != 12 {
				t.Errorf("Expected total 12, got %d", total)
			}
		}))
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if calls != 12 || last != 12 {
			t.Errorf("Expected 12 progress calls ending at 12, got %d ending at %d", calls, last)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m, err := Build(ctx, vocab, lookup)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if m != nil {
			t.Error("Expected no partial matrix")
		}
	})
}

func TestFromEntries(t *testing.T) {
	m, err := FromEntries(4, []Edge{{I: 0, J: 1, Value: 0.8}, {I: 2, J: 3, Value: 0.5}, {I: 1, J: 1, Value: 0.3}})
	if err != nil {
		t.Fatalf("FromEntries failed: %v", err)
	}
	if m.SimilarityOf(1, 0) != 0.8 || m.SimilarityOf(3, 2) != 0.5 {
		t.Error("Expected edges stored in both rows")
	}
	if m.SimilarityOf(1, 1) != 1 {
		t.Error("Expected diagonal edge to be ignored")
	}
	if m.SimilarityOf(0, 3) != 0 {
		t.Error("Expected absent entry to be 0")
	}

	if _, err := FromEntries(2, []Edge{{I: 0, J: 5, Value: 0.5}}); !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	if _, err := FromEntries(2, []Edge{{I: 0, J: 1, Value: 2}}); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
	if _, err := FromEntries(2, []Edge{{I: 0, J: 1, Value: math.NaN()}}); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for NaN similarity, got %v", err)
	}
	if _, err := Identity(0); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for empty identity, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	vocab, lookup := randomSpace(25, 5)
	m, err := Build(context.Background(), vocab, lookup, WithNonzeroLimit(4))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	t.Run("Stream", func(t *testing.T) {
		var buf bytes.Buffer
		if err := m.Save(&buf); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		loaded, err := Load(&buf)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		assertSameMatrix(t, m, loaded)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "matrix.json")
		if err := m.SaveFile(path); err != nil {
			t.Fatalf("SaveFile failed: %v", err)
		}
		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		assertSameMatrix(t, m, loaded)
	})

	t.Run("RejectsBadValues", func(t *testing.T) {
		for _, raw := range []string{
			`{"size":2,"rows":[[{"t":1,"v":-0.5}],[{"t":0,"v":-0.5}]]}`,
			`{"size":2,"rows":[[{"t":1,"v":1.5}],[{"t":0,"v":1.5}]]}`,
			`{"size":2,"rows":[[{"t":1,"v":1e-12}],[{"t":0,"v":1e-12}]]}`,
		} {
			if _, err := Load(bytes.NewBufferString(raw)); !errors.Is(err, types.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration for %s, got %v", raw, err)
			}
		}
	})

	t.Run("RejectsAsymmetric", func(t *testing.T) {
		raw := `{"size":2,"rows":[[{"t":1,"v":0.5}],[]]}`
		if _, err := Load(bytes.NewBufferString(raw)); !errors.Is(err, types.ErrConfiguration) {
			t.Errorf("Expected ErrConfiguration, got %v", err)
		}
	})
}

func assertSameMatrix(t *testing.T, want, got *Matrix) {
	t.Helper()
	if want.Size() != got.Size() {
		t.Fatalf("Expected size %d, got %d", want.Size(), got.Size())
	}
	for i := 0; i < want.Size(); i++ {
		for j := 0; j < want.Size(); j++ {
			if want.SimilarityOf(i, j) != got.SimilarityOf(i, j) {
				t.Errorf("Entry (%d, %d): expected %v, got %v", i, j, want.SimilarityOf(i, j), got.SimilarityOf(i, j))
			}
		}
	}
}
