package similarity

import (
	"math"
	"testing"
)

// Test similarity functions with known vectors
func TestSimilarityFunctions(t *testing.T) {
	vec1 := []float32{1, 0, 0}
	vec2 := []float32{0, 1, 0}
	vec3 := []float32{1, 0, 0} // Same as vec1

	t.Run("CosineSimilarity", func(t *testing.T) {
		sim := CosineSimilarity(vec1, vec2)
		if sim != 0 {
			t.Errorf("Expected 0, got %f", sim)
		}

		sim = CosineSimilarity(vec1, vec3)
		if math.Abs(sim-1) > 0.001 {
			t.Errorf("Expected 1, got %f", sim)
		}

		sim = CosineSimilarity([]float32{}, []float32{})
		if sim != 0 {
			t.Errorf("Expected 0 for empty vectors, got %f", sim)
		}

		sim = CosineSimilarity(vec1, []float32{1, 0})
		if sim != 0 {
			t.Errorf("Expected 0 for different length vectors, got %f", sim)
		}

		sim = CosineSimilarity(vec1, []float32{0, 0, 0})
		if sim != 0 {
			t.Errorf("Expected 0 for zero vector, got %f", sim)
		}
	})

	t.Run("EuclideanSimilarity", func(t *testing.T) {
		sim := EuclideanSimilarity(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}

		sim = EuclideanSimilarity(vec1, vec2)
		if sim >= 1 {
			t.Errorf("Expected < 1, got %f", sim)
		}

		sim = EuclideanSimilarity([]float32{}, []float32{})
		if sim != 0 {
			t.Errorf("Expected 0 for empty vectors, got %f", sim)
		}
	})

	t.Run("DotProductSimilarity", func(t *testing.T) {
		sim := DotProductSimilarity(vec1, vec2)
		if sim != 0 {
			t.Errorf("Expected 0, got %f", sim)
		}

		sim = DotProductSimilarity(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}
	})

	t.Run("ManhattanSimilarity", func(t *testing.T) {
		sim := ManhattanSimilarity(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}

		sim = ManhattanSimilarity(vec1, vec2)
		if sim >= 1 {
			t.Errorf("Expected < 1, got %f", sim)
		}
	})

	t.Run("PearsonCorrelationSimilarity", func(t *testing.T) {
		a := []float32{1, 2, 3, 4, 5}
		b := []float32{2, 4, 6, 8, 10} // Perfect positive correlation

		sim := PearsonCorrelationSimilarity(a, b)
		if math.Abs(sim-1) > 0.001 {
			t.Errorf("Expected ~1 for perfect correlation, got %f", sim)
		}

		c := []float32{5, 4, 3, 2, 1}
		sim = PearsonCorrelationSimilarity(a, c)
		if math.Abs(sim+1) > 0.001 {
			t.Errorf("Expected ~-1 for negative correlation, got %f", sim)
		}
	})
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "cosine", "dot", "euclidean", "manhattan", "pearson"} {
		fn, err := ByName(name)
		if err != nil || fn == nil {
			t.Errorf("ByName(%q): expected comparator, got err %v", name, err)
		}
	}
	if _, err := ByName("jaccard"); err == nil {
		t.Error("Expected error for unknown comparator")
	}
}

func TestNormalizedClamps(t *testing.T) {
	if got := Normalized(2, 1, 1); got != 1 {
		t.Errorf("Expected clamp to 1, got %f", got)
	}
	if got := Normalized(-2, 1, 1); got != -1 {
		t.Errorf("Expected clamp to -1, got %f", got)
	}
	if got := Normalized(1, 0, 1); got != 0 {
		t.Errorf("Expected 0 for zero norm, got %f", got)
	}
	if got := Normalized(math.NaN(), 1, 1); got != 0 {
		t.Errorf("Expected 0 for NaN inner product, got %f", got)
	}
}
