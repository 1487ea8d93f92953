package similarity

import "math"

// PearsonCorrelationSimilarity computes the Pearson correlation coefficient.
// Returns a value between -1 and 1, where 1 means perfect positive correlation.
func PearsonCorrelationSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	n := float64(len(a))

	var meanA, meanB float64
	for i := range a {
		meanA += float64(a[i])
		meanB += float64(b[i])
	}
	meanA /= n
	meanB /= n

	var numerator, sumSqA, sumSqB float64
	for i := range a {
		diffA := float64(a[i]) - meanA
		diffB := float64(b[i]) - meanB
		numerator += diffA * diffB
		sumSqA += diffA * diffA
		sumSqB += diffB * diffB
	}

	denominator := math.Sqrt(sumSqA * sumSqB)
	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}
