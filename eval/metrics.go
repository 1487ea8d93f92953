package eval

import "sort"

// Rank returns document positions ordered by descending score. Ties keep
// position order.
func Rank(scores []float64) []int {
	ranking := make([]int, len(scores))
	for i := range ranking {
		ranking[i] = i
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return scores[ranking[i]] > scores[ranking[j]]
	})
	return ranking
}

// AveragePrecision is the mean of precision@k over the ranks k holding a
// relevant document. It is 0 when nothing is relevant.
func AveragePrecision(ranking []int, relevant []int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	want := make(map[int]bool, len(relevant))
	for _, r := range relevant {
		want[r] = true
	}

	hits := 0
	sum := 0.0
	for k, pos := range ranking {
		if want[pos] {
			hits++
			sum += float64(hits) / float64(k+1)
		}
	}
	return sum / float64(len(want))
}

// MeanAveragePrecision averages successful results per strategy.
func MeanAveragePrecision(results []Result) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		sums[r.Strategy] += r.AveragePrecision
		counts[r.Strategy]++
	}

	out := make(map[string]float64, len(sums))
	for name, sum := range sums {
		out[name] = sum / float64(counts[name])
	}
	return out
}
