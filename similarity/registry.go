package similarity

import (
	"fmt"

	"github.com/botirk38/softcosine/types"
)

// ByName returns the comparator registered under name.
// Known names: cosine, dot, euclidean, manhattan, pearson.
func ByName(name string) (SimilarityFunc, error) {
	switch name {
	case "", "cosine":
		return CosineSimilarity, nil
	case "dot":
		return DotProductSimilarity, nil
	case "euclidean":
		return EuclideanSimilarity, nil
	case "manhattan":
		return ManhattanSimilarity, nil
	case "pearson":
		return PearsonCorrelationSimilarity, nil
	default:
		return nil, fmt.Errorf("%w: unknown similarity function %q", types.ErrConfiguration, name)
	}
}
