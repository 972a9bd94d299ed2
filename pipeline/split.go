package pipeline

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// StratifyFunc assigns each target value to an integer bin. The
// train/test split preserves the bin proportions.
type StratifyFunc func(y []float64) []int

// QuantileBins bins targets by their empirical quantiles, q bins of
// roughly equal population. Duplicate quantile edges collapse, so skewed
// targets may yield fewer bins.
func QuantileBins(q int) StratifyFunc {
	return func(y []float64) []int {
		sorted := append([]float64(nil), y...)
		sort.Float64s(sorted)

		edges := make([]float64, 0, q-1)
		for i := 1; i < q; i++ {
			e := stat.Quantile(float64(i)/float64(q), stat.LinInterp, sorted, nil)
			if len(edges) == 0 || e > edges[len(edges)-1] {
				edges = append(edges, e)
			}
		}

		bins := make([]int, len(y))
		for i, v := range y {
			b := 0
			for _, e := range edges {
				if v > e {
					b++
				}
			}
			bins[i] = b
		}
		return bins
	}
}

// FixedBins bins targets against fixed right-inclusive edges, e.g.
// edges [0,3,6,8,11] produce bins (0,3], (3,6], (6,8], (8,11] with the
// lowest edge inclusive.
func FixedBins(edges []float64) StratifyFunc {
	return func(y []float64) []int {
		bins := make([]int, len(y))
		for i, v := range y {
			b := len(edges) - 2
			for j := 1; j < len(edges); j++ {
				if v <= edges[j] {
					b = j - 1
					break
				}
			}
			if b < 0 {
				b = 0
			}
			bins[i] = b
		}
		return bins
	}
}

// stratifiedSplit partitions row indices into train and test sets,
// preserving bin proportions. The shuffle is seeded, so the same inputs
// always produce the same split.
func stratifiedSplit(bins []int, testSize float64, seed int64) (train, test []int, err error) {
	n := len(bins)
	if n < 2 {
		return nil, nil, wsErrors.NewValueError("stratifiedSplit", "need at least two rows")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, wsErrors.NewValueError("stratifiedSplit", "testSize must be in (0, 1)")
	}

	groups := make(map[int][]int)
	for i, b := range bins {
		groups[b] = append(groups[b], i)
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	rng := rand.New(rand.NewSource(seed))
	for _, k := range keys {
		idx := groups[k]
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})

		nTest := int(math.Round(float64(len(idx)) * testSize))
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}
