// Package preprocessing implements the fitted transformers that make up the
// preprocessing artifact bundle: label encoding, median imputation, IQR
// outlier capping, and robust scaling.
//
// Every transformer follows the Fit / Transform / FitTransform pattern. Fit
// captures statistics from training data; Transform replays them without
// refitting, which is what keeps the training and serving paths identical.
package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// quantile returns the p-quantile of values using linear interpolation,
// ignoring NaNs. Returns NaN when no finite values remain.
func quantile(values []float64, p float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	return stat.Quantile(p, stat.LinInterp, clean, nil)
}

// median returns the median of values, ignoring NaNs.
func median(values []float64) float64 {
	return quantile(values, 0.5)
}
