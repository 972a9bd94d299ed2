package regression

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// KNNRegressor predicts the mean target of the K nearest training rows
// by Euclidean distance. Brute-force search; the survey datasets are
// small enough that an index would not pay for itself.
type KNNRegressor struct {
	State *model.StateManager

	K      int
	XTrain *mat.Dense
	YTrain *mat.VecDense
}

// NewKNNRegressor creates an unfitted KNN model.
func NewKNNRegressor(k int) *KNNRegressor {
	if k < 1 {
		k = 1
	}
	return &KNNRegressor{State: model.NewStateManager(), K: k}
}

func (k *KNNRegressor) Name() string   { return "knn" }
func (k *KNNRegressor) IsFitted() bool { return k.State.IsFitted() }

// Fit memorizes the training data.
func (k *KNNRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "KNNRegressor.Fit")
	n, p := X.Dims()
	if n == 0 {
		return wsErrors.NewModelError("KNNRegressor.Fit", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return wsErrors.NewDimensionError("KNNRegressor.Fit", n, y.Len(), 0)
	}
	if k.K > n {
		return wsErrors.NewValueError("KNNRegressor.Fit", "k exceeds the number of training rows")
	}

	k.XTrain = mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			k.XTrain.Set(i, j, X.At(i, j))
		}
	}
	k.YTrain = mat.NewVecDense(n, nil)
	k.YTrain.CopyVec(y)

	k.State.SetFitted()
	return nil
}

// Predict averages the targets of the K nearest neighbors per row.
func (k *KNNRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !k.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("KNNRegressor", "Predict")
	}

	n, p := X.Dims()
	trainN, trainP := k.XTrain.Dims()
	if p != trainP {
		return nil, wsErrors.NewDimensionError("KNNRegressor.Predict", trainP, p, 1)
	}

	out := mat.NewVecDense(n, nil)
	dists := make([]float64, trainN)
	order := make([]int, trainN)
	for i := 0; i < n; i++ {
		for t := 0; t < trainN; t++ {
			var d float64
			for j := 0; j < p; j++ {
				diff := X.At(i, j) - k.XTrain.At(t, j)
				d += diff * diff
			}
			dists[t] = math.Sqrt(d)
			order[t] = t
		}
		sort.Slice(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })

		var sum float64
		for t := 0; t < k.K; t++ {
			sum += k.YTrain.AtVec(order[t])
		}
		out.SetVec(i, sum/float64(k.K))
	}
	return out, nil
}
