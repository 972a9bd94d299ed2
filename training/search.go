package training

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/metrics"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// CVResult summarizes a k-fold cross-validation run.
type CVResult struct {
	R2Mean, R2Std     float64
	MAEMean, MAEStd   float64
	RMSEMean, RMSEStd float64
	Folds             int
}

// crossValidate scores fresh estimators over k seeded folds.
func crossValidate(build func() model.Regressor, X mat.Matrix, y *mat.VecDense, folds int, seed int64) (*CVResult, error) {
	n, _ := X.Dims()
	if folds < 2 {
		return nil, wsErrors.NewValueError("crossValidate", "need at least two folds")
	}
	if n < folds {
		return nil, wsErrors.NewValueError("crossValidate", "fewer rows than folds")
	}

	assign := foldAssignments(n, folds, seed)
	var r2s, maes, rmses []float64

	for fold := 0; fold < folds; fold++ {
		var trainIdx, testIdx []int
		for i, f := range assign {
			if f == fold {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}

		tx, ty := subset(X, y, trainIdx)
		vx, vy := subset(X, y, testIdx)

		m := build()
		if err := m.Fit(tx, ty); err != nil {
			return nil, err
		}
		pred, err := m.Predict(vx)
		if err != nil {
			return nil, err
		}

		r2, err := metrics.R2Score(vy, pred)
		if err != nil {
			return nil, err
		}
		mae, err := metrics.MAE(vy, pred)
		if err != nil {
			return nil, err
		}
		rmse, err := metrics.RMSE(vy, pred)
		if err != nil {
			return nil, err
		}
		r2s = append(r2s, r2)
		maes = append(maes, mae)
		rmses = append(rmses, rmse)
	}

	res := &CVResult{Folds: folds}
	res.R2Mean, res.R2Std = meanStd(r2s)
	res.MAEMean, res.MAEStd = meanStd(maes)
	res.RMSEMean, res.RMSEStd = meanStd(rmses)
	return res, nil
}

// SearchResult is the winner of a randomized hyperparameter search.
type SearchResult struct {
	Params  Params
	CVScore float64
	Model   model.Regressor
}

// randomizedSearch samples iterations parameter assignments from the
// grid, scores each by k-fold CV R², and refits the best assignment on
// the full training data. Ties keep the first-seen assignment.
func randomizedSearch(t Tunable, X mat.Matrix, y *mat.VecDense, folds int, seed int64) (*SearchResult, error) {
	if len(t.Grid) == 0 {
		return nil, wsErrors.NewValueError("randomizedSearch", "empty grid")
	}

	keys := make([]string, 0, len(t.Grid))
	for k := range t.Grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(seed))
	best := &SearchResult{CVScore: math.Inf(-1)}

	for iter := 0; iter < t.Iterations; iter++ {
		p := make(Params, len(keys))
		for _, k := range keys {
			vals := t.Grid[k]
			p[k] = vals[rng.Intn(len(vals))]
		}

		cv, err := crossValidate(func() model.Regressor { return t.Build(p) }, X, y, folds, seed)
		if err != nil {
			return nil, err
		}
		if cv.R2Mean > best.CVScore {
			best.CVScore = cv.R2Mean
			best.Params = p
		}
	}

	final := t.Build(best.Params)
	if err := final.Fit(X, y); err != nil {
		return nil, err
	}
	best.Model = final
	return best, nil
}

func foldAssignments(n, folds int, seed int64) []int {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	out := make([]int, n)
	for pos, row := range perm {
		out[row] = pos % folds
	}
	return out
}

func subset(X mat.Matrix, y *mat.VecDense, idx []int) (*mat.Dense, *mat.VecDense) {
	_, p := X.Dims()
	sx := mat.NewDense(len(idx), p, nil)
	sy := mat.NewVecDense(len(idx), nil)
	for i, src := range idx {
		for j := 0; j < p; j++ {
			sx.Set(i, j, X.At(src, j))
		}
		sy.SetVec(i, y.AtVec(src))
	}
	return sx, sy
}

func meanStd(vals []float64) (mean, std float64) {
	n := float64(len(vals))
	for _, v := range vals {
		mean += v
	}
	mean /= n
	for _, v := range vals {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / n)
	return mean, std
}
