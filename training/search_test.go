package training

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/regression"
)

// trendData generates y = 2*x0 + x1 with mild noise.
func trendData(n int, seed int64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x0 := rng.Float64() * 10
		x1 := rng.Float64() * 10
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y.SetVec(i, 2*x0+x1+rng.NormFloat64()*0.05)
	}
	return X, y
}

func TestCrossValidateScoresLinearModel(t *testing.T) {
	X, y := trendData(100, 1)

	cv, err := crossValidate(func() model.Regressor { return regression.NewRidge(1.0) }, X, y, 5, 42)
	require.NoError(t, err)

	assert.Equal(t, 5, cv.Folds)
	assert.Greater(t, cv.R2Mean, 0.95)
	assert.Less(t, cv.MAEMean, 1.0)
	assert.GreaterOrEqual(t, cv.R2Std, 0.0)
}

func TestCrossValidateDeterministic(t *testing.T) {
	X, y := trendData(60, 2)
	build := func() model.Regressor { return regression.NewRidge(1.0) }

	a, err := crossValidate(build, X, y, 5, 7)
	require.NoError(t, err)
	b, err := crossValidate(build, X, y, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCrossValidateRejectsBadFolds(t *testing.T) {
	X, y := trendData(10, 3)
	_, err := crossValidate(func() model.Regressor { return regression.NewRidge(1.0) }, X, y, 1, 42)
	assert.Error(t, err)

	_, err = crossValidate(func() model.Regressor { return regression.NewRidge(1.0) }, X, y, 11, 42)
	assert.Error(t, err)
}

func TestRandomizedSearchReturnsFittedWinner(t *testing.T) {
	X, y := trendData(80, 4)

	tun := Tunable{
		Name: "random_forest",
		Grid: Grid{
			"n_estimators": {10, 20},
			"max_depth":    {3, 6},
		},
		Iterations: 4,
		Build: func(p Params) model.Regressor {
			return regression.NewRandomForestRegressor(
				regression.WithNEstimators(intParam(p, "n_estimators", 10)),
				regression.WithForestMaxDepth(intParam(p, "max_depth", 0)),
				regression.WithSeed(42),
			)
		},
	}

	sr, err := randomizedSearch(tun, X, y, 3, 42)
	require.NoError(t, err)
	require.NotNil(t, sr.Model)
	assert.True(t, sr.Model.IsFitted())
	assert.False(t, math.IsInf(sr.CVScore, -1))
	assert.Contains(t, []interface{}{10, 20}, sr.Params["n_estimators"])
	assert.Contains(t, []interface{}{3, 6}, sr.Params["max_depth"])
}

func TestRandomizedSearchEmptyGrid(t *testing.T) {
	X, y := trendData(20, 5)
	_, err := randomizedSearch(Tunable{Name: "empty", Grid: Grid{}, Iterations: 1}, X, y, 3, 42)
	assert.Error(t, err)
}

func TestFoldAssignmentsBalanced(t *testing.T) {
	assign := foldAssignments(53, 5, 42)
	require.Len(t, assign, 53)

	counts := map[int]int{}
	for _, f := range assign {
		require.GreaterOrEqual(t, f, 0)
		require.Less(t, f, 5)
		counts[f]++
	}
	for f, c := range counts {
		assert.InDelta(t, 53.0/5.0, float64(c), 1.0, "fold", f)
	}

	assert.Equal(t, assign, foldAssignments(53, 5, 42), "seeded assignment is stable")
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)
}
