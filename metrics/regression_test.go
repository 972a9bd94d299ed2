package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMSEPerfectPrediction(t *testing.T) {
	y := mat.NewVecDense(3, []float64{1, 2, 3})
	mse, err := MSE(y, y)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mse)
}

func TestMSEKnownValue(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{3, -0.5, 2, 7})
	yPred := mat.NewVecDense(4, []float64{2.5, 0, 2, 8})

	mse, err := MSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.375, mse, 1e-12)

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.6123724356957945, rmse, 1e-12)

	mae, err := MAE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mae, 1e-12)
}

func TestR2ScoreKnownValue(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{3, -0.5, 2, 7})
	yPred := mat.NewVecDense(4, []float64{2.5, 0, 2, 8})

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.9486081370449679, r2, 1e-12)
}

func TestR2ScoreMeanPredictionIsZero(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r2, 1e-12)
}

func TestR2ScoreNoVariance(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{5, 5, 5})
	yPred := mat.NewVecDense(3, []float64{4, 5, 6})

	_, err := R2Score(yTrue, yPred)
	assert.Error(t, err)
}

func TestMAPESkipsZeros(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{0, 100, 200})
	yPred := mat.NewVecDense(3, []float64{5, 110, 180})

	mape, err := MAPE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, mape, 1e-12)
}

func TestMAPEAllZeros(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{0, 0})
	yPred := mat.NewVecDense(2, []float64{1, 1})

	_, err := MAPE(yTrue, yPred)
	assert.Error(t, err)
}

func TestExplainedVarianceIgnoresOffset(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{2, 3, 4, 5})

	evs, err := ExplainedVarianceScore(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, evs, 1e-12)

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.Less(t, r2, 1.0)
}

func TestLengthMismatch(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(2, []float64{1, 2})

	_, err := MSE(yTrue, yPred)
	assert.Error(t, err)
	_, err = MAE(yTrue, yPred)
	assert.Error(t, err)
	_, err = R2Score(yTrue, yPred)
	assert.Error(t, err)
}
