package preprocessing

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/dataset"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

func TestLabelEncoderFitTransform(t *testing.T) {
	enc := NewLabelEncoder()
	codes, err := enc.FitTransform([]string{"Remote", "Hybrid", "Office", "Hybrid"})
	require.NoError(t, err)

	// Classes are sorted: Hybrid=0, Office=1, Remote=2.
	assert.Equal(t, []float64{2, 0, 1, 0}, codes)
	assert.Equal(t, []string{"Hybrid", "Office", "Remote"}, enc.Classes)
}

func TestLabelEncoderUnseenCategoryFallsBackToZero(t *testing.T) {
	enc := NewLabelEncoder()
	require.NoError(t, enc.Fit([]string{"Male", "Female"}))

	codes, unseen, err := enc.Transform([]string{"Other"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, codes)
	assert.Equal(t, 1, unseen)
}

func TestLabelEncoderNotFitted(t *testing.T) {
	enc := NewLabelEncoder()
	_, _, err := enc.Transform([]string{"x"})

	var notFitted *wsErrors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestLabelEncoderSurvivesGobRoundTrip(t *testing.T) {
	enc := NewLabelEncoder()
	require.NoError(t, enc.Fit([]string{"Remote", "Hybrid", "Office"}))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(enc))

	loaded := NewLabelEncoder()
	require.NoError(t, gob.NewDecoder(&buf).Decode(loaded))

	codes, unseen, err := loaded.Transform([]string{"Remote", "Mars"})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0}, codes)
	assert.Equal(t, 1, unseen)
}

func TestMedianImputerFillsNaN(t *testing.T) {
	f := dataset.NewFrame()
	f.AddNumeric("sleep_hours", []float64{6, 7, math.NaN(), 8})

	imp := NewMedianImputer()
	require.NoError(t, imp.FitTransform(f, []string{"sleep_hours"}))

	vals, err := f.Numeric("sleep_hours")
	require.NoError(t, err)
	assert.Equal(t, 7.0, vals[2])
}

func TestMedianImputerReplaysFittedMedianOnNewFrame(t *testing.T) {
	train := dataset.NewFrame()
	train.AddNumeric("x", []float64{1, 2, 3, 4, 100})

	imp := NewMedianImputer()
	require.NoError(t, imp.Fit(train, []string{"x"}))

	serve := dataset.NewFrame()
	serve.AddNumeric("x", []float64{math.NaN()})
	require.NoError(t, imp.Transform(serve))

	vals, _ := serve.Numeric("x")
	assert.Equal(t, 3.0, vals[0])
}

func TestIQRCapperCapsOnlyExtremes(t *testing.T) {
	f := dataset.NewFrame()
	f.AddNumeric("screen_time_hours", []float64{4, 5, 6, 7, 8, 9, 10, 500})

	capper := NewIQRCapper()
	require.NoError(t, capper.FitTransform(f, []string{"screen_time_hours"}))

	vals, _ := f.Numeric("screen_time_hours")
	assert.Less(t, vals[7], 500.0, "extreme outlier should be capped")
	assert.Equal(t, 4.0, vals[0], "ordinary values pass through")
}

func TestRobustScalerCentersOnMedian(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})

	scaler := NewRobustScaler()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	// Median 3 maps to zero; IQR is 2.
	assert.InDelta(t, 0.0, scaled.At(2, 0), 1e-12)
	assert.InDelta(t, 3.0, scaler.Center[0], 1e-12)
	assert.InDelta(t, 2.0, scaler.Scale[0], 1e-12)
}

func TestRobustScalerConstantColumn(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{7, 7, 7, 7})

	scaler := NewRobustScaler()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	// Constant features scale by 1 instead of dividing by zero.
	assert.Equal(t, 0.0, scaled.At(0, 0))
}

func TestRobustScalerDimensionMismatch(t *testing.T) {
	scaler := NewRobustScaler()
	require.NoError(t, scaler.Fit(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})))

	_, err := scaler.Transform(mat.NewDense(1, 3, []float64{1, 2, 3}))

	var dimErr *wsErrors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestRobustScalerInverseRoundTrip(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40})

	scaler := NewRobustScaler()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	restored, err := scaler.InverseTransform(scaled)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, X.At(i, j), restored.At(i, j), 1e-9)
		}
	}
}

func TestTransformDeterminism(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{1, 4, 2, 5, 3, 6, 4, 7, 5, 8, 6, 9})
	scaler := NewRobustScaler()
	require.NoError(t, scaler.Fit(X))

	probe := mat.NewDense(1, 2, []float64{3.5, 6.5})
	a, err := scaler.Transform(probe)
	require.NoError(t, err)
	b, err := scaler.Transform(probe)
	require.NoError(t, err)

	assert.Equal(t, a.RawMatrix().Data, b.RawMatrix().Data)
}
