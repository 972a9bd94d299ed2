// Package metrics implements the regression metrics used for model
// selection and reporting: MSE, RMSE, MAE, R², MAPE and explained
// variance. All functions operate on gonum vectors and validate length
// agreement before computing.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, wsErrors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, wsErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE returns the mean squared error between true and predicted values.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += d * d
	}
	return sum / float64(n), nil
}

// RMSE returns the root mean squared error, in the units of the target.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error between true and predicted values.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score returns the coefficient of determination. 1 is a perfect fit,
// 0 matches predicting the mean, negative is worse than the mean.
// Errors when yTrue has no variance.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var mean float64
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		tss += (yt - mean) * (yt - mean)
		d := yt - yPred.AtVec(i)
		rss += d * d
	}

	if tss == 0 {
		return 0, wsErrors.NewValueError("R2Score", "no variance in yTrue")
	}
	return 1 - rss/tss, nil
}

// MAPE returns the mean absolute percentage error. Entries where yTrue
// is zero are skipped; if every entry is zero the metric is undefined.
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		if yt == 0 {
			continue
		}
		sum += math.Abs(yt-yPred.AtVec(i)) / math.Abs(yt)
		valid++
	}

	if valid == 0 {
		return 0, wsErrors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore returns 1 - Var(yTrue-yPred)/Var(yTrue). Unlike
// R² it ignores a systematic offset in the predictions.
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var trueMean, diffMean float64
	for i := 0; i < n; i++ {
		trueMean += yTrue.AtVec(i)
		diffMean += yTrue.AtVec(i) - yPred.AtVec(i)
	}
	trueMean /= float64(n)
	diffMean /= float64(n)

	var varTrue, varDiff float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		d := yt - yPred.AtVec(i)
		varTrue += (yt - trueMean) * (yt - trueMean)
		varDiff += (d - diffMean) * (d - diffMean)
	}

	if varTrue == 0 {
		return 0, wsErrors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	return 1 - varDiff/varTrue, nil
}
