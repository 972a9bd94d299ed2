package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// Ridge is linear regression with an L2 penalty, solved in closed form
// via the normal equations. It doubles as the stacking meta-learner.
type Ridge struct {
	State *model.StateManager

	Alpha     float64
	Coef      []float64
	Intercept float64
}

// NewRidge creates an unfitted Ridge model with the given penalty.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{State: model.NewStateManager(), Alpha: alpha}
}

func (r *Ridge) Name() string   { return "ridge" }
func (r *Ridge) IsFitted() bool { return r.State.IsFitted() }

// Fit solves (Xcᵀ Xc + αI) w = Xcᵀ yc on centered data; the intercept
// absorbs the means.
func (r *Ridge) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "Ridge.Fit")
	n, p := X.Dims()
	if n == 0 {
		return wsErrors.NewModelError("Ridge.Fit", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return wsErrors.NewDimensionError("Ridge.Fit", n, y.Len(), 0)
	}

	colMeans, yMean := center(X, y)
	Xc := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			Xc.Set(i, j, X.At(i, j)-colMeans[j])
		}
	}
	yc := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yc.SetVec(i, y.AtVec(i)-yMean)
	}

	var gram mat.Dense
	gram.Mul(Xc.T(), Xc)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+r.Alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(Xc.T(), yc)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &rhs); err != nil {
		return wsErrors.NewModelError("Ridge.Fit", "normal equations are singular", err)
	}

	r.Coef = make([]float64, p)
	for j := 0; j < p; j++ {
		r.Coef[j] = w.AtVec(j)
	}
	r.Intercept = yMean
	for j := 0; j < p; j++ {
		r.Intercept -= r.Coef[j] * colMeans[j]
	}

	r.State.SetFitted()
	return nil
}

// Predict computes Xw + b.
func (r *Ridge) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !r.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("Ridge", "Predict")
	}
	return linearPredict("Ridge.Predict", X, r.Coef, r.Intercept)
}

// Lasso is linear regression with an L1 penalty, fitted by coordinate
// descent. Irrelevant features get exactly zero coefficients.
type Lasso struct {
	State *model.StateManager

	Alpha     float64
	Coef      []float64
	Intercept float64

	maxIter int
	tol     float64
}

// NewLasso creates an unfitted Lasso model.
func NewLasso(alpha float64) *Lasso {
	return &Lasso{State: model.NewStateManager(), Alpha: alpha, maxIter: 1000, tol: 1e-4}
}

func (l *Lasso) Name() string   { return "lasso" }
func (l *Lasso) IsFitted() bool { return l.State.IsFitted() }

// Fit runs coordinate descent with an L1-only penalty.
func (l *Lasso) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "Lasso.Fit")
	coef, intercept, err := coordinateDescent(X, y, l.Alpha, 1.0, l.maxIter, l.tol)
	if err != nil {
		return err
	}
	l.Coef, l.Intercept = coef, intercept
	l.State.SetFitted()
	return nil
}

// Predict computes Xw + b.
func (l *Lasso) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !l.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("Lasso", "Predict")
	}
	return linearPredict("Lasso.Predict", X, l.Coef, l.Intercept)
}

// ElasticNet mixes L1 and L2 penalties: alpha scales the total penalty
// and L1Ratio sets the mix, 1 being pure lasso.
type ElasticNet struct {
	State *model.StateManager

	Alpha     float64
	L1Ratio   float64
	Coef      []float64
	Intercept float64

	maxIter int
	tol     float64
}

// NewElasticNet creates an unfitted ElasticNet model.
func NewElasticNet(alpha, l1Ratio float64) *ElasticNet {
	return &ElasticNet{
		State: model.NewStateManager(), Alpha: alpha, L1Ratio: l1Ratio,
		maxIter: 1000, tol: 1e-4,
	}
}

func (e *ElasticNet) Name() string   { return "elastic_net" }
func (e *ElasticNet) IsFitted() bool { return e.State.IsFitted() }

// Fit runs coordinate descent with the mixed penalty.
func (e *ElasticNet) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "ElasticNet.Fit")
	coef, intercept, err := coordinateDescent(X, y, e.Alpha, e.L1Ratio, e.maxIter, e.tol)
	if err != nil {
		return err
	}
	e.Coef, e.Intercept = coef, intercept
	e.State.SetFitted()
	return nil
}

// Predict computes Xw + b.
func (e *ElasticNet) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !e.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("ElasticNet", "Predict")
	}
	return linearPredict("ElasticNet.Predict", X, e.Coef, e.Intercept)
}

// coordinateDescent minimizes the elastic-net objective
// (1/2n)‖y − Xw‖² + αρ‖w‖₁ + (α(1−ρ)/2)‖w‖² on centered data, cycling
// coordinates with soft thresholding until the largest update drops
// below tol.
func coordinateDescent(X mat.Matrix, y *mat.VecDense, alpha, l1Ratio float64, maxIter int, tol float64) ([]float64, float64, error) {
	n, p := X.Dims()
	if n == 0 {
		return nil, 0, wsErrors.NewModelError("coordinateDescent", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return nil, 0, wsErrors.NewDimensionError("coordinateDescent", n, y.Len(), 0)
	}

	colMeans, yMean := center(X, y)
	Xc := make([][]float64, p)
	colSq := make([]float64, p)
	for j := 0; j < p; j++ {
		Xc[j] = make([]float64, n)
		for i := 0; i < n; i++ {
			v := X.At(i, j) - colMeans[j]
			Xc[j][i] = v
			colSq[j] += v * v
		}
	}

	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		residual[i] = y.AtVec(i) - yMean
	}

	l1 := alpha * l1Ratio * float64(n)
	l2 := alpha * (1 - l1Ratio) * float64(n)

	coef := make([]float64, p)
	for iter := 0; iter < maxIter; iter++ {
		var maxDelta float64
		for j := 0; j < p; j++ {
			if colSq[j] == 0 {
				continue
			}

			// rho is the partial residual correlation with coordinate j.
			rho := 0.0
			for i := 0; i < n; i++ {
				rho += Xc[j][i] * (residual[i] + Xc[j][i]*coef[j])
			}

			newCoef := softThreshold(rho, l1) / (colSq[j] + l2)
			delta := newCoef - coef[j]
			if delta != 0 {
				for i := 0; i < n; i++ {
					residual[i] -= Xc[j][i] * delta
				}
				coef[j] = newCoef
			}
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < tol {
			break
		}
	}

	intercept := yMean
	for j := 0; j < p; j++ {
		intercept -= coef[j] * colMeans[j]
	}
	return coef, intercept, nil
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

func center(X mat.Matrix, y *mat.VecDense) (colMeans []float64, yMean float64) {
	n, p := X.Dims()
	colMeans = make([]float64, p)
	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += X.At(i, j)
		}
		colMeans[j] = sum / float64(n)
	}
	for i := 0; i < n; i++ {
		yMean += y.AtVec(i)
	}
	yMean /= float64(n)
	return colMeans, yMean
}

func linearPredict(op string, X mat.Matrix, coef []float64, intercept float64) (*mat.VecDense, error) {
	n, p := X.Dims()
	if p != len(coef) {
		return nil, wsErrors.NewDimensionError(op, len(coef), p, 1)
	}
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := intercept
		for j := 0; j < p; j++ {
			v += coef[j] * X.At(i, j)
		}
		out.SetVec(i, v)
	}
	return out, nil
}
