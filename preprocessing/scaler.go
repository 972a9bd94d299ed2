package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// RobustScaler centers each feature on its median and scales by its
// interquartile range, making the transform tolerant of the extreme values
// survey data tends to contain.
//
// The column order of the matrix passed to Fit becomes part of the fitted
// state: Transform assumes the same order, and the pipeline guarantees it
// by reindexing against the bundle's feature list before scaling.
type RobustScaler struct {
	State *model.StateManager

	// Center is the per-column median.
	Center []float64

	// Scale is the per-column IQR. Near-zero IQRs are replaced with 1 to
	// avoid division blow-ups on constant features.
	Scale []float64

	// NFeatures is the number of columns seen at fit time.
	NFeatures int
}

// NewRobustScaler creates an unfitted RobustScaler.
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{State: model.NewStateManager()}
}

// Fit computes per-column medians and IQRs from the training matrix.
func (s *RobustScaler) Fit(X mat.Matrix) (err error) {
	defer wsErrors.Recover(&err, "RobustScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return wsErrors.NewModelError("RobustScaler.Fit", "empty data", wsErrors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Center = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			col[i] = X.At(i, j)
		}
		s.Center[j] = median(col)

		iqr := quantile(col, 0.75) - quantile(col, 0.25)
		if math.Abs(iqr) < 1e-8 {
			iqr = 1.0
		}
		s.Scale[j] = iqr
	}

	s.State.SetFitted()
	return nil
}

// Transform applies (x - center) / scale using the fitted statistics.
func (s *RobustScaler) Transform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer wsErrors.Recover(&err, "RobustScaler.Transform")
	if !s.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("RobustScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, wsErrors.NewDimensionError("RobustScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Center[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits the scaler and transforms the training data in one step.
func (s *RobustScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps scaled data back to the original units.
func (s *RobustScaler) InverseTransform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer wsErrors.Recover(&err, "RobustScaler.InverseTransform")
	if !s.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("RobustScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, wsErrors.NewDimensionError("RobustScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Center[j])
		}
	}
	return result, nil
}

// String returns a compact description of the scaler.
func (s *RobustScaler) String() string {
	if !s.State.IsFitted() {
		return "RobustScaler()"
	}
	return fmt.Sprintf("RobustScaler(n_features=%d)", s.NFeatures)
}
