package preprocessing

import (
	"fmt"
	"math"

	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/dataset"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// MedianImputer fills missing numeric values (NaN) with the per-column
// median captured at fit time. Serving never refits; a single record with a
// missing field receives the training-set median, the same value a training
// row would have received.
type MedianImputer struct {
	State *model.StateManager

	// Medians holds the fitted fill value for each column.
	Medians map[string]float64
}

// NewMedianImputer creates an unfitted MedianImputer.
func NewMedianImputer() *MedianImputer {
	return &MedianImputer{State: model.NewStateManager()}
}

// Fit computes medians for the named numeric columns of the frame.
func (m *MedianImputer) Fit(f *dataset.Frame, columns []string) (err error) {
	defer wsErrors.Recover(&err, "MedianImputer.Fit")
	if f.NumRows() == 0 {
		return wsErrors.NewModelError("MedianImputer.Fit", "empty frame", wsErrors.ErrEmptyData)
	}

	m.Medians = make(map[string]float64, len(columns))
	for _, name := range columns {
		vals, err := f.Numeric(name)
		if err != nil {
			return err
		}
		med := median(vals)
		if math.IsNaN(med) {
			return wsErrors.NewValueError("MedianImputer.Fit",
				fmt.Sprintf("column %q has no finite values", name))
		}
		m.Medians[name] = med
	}

	m.State.SetFitted()
	return nil
}

// Transform fills NaNs in place for every fitted column present in the
// frame. Columns the frame lacks are skipped; the pipeline's default-fill
// step handles fully absent features.
func (m *MedianImputer) Transform(f *dataset.Frame) (err error) {
	defer wsErrors.Recover(&err, "MedianImputer.Transform")
	if !m.State.IsFitted() {
		return wsErrors.NewNotFittedError("MedianImputer", "Transform")
	}

	for name, med := range m.Medians {
		if !f.Has(name) {
			continue
		}
		vals, err := f.Numeric(name)
		if err != nil {
			return err
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				vals[i] = med
			}
		}
	}
	return nil
}

// FitTransform fits on the frame and fills it in one step.
func (m *MedianImputer) FitTransform(f *dataset.Frame, columns []string) error {
	if err := m.Fit(f, columns); err != nil {
		return err
	}
	return m.Transform(f)
}
