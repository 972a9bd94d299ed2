package preprocessing

import (
	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/dataset"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// iqrFactor is deliberately wide: only extreme outliers are capped, the
// bulk of the distribution passes through untouched.
const iqrFactor = 3.0

// IQRCapper caps designated numeric columns at [Q1 - 3*IQR, Q3 + 3*IQR],
// with the quartiles captured at fit time. Values are clipped, not removed,
// so row counts stay aligned with the target.
type IQRCapper struct {
	State *model.StateManager

	Lower map[string]float64
	Upper map[string]float64
}

// NewIQRCapper creates an unfitted IQRCapper.
func NewIQRCapper() *IQRCapper {
	return &IQRCapper{State: model.NewStateManager()}
}

// Fit captures the capping bounds for the named columns. Columns absent
// from the frame are ignored so one column list can serve related schemas.
func (c *IQRCapper) Fit(f *dataset.Frame, columns []string) (err error) {
	defer wsErrors.Recover(&err, "IQRCapper.Fit")
	if f.NumRows() == 0 {
		return wsErrors.NewModelError("IQRCapper.Fit", "empty frame", wsErrors.ErrEmptyData)
	}

	c.Lower = make(map[string]float64, len(columns))
	c.Upper = make(map[string]float64, len(columns))
	for _, name := range columns {
		if !f.Has(name) {
			continue
		}
		vals, err := f.Numeric(name)
		if err != nil {
			return err
		}
		q1 := quantile(vals, 0.25)
		q3 := quantile(vals, 0.75)
		iqr := q3 - q1
		c.Lower[name] = q1 - iqrFactor*iqr
		c.Upper[name] = q3 + iqrFactor*iqr
	}

	c.State.SetFitted()
	return nil
}

// Transform clips the fitted columns in place.
func (c *IQRCapper) Transform(f *dataset.Frame) (err error) {
	defer wsErrors.Recover(&err, "IQRCapper.Transform")
	if !c.State.IsFitted() {
		return wsErrors.NewNotFittedError("IQRCapper", "Transform")
	}

	for name, lo := range c.Lower {
		if !f.Has(name) {
			continue
		}
		hi := c.Upper[name]
		vals, err := f.Numeric(name)
		if err != nil {
			return err
		}
		for i, v := range vals {
			if v < lo {
				vals[i] = lo
			} else if v > hi {
				vals[i] = hi
			}
		}
	}
	return nil
}

// FitTransform fits the bounds and clips the same frame.
func (c *IQRCapper) FitTransform(f *dataset.Frame, columns []string) error {
	if err := c.Fit(f, columns); err != nil {
		return err
	}
	return c.Transform(f)
}
