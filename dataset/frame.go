// Package dataset provides the tabular containers the pipelines operate on:
// a Record for one raw observation and a Frame of ordered, named columns for
// batches. Column order is first-class because the fitted scaler's feature
// order is a correctness contract downstream.
package dataset

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// ColumnKind distinguishes numeric from categorical columns.
type ColumnKind int

const (
	Numeric ColumnKind = iota
	Categorical
)

// Column holds one named column. Numeric columns use NaN to mark missing
// values; categorical columns hold raw category strings until encoding.
type Column struct {
	Name    string
	Kind    ColumnKind
	Floats  []float64
	Strings []string
}

func (c *Column) len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Frame is an ordered collection of equally sized columns.
type Frame struct {
	order []string
	cols  map[string]*Column
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{cols: make(map[string]*Column)}
}

// NumRows returns the number of rows, zero for an empty frame.
func (f *Frame) NumRows() int {
	if len(f.order) == 0 {
		return 0
	}
	return f.cols[f.order[0]].len()
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// AddNumeric appends a numeric column. Replaces any existing column of the
// same name in place, preserving its position in the order.
func (f *Frame) AddNumeric(name string, values []float64) {
	if _, exists := f.cols[name]; !exists {
		f.order = append(f.order, name)
	}
	f.cols[name] = &Column{Name: name, Kind: Numeric, Floats: values}
}

// AddCategorical appends a categorical column, replacing in place like
// AddNumeric.
func (f *Frame) AddCategorical(name string, values []string) {
	if _, exists := f.cols[name]; !exists {
		f.order = append(f.order, name)
	}
	f.cols[name] = &Column{Name: name, Kind: Categorical, Strings: values}
}

// Numeric returns the values of a numeric column.
func (f *Frame) Numeric(name string) ([]float64, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, wsErrors.NewValueError("Frame.Numeric", fmt.Sprintf("no such column %q", name))
	}
	if col.Kind != Numeric {
		return nil, wsErrors.NewValueError("Frame.Numeric", fmt.Sprintf("column %q is categorical", name))
	}
	return col.Floats, nil
}

// Categorical returns the values of a categorical column.
func (f *Frame) Categorical(name string) ([]string, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, wsErrors.NewValueError("Frame.Categorical", fmt.Sprintf("no such column %q", name))
	}
	if col.Kind != Categorical {
		return nil, wsErrors.NewValueError("Frame.Categorical", fmt.Sprintf("column %q is numeric", name))
	}
	return col.Strings, nil
}

// Drop removes a column if present.
func (f *Frame) Drop(name string) {
	if _, ok := f.cols[name]; !ok {
		return
	}
	delete(f.cols, name)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// DropDuplicates removes rows that are exact duplicates of an earlier row
// across every column. Returns the number of rows removed.
func (f *Frame) DropDuplicates() int {
	n := f.NumRows()
	if n == 0 {
		return 0
	}

	seen := make(map[string]bool, n)
	keep := make([]int, 0, n)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.Reset()
		for _, name := range f.order {
			col := f.cols[name]
			if col.Kind == Numeric {
				fmt.Fprintf(&sb, "%v|", col.Floats[i])
			} else {
				sb.WriteString(col.Strings[i])
				sb.WriteByte('|')
			}
		}
		key := sb.String()
		if !seen[key] {
			seen[key] = true
			keep = append(keep, i)
		}
	}

	if len(keep) == n {
		return 0
	}
	f.selectRows(keep)
	return n - len(keep)
}

// SelectRows keeps only the given row indices, in the given order.
func (f *Frame) SelectRows(indices []int) {
	f.selectRows(indices)
}

func (f *Frame) selectRows(indices []int) {
	for _, col := range f.cols {
		if col.Kind == Numeric {
			vals := make([]float64, len(indices))
			for j, idx := range indices {
				vals[j] = col.Floats[idx]
			}
			col.Floats = vals
		} else {
			vals := make([]string, len(indices))
			for j, idx := range indices {
				vals[j] = col.Strings[idx]
			}
			col.Strings = vals
		}
	}
}

// Matrix exports the named columns, in the given order, as a dense matrix.
// Every requested column must exist and be numeric; a missing column is a
// FeatureMismatchError because it means the caller's feature list and the
// frame have diverged.
func (f *Frame) Matrix(names []string) (*mat.Dense, error) {
	n := f.NumRows()
	if n == 0 || len(names) == 0 {
		return nil, wsErrors.NewModelError("Frame.Matrix", "empty frame", wsErrors.ErrEmptyData)
	}

	m := mat.NewDense(n, len(names), nil)
	for j, name := range names {
		col, ok := f.cols[name]
		if !ok {
			return nil, wsErrors.NewFeatureMismatchError("Frame.Matrix", name)
		}
		if col.Kind != Numeric {
			return nil, wsErrors.NewValueError("Frame.Matrix", fmt.Sprintf("column %q is not numeric", name))
		}
		for i := 0; i < n; i++ {
			m.Set(i, j, col.Floats[i])
		}
	}
	return m, nil
}

// NumericColumns returns the names of all numeric columns, in frame order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, name := range f.order {
		if f.cols[name].Kind == Numeric {
			out = append(out, name)
		}
	}
	return out
}

// HasMissing reports whether any numeric column contains NaN.
func (f *Frame) HasMissing() bool {
	for _, name := range f.order {
		col := f.cols[name]
		if col.Kind != Numeric {
			continue
		}
		for _, v := range col.Floats {
			if math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}
