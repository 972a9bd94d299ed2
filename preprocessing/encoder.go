package preprocessing

import (
	"fmt"
	"sort"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// LabelEncoder maps category strings to integer codes. One encoder is
// fitted per categorical column over the categories observed in training,
// sorted lexicographically for stable code assignment.
//
// Transform of a category never seen during training falls back to code 0.
// That is a documented lossy degradation, not an error: the prediction
// proceeds, and the caller can surface the substitution as a warning.
type LabelEncoder struct {
	State *model.StateManager

	// Classes is the sorted list of categories observed at fit time.
	Classes []string

	// codeOf is rebuilt lazily after gob decoding.
	codeOf map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{State: model.NewStateManager()}
}

// Fit learns the category set from the given column values.
func (e *LabelEncoder) Fit(values []string) (err error) {
	defer wsErrors.Recover(&err, "LabelEncoder.Fit")
	if len(values) == 0 {
		return wsErrors.NewModelError("LabelEncoder.Fit", "empty data", wsErrors.ErrEmptyData)
	}

	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}

	e.Classes = make([]string, 0, len(set))
	for v := range set {
		e.Classes = append(e.Classes, v)
	}
	sort.Strings(e.Classes)

	e.buildIndex()
	e.State.SetFitted()
	return nil
}

// Transform encodes values using the fitted category set. The returned
// count reports how many values were unseen and substituted with code 0.
func (e *LabelEncoder) Transform(values []string) (codes []float64, unseen int, err error) {
	defer wsErrors.Recover(&err, "LabelEncoder.Transform")
	if !e.State.IsFitted() {
		return nil, 0, wsErrors.NewNotFittedError("LabelEncoder", "Transform")
	}
	if e.codeOf == nil {
		e.buildIndex()
	}

	codes = make([]float64, len(values))
	for i, v := range values {
		if code, ok := e.codeOf[v]; ok {
			codes[i] = float64(code)
		} else {
			codes[i] = 0
			unseen++
		}
	}
	return codes, unseen, nil
}

// FitTransform fits the encoder and encodes the same values.
func (e *LabelEncoder) FitTransform(values []string) ([]float64, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	codes, _, err := e.Transform(values)
	return codes, err
}

func (e *LabelEncoder) buildIndex() {
	e.codeOf = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.codeOf[c] = i
	}
}

// String returns a compact description of the encoder.
func (e *LabelEncoder) String() string {
	if !e.State.IsFitted() {
		return "LabelEncoder()"
	}
	return fmt.Sprintf("LabelEncoder(n_classes=%d)", len(e.Classes))
}
