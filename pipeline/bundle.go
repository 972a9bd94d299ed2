package pipeline

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/preprocessing"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// BundleVersion is written into every persisted bundle so incompatible
// artifact layouts fail loudly at load time.
const BundleVersion = 1

// Bundle is the fitted preprocessing state for one task: everything the
// serving path needs to transform a raw record exactly the way training
// data was transformed. A bundle is written once at the end of a
// successful training run and is read-only thereafter.
type Bundle struct {
	Task      string
	Version   int
	CreatedAt time.Time

	// FeatureNames is the feature-order contract: the column order the
	// scaler was fitted with and the model was trained with.
	FeatureNames []string

	Encoders map[string]*preprocessing.LabelEncoder
	Imputer  *preprocessing.MedianImputer
	Capper   *preprocessing.IQRCapper
	Scaler   *preprocessing.RobustScaler

	// Defaults holds the training-set median of every feature, used to
	// fill features a record could not produce.
	Defaults map[string]float64

	// Constants records the fixed engineering divisors and thresholds
	// the features were derived with.
	Constants map[string]float64
}

// Save persists the bundle to a file.
func (b *Bundle) Save(filename string) error {
	return model.SaveModel(b, filename)
}

// LoadBundle reads a persisted bundle and checks its version.
func LoadBundle(filename string) (*Bundle, error) {
	var b Bundle
	if err := model.LoadModel(&b, filename); err != nil {
		return nil, err
	}
	if b.Version != BundleVersion {
		return nil, wsErrors.NewValueError("LoadBundle",
			fmt.Sprintf("bundle version %d, want %d", b.Version, BundleVersion))
	}
	return &b, nil
}

// TransformResult carries a transformed record plus any lossy
// degradations applied along the way.
type TransformResult struct {
	// X is the 1×n scaled feature row in FeatureNames order.
	X *mat.Dense

	// Warnings notes substitutions such as unseen categories or
	// default-filled features. Never fatal.
	Warnings []string
}

// TransformRecord replays the fitted preprocessing on a single raw
// record: engineer, impute, encode, default-fill, reindex to the feature
// contract, scale. Nothing is refitted; two calls with equal records
// return equal rows regardless of what was transformed in between.
func (p *Pipeline) TransformRecord(rec *dataset.Record) (_ *TransformResult, err error) {
	defer wsErrors.Recover(&err, "Pipeline.TransformRecord")
	b := p.Bundle
	if b == nil || b.Scaler == nil || !b.Scaler.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("Pipeline", "TransformRecord")
	}

	res := &TransformResult{}
	f := rec.Frame(p.cfg.NumericOrder, p.cfg.CategoricalOrder)

	// Raw fields the record lacks are filled from training defaults so
	// the engineering transform always has its inputs.
	for _, name := range p.cfg.NumericOrder {
		if f.Has(name) {
			continue
		}
		f.AddNumeric(name, []float64{b.Defaults[name]})
		res.Warnings = append(res.Warnings, fmt.Sprintf("field %q missing, used training default", name))
	}
	for _, name := range p.cfg.CategoricalOrder {
		if !f.Has(name) {
			f.AddCategorical(name, []string{""})
		}
	}

	if err := p.cfg.Engineer(f); err != nil {
		return nil, err
	}
	if err := b.Imputer.Transform(f); err != nil {
		return nil, err
	}

	for _, col := range p.cfg.CategoricalCols {
		enc, ok := b.Encoders[col]
		if !ok || !f.Has(col) {
			continue
		}
		vals, err := f.Categorical(col)
		if err != nil {
			return nil, err
		}
		codes, unseen, err := enc.Transform(vals)
		if err != nil {
			return nil, err
		}
		if unseen > 0 {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("category %q=%q not seen in training, used default encoding", col, vals[0]))
		}
		f.AddNumeric(col, codes)
	}

	if err := b.Capper.Transform(f); err != nil {
		return nil, err
	}

	// Reindex to the feature contract.
	row := mat.NewDense(1, len(b.FeatureNames), nil)
	for j, name := range b.FeatureNames {
		if f.Has(name) {
			vals, err := f.Numeric(name)
			if err != nil {
				return nil, err
			}
			row.Set(0, j, vals[0])
			continue
		}
		def, ok := b.Defaults[name]
		if !ok {
			return nil, wsErrors.NewFeatureMismatchError("Pipeline.TransformRecord", name)
		}
		row.Set(0, j, def)
		res.Warnings = append(res.Warnings, fmt.Sprintf("feature %q defaulted", name))
	}

	scaled, err := b.Scaler.Transform(row)
	if err != nil {
		return nil, err
	}
	res.X = scaled
	return res, nil
}
