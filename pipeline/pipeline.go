// Package pipeline ties the engineering and preprocessing stages into the
// two paths that must agree exactly: FitTransform over a training frame
// and TransformRecord over a single serving record. The fitted state that
// links them is the Bundle.
package pipeline

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/features"
	"github.com/wellsync/wellsync-ai/pkg/log"
	"github.com/wellsync/wellsync-ai/preprocessing"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// Pipeline preprocesses data for one task. After FitTransform (or
// NewWithBundle) the pipeline carries a fitted Bundle and can transform
// single records.
type Pipeline struct {
	cfg    Config
	Bundle *Bundle
}

// New creates an unfitted pipeline for the given task configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// NewWithBundle rebinds a loaded bundle to its task configuration for
// serving. The bundle's task must match the configuration's.
func NewWithBundle(cfg Config, b *Bundle) (*Pipeline, error) {
	if b.Task != cfg.Task {
		return nil, wsErrors.NewValueError("NewWithBundle",
			"bundle task "+b.Task+" does not match config task "+cfg.Task)
	}
	return &Pipeline{cfg: cfg, Bundle: b}, nil
}

// Config returns the pipeline's task configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// SplitResult is the output of FitTransform: scaled train/test matrices,
// targets, and the feature-order contract.
type SplitResult struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest *mat.VecDense
	FeatureNames  []string

	// Dropped counts duplicate rows removed during cleaning.
	Dropped int
}

// FitTransform runs the full training-side preprocessing over a raw
// frame: drop the id column, remove duplicates, engineer features, impute
// numeric gaps, encode categoricals, cap outliers, fit the scaler, and
// split train/test stratified on the target. The fitted state lands in
// p.Bundle; the frame is consumed.
func (p *Pipeline) FitTransform(f *dataset.Frame) (_ *SplitResult, err error) {
	defer wsErrors.Recover(&err, "Pipeline.FitTransform")
	logger := log.GetLoggerWithName("pipeline").With().Str(log.TaskKey, p.cfg.Task).Logger()

	if f.NumRows() == 0 {
		return nil, wsErrors.NewModelError("Pipeline.FitTransform", "empty frame", wsErrors.ErrEmptyData)
	}

	if p.cfg.IDColumn != "" && f.Has(p.cfg.IDColumn) {
		f.Drop(p.cfg.IDColumn)
	}
	dropped := f.DropDuplicates()
	if dropped > 0 {
		logger.Info().Int("rows", dropped).Msg("removed duplicate rows")
	}

	if err := p.cfg.Engineer(f); err != nil {
		return nil, err
	}

	// Rows without a target value carry no training signal.
	target, err := f.Numeric(p.cfg.Target)
	if err != nil {
		return nil, err
	}
	keep := make([]int, 0, len(target))
	for i, v := range target {
		if !math.IsNaN(v) {
			keep = append(keep, i)
		}
	}
	if len(keep) < len(target) {
		logger.Warn().Int("rows", len(target)-len(keep)).Msg("dropped rows with missing target")
		f.SelectRows(keep)
	}

	target, err = f.Numeric(p.cfg.Target)
	if err != nil {
		return nil, err
	}
	y := append([]float64(nil), target...)
	f.Drop(p.cfg.Target)

	imputer := preprocessing.NewMedianImputer()
	if err := imputer.FitTransform(f, f.NumericColumns()); err != nil {
		return nil, err
	}

	encoders := make(map[string]*preprocessing.LabelEncoder, len(p.cfg.CategoricalCols))
	for _, col := range p.cfg.CategoricalCols {
		if !f.Has(col) {
			continue
		}
		vals, err := f.Categorical(col)
		if err != nil {
			return nil, err
		}
		enc := preprocessing.NewLabelEncoder()
		codes, err := enc.FitTransform(vals)
		if err != nil {
			return nil, err
		}
		f.AddNumeric(col, codes)
		encoders[col] = enc
	}

	capper := preprocessing.NewIQRCapper()
	if err := capper.FitTransform(f, p.cfg.OutlierCols); err != nil {
		return nil, err
	}

	// The column order here becomes the permanent feature contract.
	featureNames := f.Columns()
	X, err := f.Matrix(featureNames)
	if err != nil {
		return nil, err
	}

	scaler := preprocessing.NewRobustScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, err
	}

	defaults := make(map[string]float64, len(featureNames))
	for j, name := range featureNames {
		defaults[name] = scaler.Center[j]
	}

	p.Bundle = &Bundle{
		Task:         p.cfg.Task,
		Version:      BundleVersion,
		CreatedAt:    time.Now().UTC(),
		FeatureNames: featureNames,
		Encoders:     encoders,
		Imputer:      imputer,
		Capper:       capper,
		Scaler:       scaler,
		Defaults:     defaults,
		Constants:    features.Constants(),
	}

	bins := p.cfg.Stratify(y)
	trainIdx, testIdx, err := stratifiedSplit(bins, p.cfg.TestSize, p.cfg.Seed)
	if err != nil {
		return nil, err
	}

	res := &SplitResult{
		XTrain:       selectMatrixRows(scaled, trainIdx),
		XTest:        selectMatrixRows(scaled, testIdx),
		YTrain:       selectVector(y, trainIdx),
		YTest:        selectVector(y, testIdx),
		FeatureNames: featureNames,
		Dropped:      dropped,
	}
	logger.Info().
		Int("train_rows", len(trainIdx)).
		Int("test_rows", len(testIdx)).
		Int("features", len(featureNames)).
		Msg("preprocessing fitted")
	return res, nil
}

func selectMatrixRows(X *mat.Dense, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

func selectVector(y []float64, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		out.SetVec(i, y[r])
	}
	return out
}
