package regression

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// ForestOption configures the tree-ensemble regressors.
type ForestOption func(*forestParams)

type forestParams struct {
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     string
	seed            int64
}

func defaultForestParams() forestParams {
	return forestParams{
		nEstimators:     100,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     "sqrt",
		seed:            42,
	}
}

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) ForestOption {
	return func(p *forestParams) { p.nEstimators = n }
}

// WithForestMaxDepth limits per-tree depth; 0 means unlimited.
func WithForestMaxDepth(d int) ForestOption {
	return func(p *forestParams) { p.maxDepth = d }
}

// WithForestMinSamplesSplit sets the per-tree split threshold.
func WithForestMinSamplesSplit(n int) ForestOption {
	return func(p *forestParams) { p.minSamplesSplit = n }
}

// WithForestMinSamplesLeaf sets the per-tree leaf threshold.
func WithForestMinSamplesLeaf(n int) ForestOption {
	return func(p *forestParams) { p.minSamplesLeaf = n }
}

// WithForestMaxFeatures restricts per-split feature candidates.
func WithForestMaxFeatures(mode string) ForestOption {
	return func(p *forestParams) { p.maxFeatures = mode }
}

// WithSeed seeds bootstrap sampling and per-tree randomness.
func WithSeed(seed int64) ForestOption {
	return func(p *forestParams) { p.seed = seed }
}

// RandomForestRegressor averages trees fitted on bootstrap samples with
// per-split feature subsampling.
type RandomForestRegressor struct {
	State *model.StateManager

	Trees       []*DecisionTreeRegressor
	NFeatures   int
	Importances []float64

	params forestParams
}

// NewRandomForestRegressor creates an unfitted forest.
func NewRandomForestRegressor(opts ...ForestOption) *RandomForestRegressor {
	p := defaultForestParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &RandomForestRegressor{State: model.NewStateManager(), params: p}
}

func (f *RandomForestRegressor) Name() string   { return "random_forest" }
func (f *RandomForestRegressor) IsFitted() bool { return f.State.IsFitted() }

// FeatureImportances returns importances averaged over the trees.
func (f *RandomForestRegressor) FeatureImportances() []float64 {
	if f.Importances == nil {
		return nil
	}
	out := make([]float64, len(f.Importances))
	copy(out, f.Importances)
	return out
}

// Fit trains nEstimators trees on seeded bootstrap samples.
func (f *RandomForestRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "RandomForestRegressor.Fit")
	n, p := X.Dims()
	if n == 0 {
		return wsErrors.NewModelError("RandomForestRegressor.Fit", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return wsErrors.NewDimensionError("RandomForestRegressor.Fit", n, y.Len(), 0)
	}

	f.NFeatures = p
	f.Trees = make([]*DecisionTreeRegressor, 0, f.params.nEstimators)
	f.Importances = make([]float64, p)

	rng := rand.New(rand.NewSource(f.params.seed))
	for t := 0; t < f.params.nEstimators; t++ {
		bx, by := bootstrap(X, y, rng)
		tree := NewDecisionTreeRegressor(
			WithMaxDepth(f.params.maxDepth),
			WithMinSamplesSplit(f.params.minSamplesSplit),
			WithMinSamplesLeaf(f.params.minSamplesLeaf),
			WithMaxFeatures(f.params.maxFeatures),
			WithTreeSeed(f.params.seed+int64(t)+1),
		)
		if err := tree.Fit(bx, by); err != nil {
			return err
		}
		f.Trees = append(f.Trees, tree)
		for j, imp := range tree.FeatureImportances() {
			f.Importances[j] += imp
		}
	}

	for j := range f.Importances {
		f.Importances[j] /= float64(len(f.Trees))
	}
	f.State.SetFitted()
	return nil
}

// Predict averages the trees' predictions.
func (f *RandomForestRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !f.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	return averageTrees(f.Trees, X, 1.0)
}

// ExtraTreesRegressor averages trees grown on the full sample with
// random split thresholds, trading per-tree quality for lower variance.
type ExtraTreesRegressor struct {
	State *model.StateManager

	Trees       []*DecisionTreeRegressor
	NFeatures   int
	Importances []float64

	params forestParams
}

// NewExtraTreesRegressor creates an unfitted extra-trees ensemble.
func NewExtraTreesRegressor(opts ...ForestOption) *ExtraTreesRegressor {
	p := defaultForestParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &ExtraTreesRegressor{State: model.NewStateManager(), params: p}
}

func (e *ExtraTreesRegressor) Name() string   { return "extra_trees" }
func (e *ExtraTreesRegressor) IsFitted() bool { return e.State.IsFitted() }

// FeatureImportances returns importances averaged over the trees.
func (e *ExtraTreesRegressor) FeatureImportances() []float64 {
	if e.Importances == nil {
		return nil
	}
	out := make([]float64, len(e.Importances))
	copy(out, e.Importances)
	return out
}

// Fit trains nEstimators randomized trees without bootstrapping.
func (e *ExtraTreesRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "ExtraTreesRegressor.Fit")
	n, p := X.Dims()
	if n == 0 {
		return wsErrors.NewModelError("ExtraTreesRegressor.Fit", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return wsErrors.NewDimensionError("ExtraTreesRegressor.Fit", n, y.Len(), 0)
	}

	e.NFeatures = p
	e.Trees = make([]*DecisionTreeRegressor, 0, e.params.nEstimators)
	e.Importances = make([]float64, p)

	for t := 0; t < e.params.nEstimators; t++ {
		tree := NewDecisionTreeRegressor(
			WithMaxDepth(e.params.maxDepth),
			WithMinSamplesSplit(e.params.minSamplesSplit),
			WithMinSamplesLeaf(e.params.minSamplesLeaf),
			WithMaxFeatures(e.params.maxFeatures),
			WithRandomSplits(),
			WithTreeSeed(e.params.seed+int64(t)+1),
		)
		if err := tree.Fit(X, y); err != nil {
			return err
		}
		e.Trees = append(e.Trees, tree)
		for j, imp := range tree.FeatureImportances() {
			e.Importances[j] += imp
		}
	}

	for j := range e.Importances {
		e.Importances[j] /= float64(len(e.Trees))
	}
	e.State.SetFitted()
	return nil
}

// Predict averages the trees' predictions.
func (e *ExtraTreesRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !e.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("ExtraTreesRegressor", "Predict")
	}
	return averageTrees(e.Trees, X, 1.0)
}

func bootstrap(X mat.Matrix, y *mat.VecDense, rng *rand.Rand) (*mat.Dense, *mat.VecDense) {
	n, p := X.Dims()
	bx := mat.NewDense(n, p, nil)
	by := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		src := rng.Intn(n)
		for j := 0; j < p; j++ {
			bx.Set(i, j, X.At(src, j))
		}
		by.SetVec(i, y.AtVec(src))
	}
	return bx, by
}

func averageTrees(trees []*DecisionTreeRegressor, X mat.Matrix, scale float64) (*mat.VecDense, error) {
	n, _ := X.Dims()
	out := mat.NewVecDense(n, nil)
	for _, tree := range trees {
		pred, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		out.AddVec(out, pred)
	}
	out.ScaleVec(scale/float64(len(trees)), out)
	return out, nil
}
