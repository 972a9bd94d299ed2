package regression

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// GradientBoostingRegressor fits shallow trees to the residuals of the
// running prediction, shrunk by the learning rate. Squared-error loss.
type GradientBoostingRegressor struct {
	State *model.StateManager

	Init         float64
	LearningRate float64
	Trees        []*DecisionTreeRegressor
	NFeatures    int
	Importances  []float64

	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	subsample       float64
	seed            int64
}

// GBOption configures a GradientBoostingRegressor.
type GBOption func(*GradientBoostingRegressor)

// WithGBNEstimators sets the number of boosting stages.
func WithGBNEstimators(n int) GBOption {
	return func(g *GradientBoostingRegressor) { g.nEstimators = n }
}

// WithLearningRate sets the shrinkage applied to each stage.
func WithLearningRate(lr float64) GBOption {
	return func(g *GradientBoostingRegressor) { g.LearningRate = lr }
}

// WithGBMaxDepth limits the depth of each stage tree.
func WithGBMaxDepth(d int) GBOption {
	return func(g *GradientBoostingRegressor) { g.maxDepth = d }
}

// WithGBMinSamplesSplit sets the per-tree split threshold.
func WithGBMinSamplesSplit(n int) GBOption {
	return func(g *GradientBoostingRegressor) { g.minSamplesSplit = n }
}

// WithSubsample fits each stage on a random fraction of the rows.
func WithSubsample(frac float64) GBOption {
	return func(g *GradientBoostingRegressor) { g.subsample = frac }
}

// WithGBSeed seeds subsampling.
func WithGBSeed(seed int64) GBOption {
	return func(g *GradientBoostingRegressor) { g.seed = seed }
}

// NewGradientBoostingRegressor creates an unfitted booster.
func NewGradientBoostingRegressor(opts ...GBOption) *GradientBoostingRegressor {
	g := &GradientBoostingRegressor{
		State:           model.NewStateManager(),
		LearningRate:    0.1,
		nEstimators:     100,
		maxDepth:        3,
		minSamplesSplit: 2,
		subsample:       1.0,
		seed:            42,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GradientBoostingRegressor) Name() string   { return "gradient_boosting" }
func (g *GradientBoostingRegressor) IsFitted() bool { return g.State.IsFitted() }

// FeatureImportances returns importances averaged over the stages.
func (g *GradientBoostingRegressor) FeatureImportances() []float64 {
	if g.Importances == nil {
		return nil
	}
	out := make([]float64, len(g.Importances))
	copy(out, g.Importances)
	return out
}

// Fit boosts on residuals starting from the target mean.
func (g *GradientBoostingRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "GradientBoostingRegressor.Fit")
	n, p := X.Dims()
	if n == 0 {
		return wsErrors.NewModelError("GradientBoostingRegressor.Fit", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return wsErrors.NewDimensionError("GradientBoostingRegressor.Fit", n, y.Len(), 0)
	}

	g.NFeatures = p
	g.Importances = make([]float64, p)
	g.Trees = make([]*DecisionTreeRegressor, 0, g.nEstimators)

	var sum float64
	for i := 0; i < n; i++ {
		sum += y.AtVec(i)
	}
	g.Init = sum / float64(n)

	current := make([]float64, n)
	for i := range current {
		current[i] = g.Init
	}

	rng := rand.New(rand.NewSource(g.seed))
	residual := mat.NewVecDense(n, nil)
	for stage := 0; stage < g.nEstimators; stage++ {
		for i := 0; i < n; i++ {
			residual.SetVec(i, y.AtVec(i)-current[i])
		}

		fitX := mat.Matrix(X)
		fitY := residual
		if g.subsample < 1.0 {
			idx := sampleWithoutReplacement(n, int(g.subsample*float64(n)), rng)
			fitX, fitY = subset(X, residual, idx)
		}

		tree := NewDecisionTreeRegressor(
			WithMaxDepth(g.maxDepth),
			WithMinSamplesSplit(g.minSamplesSplit),
			WithTreeSeed(g.seed+int64(stage)+1),
		)
		if err := tree.Fit(fitX, fitY); err != nil {
			return err
		}
		g.Trees = append(g.Trees, tree)

		update, err := tree.Predict(X)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			current[i] += g.LearningRate * update.AtVec(i)
		}
		for j, imp := range tree.FeatureImportances() {
			g.Importances[j] += imp
		}
	}

	for j := range g.Importances {
		g.Importances[j] /= float64(len(g.Trees))
	}
	g.State.SetFitted()
	return nil
}

// Predict sums the shrunken stage predictions over the initial mean.
func (g *GradientBoostingRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !g.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("GradientBoostingRegressor", "Predict")
	}

	n, _ := X.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, g.Init)
	}
	for _, tree := range g.Trees {
		pred, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		out.AddScaledVec(out, g.LearningRate, pred)
	}
	return out, nil
}

// AdaBoostRegressor implements AdaBoost.R2 with linear loss: each round
// reweights rows by their relative error and the final prediction is the
// weighted median of the rounds.
type AdaBoostRegressor struct {
	State *model.StateManager

	Trees      []*DecisionTreeRegressor
	LogBetas   []float64
	NFeatures  int

	nEstimators int
	maxDepth    int
	seed        int64
}

// AdaBoostOption configures an AdaBoostRegressor.
type AdaBoostOption func(*AdaBoostRegressor)

// WithAdaNEstimators sets the maximum number of boosting rounds.
func WithAdaNEstimators(n int) AdaBoostOption {
	return func(a *AdaBoostRegressor) { a.nEstimators = n }
}

// WithAdaMaxDepth limits the depth of each round's tree.
func WithAdaMaxDepth(d int) AdaBoostOption {
	return func(a *AdaBoostRegressor) { a.maxDepth = d }
}

// WithAdaSeed seeds the weighted resampling.
func WithAdaSeed(seed int64) AdaBoostOption {
	return func(a *AdaBoostRegressor) { a.seed = seed }
}

// NewAdaBoostRegressor creates an unfitted AdaBoost.R2 ensemble.
func NewAdaBoostRegressor(opts ...AdaBoostOption) *AdaBoostRegressor {
	a := &AdaBoostRegressor{
		State:       model.NewStateManager(),
		nEstimators: 100,
		maxDepth:    3,
		seed:        42,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AdaBoostRegressor) Name() string   { return "adaboost" }
func (a *AdaBoostRegressor) IsFitted() bool { return a.State.IsFitted() }

// Fit runs AdaBoost.R2 rounds, stopping early when a round's weighted
// error reaches 0.5 or the fit becomes perfect.
func (a *AdaBoostRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "AdaBoostRegressor.Fit")
	n, p := X.Dims()
	if n == 0 {
		return wsErrors.NewModelError("AdaBoostRegressor.Fit", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return wsErrors.NewDimensionError("AdaBoostRegressor.Fit", n, y.Len(), 0)
	}

	a.NFeatures = p
	a.Trees = nil
	a.LogBetas = nil

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}

	rng := rand.New(rand.NewSource(a.seed))
	for round := 0; round < a.nEstimators; round++ {
		idx := weightedSample(weights, n, rng)
		sx, sy := subset(X, y, idx)

		tree := NewDecisionTreeRegressor(
			WithMaxDepth(a.maxDepth),
			WithTreeSeed(a.seed+int64(round)+1),
		)
		if err := tree.Fit(sx, sy); err != nil {
			return err
		}

		pred, err := tree.Predict(X)
		if err != nil {
			return err
		}

		var maxErr float64
		absErr := make([]float64, n)
		for i := 0; i < n; i++ {
			absErr[i] = math.Abs(y.AtVec(i) - pred.AtVec(i))
			if absErr[i] > maxErr {
				maxErr = absErr[i]
			}
		}
		if maxErr == 0 {
			// Perfect round dominates the vote.
			a.Trees = append(a.Trees, tree)
			a.LogBetas = append(a.LogBetas, math.Log(1e12))
			break
		}

		var avgLoss float64
		for i := 0; i < n; i++ {
			avgLoss += weights[i] * absErr[i] / maxErr
		}
		if avgLoss >= 0.5 {
			break
		}

		beta := avgLoss / (1 - avgLoss)
		a.Trees = append(a.Trees, tree)
		a.LogBetas = append(a.LogBetas, math.Log(1/beta))

		var total float64
		for i := 0; i < n; i++ {
			weights[i] *= math.Pow(beta, 1-absErr[i]/maxErr)
			total += weights[i]
		}
		for i := range weights {
			weights[i] /= total
		}
	}

	if len(a.Trees) == 0 {
		return wsErrors.NewModelError("AdaBoostRegressor.Fit", "no round achieved weighted error below 0.5", nil)
	}
	a.State.SetFitted()
	return nil
}

// Predict returns the weighted median of the rounds' predictions.
func (a *AdaBoostRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !a.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("AdaBoostRegressor", "Predict")
	}

	n, _ := X.Dims()
	m := len(a.Trees)
	preds := make([]*mat.VecDense, m)
	for t, tree := range a.Trees {
		p, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		preds[t] = p
	}

	out := mat.NewVecDense(n, nil)
	var totalWeight float64
	for _, w := range a.LogBetas {
		totalWeight += w
	}

	type wp struct {
		value  float64
		weight float64
	}
	for i := 0; i < n; i++ {
		row := make([]wp, m)
		for t := 0; t < m; t++ {
			row[t] = wp{preds[t].AtVec(i), a.LogBetas[t]}
		}
		sort.Slice(row, func(x, y int) bool { return row[x].value < row[y].value })

		var cum float64
		value := row[m-1].value
		for _, e := range row {
			cum += e.weight
			if cum >= totalWeight/2 {
				value = e.value
				break
			}
		}
		out.SetVec(i, value)
	}
	return out, nil
}

func sampleWithoutReplacement(n, k int, rng *rand.Rand) []int {
	if k >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := rng.Perm(n)[:k]
	sort.Ints(idx)
	return idx
}

func weightedSample(weights []float64, k int, rng *rand.Rand) []int {
	cum := make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		total += w
		cum[i] = total
	}

	idx := make([]int, k)
	for i := 0; i < k; i++ {
		r := rng.Float64() * total
		idx[i] = sort.SearchFloat64s(cum, r)
		if idx[i] >= len(weights) {
			idx[i] = len(weights) - 1
		}
	}
	return idx
}

func subset(X mat.Matrix, y *mat.VecDense, idx []int) (*mat.Dense, *mat.VecDense) {
	_, p := X.Dims()
	sx := mat.NewDense(len(idx), p, nil)
	sy := mat.NewVecDense(len(idx), nil)
	for i, src := range idx {
		for j := 0; j < p; j++ {
			sx.Set(i, j, X.At(src, j))
		}
		sy.SetVec(i, y.AtVec(src))
	}
	return sx, sy
}
