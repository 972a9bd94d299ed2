// Package regression implements the candidate model pool: regularized
// linear models, tree ensembles, nearest neighbors, and voting/stacking
// combinations. Every estimator satisfies core/model.Regressor and can be
// gob-persisted after fitting.
package regression

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// TreeNode is one node of a fitted regression tree. Exported fields keep
// the structure gob-encodable.
type TreeNode struct {
	IsLeaf    bool
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Value     float64
}

// DecisionTreeRegressor fits a binary regression tree by variance
// reduction. It is the building block for the forest, extra-trees,
// gradient-boosting and AdaBoost ensembles.
type DecisionTreeRegressor struct {
	State *model.StateManager

	Root        *TreeNode
	NFeatures   int
	Importances []float64

	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     string
	randomSplits    bool
	seed            int64
}

// TreeOption configures a DecisionTreeRegressor.
type TreeOption func(*DecisionTreeRegressor)

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(d int) TreeOption {
	return func(t *DecisionTreeRegressor) { t.maxDepth = d }
}

// WithMinSamplesSplit sets the minimum samples required to split a node.
func WithMinSamplesSplit(n int) TreeOption {
	return func(t *DecisionTreeRegressor) { t.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in a leaf.
func WithMinSamplesLeaf(n int) TreeOption {
	return func(t *DecisionTreeRegressor) { t.minSamplesLeaf = n }
}

// WithMaxFeatures restricts the features considered per split: "sqrt",
// "log2", or "" for all.
func WithMaxFeatures(mode string) TreeOption {
	return func(t *DecisionTreeRegressor) { t.maxFeatures = mode }
}

// WithRandomSplits draws one random threshold per candidate feature
// instead of scanning all cut points. Used by extra-trees.
func WithRandomSplits() TreeOption {
	return func(t *DecisionTreeRegressor) { t.randomSplits = true }
}

// WithTreeSeed seeds feature subsampling and random splits.
func WithTreeSeed(seed int64) TreeOption {
	return func(t *DecisionTreeRegressor) { t.seed = seed }
}

// NewDecisionTreeRegressor creates an unfitted tree with the given
// options.
func NewDecisionTreeRegressor(opts ...TreeOption) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		State:           model.NewStateManager(),
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		seed:            42,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name identifies the estimator in artifacts and reports.
func (t *DecisionTreeRegressor) Name() string { return "decision_tree" }

// IsFitted reports whether Fit has completed.
func (t *DecisionTreeRegressor) IsFitted() bool { return t.State.IsFitted() }

// FeatureImportances returns normalized variance-reduction importances.
func (t *DecisionTreeRegressor) FeatureImportances() []float64 {
	if t.Importances == nil {
		return nil
	}
	out := make([]float64, len(t.Importances))
	copy(out, t.Importances)
	return out
}

// Fit builds the tree on X and y.
func (t *DecisionTreeRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "DecisionTreeRegressor.Fit")
	n, p := X.Dims()
	if n == 0 {
		return wsErrors.NewModelError("DecisionTreeRegressor.Fit", "empty data", wsErrors.ErrEmptyData)
	}
	if y.Len() != n {
		return wsErrors.NewDimensionError("DecisionTreeRegressor.Fit", n, y.Len(), 0)
	}

	t.NFeatures = p
	t.Importances = make([]float64, p)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	b := &treeBuilder{
		X:           X,
		y:           y,
		tree:        t,
		rng:         rand.New(rand.NewSource(t.seed)),
		nCandidates: t.featureCandidates(p),
	}
	t.Root = b.build(idx, 0)

	var total float64
	for _, imp := range t.Importances {
		total += imp
	}
	if total > 0 {
		for i := range t.Importances {
			t.Importances[i] /= total
		}
	}

	t.State.SetFitted()
	return nil
}

func (t *DecisionTreeRegressor) featureCandidates(p int) int {
	switch t.maxFeatures {
	case "sqrt":
		if c := int(math.Sqrt(float64(p))); c > 0 {
			return c
		}
		return 1
	case "log2":
		if c := int(math.Log2(float64(p))); c > 0 {
			return c
		}
		return 1
	default:
		return p
	}
}

// Predict traverses the tree for each row.
func (t *DecisionTreeRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !t.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	n, p := X.Dims()
	if p != t.NFeatures {
		return nil, wsErrors.NewDimensionError("DecisionTreeRegressor.Predict", t.NFeatures, p, 1)
	}

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		node := t.Root
		for !node.IsLeaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		out.SetVec(i, node.Value)
	}
	return out, nil
}

type treeBuilder struct {
	X           mat.Matrix
	y           *mat.VecDense
	tree        *DecisionTreeRegressor
	rng         *rand.Rand
	nCandidates int
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

func (b *treeBuilder) build(idx []int, depth int) *TreeNode {
	n := len(idx)
	mean, variance := b.meanVariance(idx)
	node := &TreeNode{Value: mean}

	if n < b.tree.minSamplesSplit || variance == 0 ||
		(b.tree.maxDepth > 0 && depth >= b.tree.maxDepth) {
		node.IsLeaf = true
		return node
	}

	best := b.findSplit(idx, variance)
	if best == nil {
		node.IsLeaf = true
		return node
	}

	b.tree.Importances[best.feature] += best.gain * float64(n)

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = b.build(best.left, depth+1)
	node.Right = b.build(best.right, depth+1)
	return node
}

func (b *treeBuilder) meanVariance(idx []int) (mean, variance float64) {
	n := float64(len(idx))
	var sum, sumSq float64
	for _, i := range idx {
		v := b.y.AtVec(i)
		sum += v
		sumSq += v * v
	}
	mean = sum / n
	variance = sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

func (b *treeBuilder) candidateFeatures() []int {
	p := b.tree.NFeatures
	if b.nCandidates >= p {
		features := make([]int, p)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return b.rng.Perm(p)[:b.nCandidates]
}

func (b *treeBuilder) findSplit(idx []int, parentVariance float64) *split {
	var best *split
	for _, feature := range b.candidateFeatures() {
		var cand *split
		if b.tree.randomSplits {
			cand = b.randomSplit(idx, feature, parentVariance)
		} else {
			cand = b.bestSplit(idx, feature, parentVariance)
		}
		if cand != nil && (best == nil || cand.gain > best.gain) {
			best = cand
		}
	}
	return best
}

// bestSplit scans every cut point of one feature using prefix sums.
func (b *treeBuilder) bestSplit(idx []int, feature int, parentVariance float64) *split {
	n := len(idx)
	order := make([]int, n)
	copy(order, idx)
	sort.Slice(order, func(i, j int) bool {
		return b.X.At(order[i], feature) < b.X.At(order[j], feature)
	})

	var totalSum, totalSumSq float64
	for _, i := range order {
		v := b.y.AtVec(i)
		totalSum += v
		totalSumSq += v * v
	}

	var best *split
	var leftSum, leftSumSq float64
	for k := 0; k < n-1; k++ {
		v := b.y.AtVec(order[k])
		leftSum += v
		leftSumSq += v * v

		cur := b.X.At(order[k], feature)
		next := b.X.At(order[k+1], feature)
		if cur == next {
			continue
		}

		nLeft := k + 1
		nRight := n - nLeft
		if nLeft < b.tree.minSamplesLeaf || nRight < b.tree.minSamplesLeaf {
			continue
		}

		gain := gainFromSums(parentVariance, leftSum, leftSumSq, totalSum-leftSum,
			totalSumSq-leftSumSq, nLeft, nRight)
		if gain <= 0 {
			continue
		}
		if best == nil || gain > best.gain {
			threshold := (cur + next) / 2
			best = &split{feature: feature, threshold: threshold, gain: gain}
		}
	}

	if best == nil {
		return nil
	}
	best.left, best.right = partition(b.X, idx, best.feature, best.threshold)
	return best
}

// randomSplit draws a single uniform threshold between the feature's min
// and max over the node samples.
func (b *treeBuilder) randomSplit(idx []int, feature int, parentVariance float64) *split {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		v := b.X.At(i, feature)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return nil
	}

	threshold := lo + b.rng.Float64()*(hi-lo)
	left, right := partition(b.X, idx, feature, threshold)
	if len(left) < b.tree.minSamplesLeaf || len(right) < b.tree.minSamplesLeaf {
		return nil
	}

	var ls, lsq, rs, rsq float64
	for _, i := range left {
		v := b.y.AtVec(i)
		ls += v
		lsq += v * v
	}
	for _, i := range right {
		v := b.y.AtVec(i)
		rs += v
		rsq += v * v
	}

	gain := gainFromSums(parentVariance, ls, lsq, rs, rsq, len(left), len(right))
	if gain <= 0 {
		return nil
	}
	return &split{feature: feature, threshold: threshold, gain: gain, left: left, right: right}
}

func gainFromSums(parentVariance, leftSum, leftSumSq, rightSum, rightSumSq float64, nLeft, nRight int) float64 {
	nl, nr := float64(nLeft), float64(nRight)
	n := nl + nr

	leftMean := leftSum / nl
	leftVar := leftSumSq/nl - leftMean*leftMean
	rightMean := rightSum / nr
	rightVar := rightSumSq/nr - rightMean*rightMean

	weighted := (nl*leftVar + nr*rightVar) / n
	return parentVariance - weighted
}

func partition(X mat.Matrix, idx []int, feature int, threshold float64) (left, right []int) {
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}
