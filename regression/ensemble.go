package regression

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// Factory builds a fresh, unfitted estimator. Ensembles use factories so
// cross-validation folds and the final fit each get clean copies.
type Factory func() model.Regressor

// VotingRegressor averages the predictions of its members, each fitted
// on the full training data.
type VotingRegressor struct {
	State *model.StateManager

	MemberNames []string
	Members     []model.Regressor

	factories []Factory
}

// NewVotingRegressor creates a voting ensemble over the named factories.
func NewVotingRegressor(names []string, factories []Factory) *VotingRegressor {
	return &VotingRegressor{
		State:       model.NewStateManager(),
		MemberNames: names,
		factories:   factories,
	}
}

func (v *VotingRegressor) Name() string   { return "voting_ensemble" }
func (v *VotingRegressor) IsFitted() bool { return v.State.IsFitted() }

// Fit trains every member on the full data.
func (v *VotingRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "VotingRegressor.Fit")
	if len(v.factories) == 0 {
		return wsErrors.NewValueError("VotingRegressor.Fit", "no member factories; a loaded ensemble cannot be refitted")
	}

	v.Members = make([]model.Regressor, len(v.factories))
	for i, build := range v.factories {
		m := build()
		if err := m.Fit(X, y); err != nil {
			return wsErrors.NewModelError("VotingRegressor.Fit", "member "+v.MemberNames[i]+" failed", err)
		}
		v.Members[i] = m
	}

	v.State.SetFitted()
	return nil
}

// Predict averages the member predictions.
func (v *VotingRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !v.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("VotingRegressor", "Predict")
	}

	n, _ := X.Dims()
	out := mat.NewVecDense(n, nil)
	for _, m := range v.Members {
		pred, err := m.Predict(X)
		if err != nil {
			return nil, err
		}
		out.AddVec(out, pred)
	}
	out.ScaleVec(1/float64(len(v.Members)), out)
	return out, nil
}

// StackingRegressor feeds out-of-fold member predictions into a ridge
// meta-learner. Members are refitted on the full data for serving; the
// meta-learner only ever sees predictions a member made on rows it was
// not trained on.
type StackingRegressor struct {
	State *model.StateManager

	MemberNames []string
	Members     []model.Regressor
	Meta        *Ridge

	factories []Factory
	cvFolds   int
	seed      int64
}

// StackingOption configures a StackingRegressor.
type StackingOption func(*StackingRegressor)

// WithStackingCV sets the number of out-of-fold splits.
func WithStackingCV(folds int) StackingOption {
	return func(s *StackingRegressor) { s.cvFolds = folds }
}

// WithStackingSeed seeds the fold assignment shuffle.
func WithStackingSeed(seed int64) StackingOption {
	return func(s *StackingRegressor) { s.seed = seed }
}

// NewStackingRegressor creates a stacking ensemble with a Ridge(1.0)
// meta-learner.
func NewStackingRegressor(names []string, factories []Factory, opts ...StackingOption) *StackingRegressor {
	s := &StackingRegressor{
		State:       model.NewStateManager(),
		MemberNames: names,
		Meta:        NewRidge(1.0),
		factories:   factories,
		cvFolds:     5,
		seed:        42,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StackingRegressor) Name() string   { return "stacking_ensemble" }
func (s *StackingRegressor) IsFitted() bool { return s.State.IsFitted() }

// Fit builds the out-of-fold prediction matrix, fits the meta-learner on
// it, then refits every member on the full data.
func (s *StackingRegressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer wsErrors.Recover(&err, "StackingRegressor.Fit")
	if len(s.factories) == 0 {
		return wsErrors.NewValueError("StackingRegressor.Fit", "no member factories; a loaded ensemble cannot be refitted")
	}

	n, _ := X.Dims()
	if n < s.cvFolds {
		return wsErrors.NewValueError("StackingRegressor.Fit", "fewer rows than folds")
	}

	folds := foldAssignments(n, s.cvFolds, s.seed)
	Z := mat.NewDense(n, len(s.factories), nil)

	for fold := 0; fold < s.cvFolds; fold++ {
		var trainIdx, holdIdx []int
		for i, f := range folds {
			if f == fold {
				holdIdx = append(holdIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}

		tx, ty := subset(X, y, trainIdx)
		hx, _ := subset(X, y, holdIdx)

		for m, build := range s.factories {
			member := build()
			if err := member.Fit(tx, ty); err != nil {
				return wsErrors.NewModelError("StackingRegressor.Fit", "member "+s.MemberNames[m]+" failed", err)
			}
			pred, err := member.Predict(hx)
			if err != nil {
				return err
			}
			for i, row := range holdIdx {
				Z.Set(row, m, pred.AtVec(i))
			}
		}
	}

	if err := s.Meta.Fit(Z, y); err != nil {
		return err
	}

	s.Members = make([]model.Regressor, len(s.factories))
	for m, build := range s.factories {
		member := build()
		if err := member.Fit(X, y); err != nil {
			return wsErrors.NewModelError("StackingRegressor.Fit", "member "+s.MemberNames[m]+" failed", err)
		}
		s.Members[m] = member
	}

	s.State.SetFitted()
	return nil
}

// Predict runs the members and feeds their predictions to the
// meta-learner.
func (s *StackingRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !s.State.IsFitted() {
		return nil, wsErrors.NewNotFittedError("StackingRegressor", "Predict")
	}

	n, _ := X.Dims()
	Z := mat.NewDense(n, len(s.Members), nil)
	for m, member := range s.Members {
		pred, err := member.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			Z.Set(i, m, pred.AtVec(i))
		}
	}
	return s.Meta.Predict(Z)
}

// foldAssignments deals rows into folds after a seeded shuffle.
func foldAssignments(n, folds int, seed int64) []int {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	out := make([]int, n)
	for pos, row := range perm {
		out[row] = pos % folds
	}
	return out
}
