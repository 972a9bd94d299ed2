// Package model provides the core abstractions shared by all estimators:
// fitted-state tracking, the regressor contract, and gob persistence for
// trained artifacts.
//
// Every transformer and regressor composes a StateManager so that use
// before Fit is caught uniformly:
//
//	type RidgeRegression struct {
//		State *model.StateManager
//		...
//	}
//
// Trained models are persisted with SaveModel and restored with LoadModel;
// the on-disk format is Go's encoding/gob, which round-trips the exported
// fields of the concrete estimator.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// EstimatorState represents the learning state of an estimator.
type EstimatorState int

const (
	// NotFitted indicates the estimator has not been trained.
	NotFitted EstimatorState = iota
	// Fitted indicates the estimator has been trained.
	Fitted
)

// StateManager tracks whether an estimator has been fitted. Public fields
// keep it gob-encodable alongside the estimator that embeds it.
type StateManager struct {
	State EstimatorState
}

// NewStateManager returns a StateManager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{State: NotFitted}
}

// IsFitted reports whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	return s != nil && s.State == Fitted
}

// SetFitted marks the estimator as fitted. Called by estimator
// implementations at the end of a successful Fit.
func (s *StateManager) SetFitted() {
	s.State = Fitted
}

// Reset returns the estimator to the untrained state.
func (s *StateManager) Reset() {
	s.State = NotFitted
}

// Regressor is the contract every regression model satisfies. Fit consumes
// a feature matrix with one target value per row; Predict returns one
// prediction per input row. Implementations are deterministic for a fixed
// seed and safe for concurrent Predict calls once fitted.
type Regressor interface {
	Fit(X mat.Matrix, y *mat.VecDense) error
	Predict(X mat.Matrix) (*mat.VecDense, error)
	IsFitted() bool
	Name() string
}

// FeatureImportancer is an optional capability: models that can attribute
// predictive weight to input features expose it explicitly. Callers branch
// on the interface check, never on field probing.
type FeatureImportancer interface {
	FeatureImportances() []float64
}
