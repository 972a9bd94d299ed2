package training

import (
	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/regression"
)

// Params is one sampled hyperparameter assignment.
type Params map[string]interface{}

// Grid enumerates the values randomized search may draw per parameter.
type Grid map[string][]interface{}

// Candidate is one entry of the baseline pool: a name and a builder that
// constructs a fresh estimator.
type Candidate struct {
	Name  string
	Build func() model.Regressor
}

// baselineCandidates returns the eight-model comparison pool with the
// stock hyperparameters.
func baselineCandidates(seed int64) []Candidate {
	return []Candidate{
		{"random_forest", func() model.Regressor {
			return regression.NewRandomForestRegressor(
				regression.WithNEstimators(100), regression.WithSeed(seed))
		}},
		{"gradient_boosting", func() model.Regressor {
			return regression.NewGradientBoostingRegressor(
				regression.WithGBNEstimators(100), regression.WithGBSeed(seed))
		}},
		{"extra_trees", func() model.Regressor {
			return regression.NewExtraTreesRegressor(
				regression.WithNEstimators(100), regression.WithSeed(seed))
		}},
		{"ridge", func() model.Regressor { return regression.NewRidge(1.0) }},
		{"lasso", func() model.Regressor { return regression.NewLasso(1.0) }},
		{"elastic_net", func() model.Regressor { return regression.NewElasticNet(1.0, 0.5) }},
		{"adaboost", func() model.Regressor {
			return regression.NewAdaBoostRegressor(
				regression.WithAdaNEstimators(100), regression.WithAdaSeed(seed))
		}},
		{"knn", func() model.Regressor { return regression.NewKNNRegressor(5) }},
	}
}

// Tunable pairs a search grid with a parameterized builder.
type Tunable struct {
	Name       string
	Grid       Grid
	Iterations int
	Build      func(p Params) model.Regressor
}

// tunables returns the three tree ensembles that get randomized-search
// treatment, with their grids.
func tunables(seed int64) []Tunable {
	return []Tunable{
		{
			Name: "random_forest",
			Grid: Grid{
				"n_estimators":      {100, 200, 300},
				"max_depth":         {10, 20, 30, 0},
				"min_samples_split": {2, 5, 10},
				"min_samples_leaf":  {1, 2, 4},
				"max_features":      {"sqrt", "log2"},
			},
			Iterations: 20,
			Build: func(p Params) model.Regressor {
				return regression.NewRandomForestRegressor(
					regression.WithNEstimators(intParam(p, "n_estimators", 100)),
					regression.WithForestMaxDepth(intParam(p, "max_depth", 0)),
					regression.WithForestMinSamplesSplit(intParam(p, "min_samples_split", 2)),
					regression.WithForestMinSamplesLeaf(intParam(p, "min_samples_leaf", 1)),
					regression.WithForestMaxFeatures(stringParam(p, "max_features", "sqrt")),
					regression.WithSeed(seed),
				)
			},
		},
		{
			Name: "gradient_boosting",
			Grid: Grid{
				"n_estimators":      {100, 200, 300},
				"learning_rate":     {0.01, 0.05, 0.1},
				"max_depth":         {3, 5, 7},
				"min_samples_split": {2, 5, 10},
				"subsample":         {0.8, 0.9, 1.0},
			},
			Iterations: 20,
			Build: func(p Params) model.Regressor {
				return regression.NewGradientBoostingRegressor(
					regression.WithGBNEstimators(intParam(p, "n_estimators", 100)),
					regression.WithLearningRate(floatParam(p, "learning_rate", 0.1)),
					regression.WithGBMaxDepth(intParam(p, "max_depth", 3)),
					regression.WithGBMinSamplesSplit(intParam(p, "min_samples_split", 2)),
					regression.WithSubsample(floatParam(p, "subsample", 1.0)),
					regression.WithGBSeed(seed),
				)
			},
		},
		{
			Name: "extra_trees",
			Grid: Grid{
				"n_estimators":      {100, 200, 300},
				"max_depth":         {10, 20, 30, 0},
				"min_samples_split": {2, 5, 10},
				"min_samples_leaf":  {1, 2, 4},
			},
			Iterations: 15,
			Build: func(p Params) model.Regressor {
				return regression.NewExtraTreesRegressor(
					regression.WithNEstimators(intParam(p, "n_estimators", 100)),
					regression.WithForestMaxDepth(intParam(p, "max_depth", 0)),
					regression.WithForestMinSamplesSplit(intParam(p, "min_samples_split", 2)),
					regression.WithForestMinSamplesLeaf(intParam(p, "min_samples_leaf", 1)),
					regression.WithSeed(seed),
				)
			},
		},
	}
}

func intParam(p Params, key string, def int) int {
	if v, ok := p[key]; ok {
		if i, ok := v.(int); ok {
			return i
		}
	}
	return def
}

func floatParam(p Params, key string, def float64) float64 {
	if v, ok := p[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

func stringParam(p Params, key string, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}
