// Package training runs the full model-selection pipeline for one task:
// load, preprocess, baseline comparison, randomized tuning, ensembling,
// selection, cross-validation, artifact persistence and reporting. A run
// either completes every stage or persists nothing.
package training

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/metrics"
	"github.com/wellsync/wellsync-ai/pipeline"
	"github.com/wellsync/wellsync-ai/pkg/config"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
	"github.com/wellsync/wellsync-ai/pkg/log"
	"github.com/wellsync/wellsync-ai/regression"
)

// Artifact file names within a task's model directory.
const (
	BestModelFile    = "best_model.gob"
	BundleFile       = "bundle.gob"
	FeatureNamesFile = "feature_names.json"
	MetadataFile     = "metadata.json"
)

// ModelResult holds one model's evaluation on the held-out split.
type ModelResult struct {
	Name     string  `json:"name"`
	TrainR2  float64 `json:"train_r2"`
	TestR2   float64 `json:"test_r2"`
	TrainMAE float64 `json:"train_mae"`
	TestMAE  float64 `json:"test_mae"`
	TestRMSE float64 `json:"test_rmse"`
	TestMAPE float64 `json:"test_mape"`
}

// Metadata describes a completed training run. It is written next to the
// model artifacts and echoed by the serving layer.
type Metadata struct {
	RunID        string      `json:"run_id"`
	Task         string      `json:"task"`
	BestModel    string      `json:"best_model"`
	BestResult   ModelResult `json:"best_result"`
	CVR2Mean     float64     `json:"cv_r2_mean"`
	CVR2Std      float64     `json:"cv_r2_std"`
	CVMAEMean    float64     `json:"cv_mae_mean"`
	CVRMSEMean   float64     `json:"cv_rmse_mean"`
	CVFolds      int         `json:"cv_folds"`
	FeatureCount int         `json:"feature_count"`
	DatasetSize  int         `json:"dataset_size"`
	TrainedAt    time.Time   `json:"trained_at"`
}

// RunResult is the orchestrator's summary of a completed run.
type RunResult struct {
	RunID     string
	Task      string
	Baselines []ModelResult
	Tuned     []ModelResult
	BestName  string
	Best      ModelResult
	CV        *CVResult
	ModelDir  string
}

// Orchestrator drives one task's training run.
type Orchestrator struct {
	task      pipeline.Config
	cfg       config.TrainingConfig
	modelsDir string
	logger    zerolog.Logger
}

// NewOrchestrator creates an orchestrator for the given task.
func NewOrchestrator(task pipeline.Config, cfg config.TrainingConfig, modelsDir string) *Orchestrator {
	task.Seed = cfg.Seed
	if cfg.TestSize > 0 {
		task.TestSize = cfg.TestSize
	}
	return &Orchestrator{
		task:      task,
		cfg:       cfg,
		modelsDir: modelsDir,
		logger:    log.GetLoggerWithName("training").With().Str(log.TaskKey, task.Task).Logger(),
	}
}

// Run executes every stage against the CSV at csvPath. Any stage failure
// aborts the run before persistence, leaving prior artifacts untouched.
func (o *Orchestrator) Run(csvPath string) (*RunResult, error) {
	runID := uuid.NewString()
	o.logger.Info().Str("run_id", runID).Str("data", csvPath).Msg("training run started")

	// Load.
	frame, err := dataset.LoadCSV(csvPath)
	if err != nil {
		return nil, wsErrors.NewModelError("Orchestrator.Run", "load stage failed", err)
	}
	datasetSize := frame.NumRows()

	// Engineer and preprocess.
	pipe := pipeline.New(o.task)
	split, err := pipe.FitTransform(frame)
	if err != nil {
		return nil, wsErrors.NewModelError("Orchestrator.Run", "preprocess stage failed", err)
	}

	// Baseline comparison.
	baselines, err := o.trainBaselines(split)
	if err != nil {
		return nil, err
	}

	// Randomized tuning of the tree ensembles.
	tuned, tunedResults, err := o.tuneTopModels(split)
	if err != nil {
		return nil, err
	}

	// Voting and stacking over the tuned trio.
	finalists, finalistResults, err := o.buildEnsembles(split, tuned, tunedResults)
	if err != nil {
		return nil, err
	}

	// Selection: held-out R², strict improvement, first wins ties.
	bestIdx := 0
	for i := 1; i < len(finalistResults); i++ {
		if finalistResults[i].TestR2 > finalistResults[bestIdx].TestR2 {
			bestIdx = i
		}
	}
	best := finalists[bestIdx]
	bestResult := finalistResults[bestIdx]
	o.logger.Info().Str("model", bestResult.Name).Float64("test_r2", bestResult.TestR2).Msg("best model selected")

	// Cross-validate the winner on the full dataset.
	fullX, fullY := concat(split.XTrain, split.XTest, split.YTrain, split.YTest)
	folds := 10
	cv, err := crossValidate(func() model.Regressor { return rebuild(best, tuned) }, fullX, fullY, folds, o.cfg.Seed)
	if err != nil {
		return nil, wsErrors.NewModelError("Orchestrator.Run", "cross-validation stage failed", err)
	}
	o.logger.Info().Float64("cv_r2", cv.R2Mean).Float64("cv_r2_std", cv.R2Std).Msg("cross-validation complete")

	// Persist.
	modelDir := filepath.Join(o.modelsDir, o.task.Task)
	meta := Metadata{
		RunID:        runID,
		Task:         o.task.Task,
		BestModel:    bestResult.Name,
		BestResult:   bestResult,
		CVR2Mean:     cv.R2Mean,
		CVR2Std:      cv.R2Std,
		CVMAEMean:    cv.MAEMean,
		CVRMSEMean:   cv.RMSEMean,
		CVFolds:      cv.Folds,
		FeatureCount: len(split.FeatureNames),
		DatasetSize:  datasetSize,
		TrainedAt:    time.Now().UTC(),
	}
	if err := o.persist(modelDir, best, pipe.Bundle, split.FeatureNames, meta, finalists); err != nil {
		return nil, wsErrors.NewModelError("Orchestrator.Run", "persist stage failed", err)
	}

	res := &RunResult{
		RunID:     runID,
		Task:      o.task.Task,
		Baselines: baselines,
		Tuned:     tunedResults,
		BestName:  bestResult.Name,
		Best:      bestResult,
		CV:        cv,
		ModelDir:  modelDir,
	}

	// Report. Failures here abort too: a run without its report is not
	// reproducible evidence.
	if err := o.report(res, best, split); err != nil {
		return nil, wsErrors.NewModelError("Orchestrator.Run", "report stage failed", err)
	}

	o.logger.Info().Str("run_id", runID).Msg("training run complete")
	return res, nil
}

func (o *Orchestrator) trainBaselines(split *pipeline.SplitResult) ([]ModelResult, error) {
	results := make([]ModelResult, 0, 8)
	for _, c := range baselineCandidates(o.cfg.Seed) {
		m := c.Build()
		if err := m.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, wsErrors.NewModelError("Orchestrator.trainBaselines", c.Name+" failed", err)
		}
		r, err := evaluate(c.Name, m, split)
		if err != nil {
			return nil, err
		}
		o.logger.Info().Str("model", c.Name).Float64("test_r2", r.TestR2).Float64("test_mae", r.TestMAE).Msg("baseline trained")
		results = append(results, r)
	}
	return results, nil
}

// tunedSet keeps the search winners so ensembles and the final CV can
// rebuild them with their tuned parameters.
type tunedSet struct {
	byName map[string]*SearchResult
	specs  map[string]Tunable
}

func (o *Orchestrator) tuneTopModels(split *pipeline.SplitResult) (*tunedSet, []ModelResult, error) {
	set := &tunedSet{byName: map[string]*SearchResult{}, specs: map[string]Tunable{}}
	var results []ModelResult

	for _, t := range tunables(o.cfg.Seed) {
		if o.cfg.SearchIterations > 0 && o.cfg.SearchIterations < t.Iterations {
			t.Iterations = o.cfg.SearchIterations
		}
		sr, err := randomizedSearch(t, split.XTrain, split.YTrain, o.cfg.CVFolds, o.cfg.Seed)
		if err != nil {
			return nil, nil, wsErrors.NewModelError("Orchestrator.tuneTopModels", "tuning "+t.Name+" failed", err)
		}
		set.byName[t.Name] = sr
		set.specs[t.Name] = t

		r, err := evaluate("tuned_"+t.Name, sr.Model, split)
		if err != nil {
			return nil, nil, err
		}
		o.logger.Info().Str("model", t.Name).Float64("cv_r2", sr.CVScore).Float64("test_r2", r.TestR2).Msg("tuning complete")
		results = append(results, r)
	}
	return set, results, nil
}

func (o *Orchestrator) buildEnsembles(split *pipeline.SplitResult, tuned *tunedSet, tunedResults []ModelResult) ([]model.Regressor, []ModelResult, error) {
	names := []string{"random_forest", "gradient_boosting", "extra_trees"}
	factories := make([]regression.Factory, len(names))
	for i, name := range names {
		sr := tuned.byName[name]
		spec := tuned.specs[name]
		params := sr.Params
		factories[i] = func() model.Regressor { return spec.Build(params) }
	}

	voting := regression.NewVotingRegressor(names, factories)
	if err := voting.Fit(split.XTrain, split.YTrain); err != nil {
		return nil, nil, wsErrors.NewModelError("Orchestrator.buildEnsembles", "voting failed", err)
	}
	votingResult, err := evaluate("voting_ensemble", voting, split)
	if err != nil {
		return nil, nil, err
	}
	o.logger.Info().Float64("test_r2", votingResult.TestR2).Msg("voting ensemble trained")

	stacking := regression.NewStackingRegressor(names, factories,
		regression.WithStackingCV(o.cfg.CVFolds), regression.WithStackingSeed(o.cfg.Seed))
	if err := stacking.Fit(split.XTrain, split.YTrain); err != nil {
		return nil, nil, wsErrors.NewModelError("Orchestrator.buildEnsembles", "stacking failed", err)
	}
	stackingResult, err := evaluate("stacking_ensemble", stacking, split)
	if err != nil {
		return nil, nil, err
	}
	o.logger.Info().Float64("test_r2", stackingResult.TestR2).Msg("stacking ensemble trained")

	finalists := []model.Regressor{
		tuned.byName["random_forest"].Model,
		tuned.byName["gradient_boosting"].Model,
		tuned.byName["extra_trees"].Model,
		voting,
		stacking,
	}
	results := append(append([]ModelResult(nil), tunedResults...), votingResult, stackingResult)
	return finalists, results, nil
}

// rebuild constructs a fresh copy of the selected model for
// cross-validation refits.
func rebuild(best model.Regressor, tuned *tunedSet) model.Regressor {
	switch best.Name() {
	case "voting_ensemble", "stacking_ensemble":
		names := []string{"random_forest", "gradient_boosting", "extra_trees"}
		factories := make([]regression.Factory, len(names))
		for i, name := range names {
			spec := tuned.specs[name]
			params := tuned.byName[name].Params
			factories[i] = func() model.Regressor { return spec.Build(params) }
		}
		if best.Name() == "voting_ensemble" {
			return regression.NewVotingRegressor(names, factories)
		}
		return regression.NewStackingRegressor(names, factories)
	default:
		spec := tuned.specs[best.Name()]
		return spec.Build(tuned.byName[best.Name()].Params)
	}
}

func evaluate(name string, m model.Regressor, split *pipeline.SplitResult) (ModelResult, error) {
	trainPred, err := m.Predict(split.XTrain)
	if err != nil {
		return ModelResult{}, err
	}
	testPred, err := m.Predict(split.XTest)
	if err != nil {
		return ModelResult{}, err
	}

	r := ModelResult{Name: name}
	if r.TrainR2, err = metrics.R2Score(split.YTrain, trainPred); err != nil {
		return ModelResult{}, err
	}
	if r.TestR2, err = metrics.R2Score(split.YTest, testPred); err != nil {
		return ModelResult{}, err
	}
	if r.TrainMAE, err = metrics.MAE(split.YTrain, trainPred); err != nil {
		return ModelResult{}, err
	}
	if r.TestMAE, err = metrics.MAE(split.YTest, testPred); err != nil {
		return ModelResult{}, err
	}
	if r.TestRMSE, err = metrics.RMSE(split.YTest, testPred); err != nil {
		return ModelResult{}, err
	}
	if r.TestMAPE, err = metrics.MAPE(split.YTest, testPred); err != nil {
		return ModelResult{}, err
	}
	return r, nil
}

// persist writes every artifact of a successful run into a fresh
// directory tree, best model first only after all stages succeeded.
func (o *Orchestrator) persist(dir string, best model.Regressor, bundle *pipeline.Bundle, featureNames []string, meta Metadata, finalists []model.Regressor) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := regression.SaveRegressor(best, filepath.Join(dir, BestModelFile)); err != nil {
		return err
	}
	for _, m := range finalists {
		if m == best {
			continue
		}
		name := fmt.Sprintf("tuned_%s.gob", m.Name())
		switch m.Name() {
		case "voting_ensemble", "stacking_ensemble":
			name = m.Name() + ".gob"
		}
		if err := regression.SaveRegressor(m, filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	if err := bundle.Save(filepath.Join(dir, BundleFile)); err != nil {
		return err
	}

	names, err := json.MarshalIndent(featureNames, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, FeatureNamesFile), names, 0o644); err != nil {
		return err
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), metaBytes, 0o644); err != nil {
		return err
	}

	o.logger.Info().Str("dir", dir).Msg("artifacts persisted")
	return nil
}

// LoadMetadata reads a task's persisted training metadata.
func LoadMetadata(dir string) (*Metadata, error) {
	b, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wsErrors.NewArtifactMissingError("metadata", filepath.Join(dir, MetadataFile))
		}
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func concat(xa, xb *mat.Dense, ya, yb *mat.VecDense) (*mat.Dense, *mat.VecDense) {
	na, p := xa.Dims()
	nb, _ := xb.Dims()
	X := mat.NewDense(na+nb, p, nil)
	y := mat.NewVecDense(na+nb, nil)
	for i := 0; i < na; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, xa.At(i, j))
		}
		y.SetVec(i, ya.AtVec(i))
	}
	for i := 0; i < nb; i++ {
		for j := 0; j < p; j++ {
			X.Set(na+i, j, xb.At(i, j))
		}
		y.SetVec(na+i, yb.AtVec(i))
	}
	return X, y
}
