package serving

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wellsync/wellsync-ai/pipeline"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
	"github.com/wellsync/wellsync-ai/pkg/log"
	"github.com/wellsync/wellsync-ai/regression"
	"github.com/wellsync/wellsync-ai/training"
)

// Tasks lists every task the registry attempts to load, in a stable order.
var Tasks = []string{
	pipeline.TaskMentalWellness,
	pipeline.TaskAcademicImpact,
	pipeline.TaskStress,
}

// Registry holds the loaded predictors. A task whose artifacts fail to
// load is marked unavailable; the others keep serving. The registry is
// immutable after Load.
type Registry struct {
	predictors map[string]*Predictor
	failures   map[string]error
	logger     zerolog.Logger
}

// Load reads every task's artifacts from modelsDir/<task>/.
func Load(modelsDir string) *Registry {
	r := &Registry{
		predictors: map[string]*Predictor{},
		failures:   map[string]error{},
		logger:     log.GetLoggerWithName("registry"),
	}

	for _, task := range Tasks {
		p, err := loadTask(modelsDir, task)
		if err != nil {
			r.failures[task] = err
			r.logger.Warn().Str(log.TaskKey, task).Err(err).Msg("task unavailable")
			continue
		}
		r.predictors[task] = p
		r.logger.Info().Str(log.TaskKey, task).Str("model", p.meta.BestModel).Msg("task loaded")
	}
	return r
}

func loadTask(modelsDir, task string) (*Predictor, error) {
	cfg, err := pipeline.ConfigForTask(task)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(modelsDir, task)

	m, err := regression.LoadRegressor(filepath.Join(dir, training.BestModelFile))
	if err != nil {
		return nil, err
	}
	bundle, err := pipeline.LoadBundle(filepath.Join(dir, training.BundleFile))
	if err != nil {
		return nil, err
	}
	meta, err := training.LoadMetadata(dir)
	if err != nil {
		return nil, err
	}
	return NewPredictor(cfg, m, bundle, meta)
}

// Predictor returns the loaded predictor for a task.
func (r *Registry) Predictor(task string) (*Predictor, error) {
	p, ok := r.predictors[task]
	if !ok {
		if cause, failed := r.failures[task]; failed {
			return nil, wsErrors.NewModelError("Registry.Predictor", task+" failed to load", cause)
		}
		return nil, wsErrors.NewModelError("Registry.Predictor", "unknown task "+task, wsErrors.ErrModelNotLoaded)
	}
	return p, nil
}

// Available returns the tasks that loaded successfully, sorted.
func (r *Registry) Available() []string {
	out := make([]string, 0, len(r.predictors))
	for task := range r.predictors {
		out = append(out, task)
	}
	sort.Strings(out)
	return out
}

// Info returns the training metadata of every loaded task.
func (r *Registry) Info() map[string]*training.Metadata {
	out := make(map[string]*training.Metadata, len(r.predictors))
	for task, p := range r.predictors {
		out[task] = p.meta
	}
	return out
}
