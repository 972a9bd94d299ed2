package serving

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/pipeline"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
	"github.com/wellsync/wellsync-ai/pkg/log"
	"github.com/wellsync/wellsync-ai/training"
)

// ConfidenceMetrics echoes the held-out evaluation of the serving model
// so callers can judge how much to trust the number.
type ConfidenceMetrics struct {
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
}

// Prediction is the structured answer to one request.
type Prediction struct {
	Task            string            `json:"task"`
	Value           float64           `json:"prediction"`
	Interpretation  string            `json:"interpretation"`
	Category        string            `json:"category,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
	Warnings        []string          `json:"warnings,omitempty"`
	ModelName       string            `json:"model_name"`
	RunID           string            `json:"run_id"`
	Confidence      ConfidenceMetrics `json:"confidence_metrics"`
	Status          string            `json:"status"`
	PredictedAt     time.Time         `json:"predicted_at"`
}

// Predictor answers requests for one task with a loaded model and its
// fitted preprocessing bundle. It is safe for concurrent use; nothing is
// mutated after construction.
type Predictor struct {
	task   string
	pipe   *pipeline.Pipeline
	model  model.Regressor
	meta   *training.Metadata
	logger zerolog.Logger
}

// NewPredictor binds a loaded model, bundle and metadata to a task.
func NewPredictor(cfg pipeline.Config, m model.Regressor, bundle *pipeline.Bundle, meta *training.Metadata) (*Predictor, error) {
	pipe, err := pipeline.NewWithBundle(cfg, bundle)
	if err != nil {
		return nil, err
	}
	return &Predictor{
		task:   cfg.Task,
		pipe:   pipe,
		model:  m,
		meta:   meta,
		logger: log.GetLoggerWithName("serving").With().Str(log.TaskKey, cfg.Task).Logger(),
	}, nil
}

// Task returns the task this predictor answers for.
func (p *Predictor) Task() string { return p.task }

// Metadata returns the training metadata persisted with the model.
func (p *Predictor) Metadata() *training.Metadata { return p.meta }

// Predict validates the record, replays the fitted transform, runs the
// model and interprets the result.
func (p *Predictor) Predict(rec *dataset.Record) (*Prediction, error) {
	if err := validateRecord(p.task, rec); err != nil {
		return nil, err
	}

	out, err := p.pipe.TransformRecord(rec)
	if err != nil {
		return nil, err
	}

	pred, err := p.model.Predict(out.X)
	if err != nil {
		return nil, err
	}
	value := clampToRange(p.task, pred.AtVec(0))

	result := &Prediction{
		Task:      p.task,
		Value:     value,
		Warnings:  out.Warnings,
		ModelName: p.meta.BestModel,
		RunID:     p.meta.RunID,
		Confidence: ConfidenceMetrics{
			R2:  p.meta.BestResult.TestR2,
			MAE: p.meta.BestResult.TestMAE,
		},
		Status:      "success",
		PredictedAt: time.Now().UTC(),
	}

	switch p.task {
	case pipeline.TaskMentalWellness:
		result.Interpretation = interpretWellness(value)
	case pipeline.TaskAcademicImpact:
		result.Interpretation = interpretAddiction(value)
	case pipeline.TaskStress:
		result.Category = stressCategory(value)
		result.Interpretation = interpretStress(value)
		result.Recommendations = stressRecommendations(value, rec)
	default:
		return nil, wsErrors.NewValueError("Predictor.Predict", "unknown task "+p.task)
	}

	p.logger.Debug().Float64("value", value).Int("warnings", len(result.Warnings)).Msg("prediction served")
	return result, nil
}

// clampToRange keeps a regression output inside the target's meaningful
// range. Tree ensembles cannot extrapolate past it, but linear members
// can.
func clampToRange(task string, v float64) float64 {
	var lo, hi float64
	switch task {
	case pipeline.TaskMentalWellness:
		lo, hi = 0, 100
	case pipeline.TaskAcademicImpact:
		lo, hi = 1, 10
	case pipeline.TaskStress:
		lo, hi = 0, 10
	default:
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
