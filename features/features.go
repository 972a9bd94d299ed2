// Package features derives the enlarged feature sets the models are
// trained on. Every transform here is pure row-wise arithmetic over fixed
// constants: no batch statistic (median, max, quantile) ever leaks into a
// derived value, so a single serving record and a training batch produce
// identical features for identical inputs.
package features

import (
	"github.com/wellsync/wellsync-ai/dataset"
)

// epsilon guards ratio denominators against zero input values.
const epsilon = 1e-6

// Normalization divisors and thresholds shared by the engineering
// transforms. They are exported so the fitted artifact bundle can record
// the exact values a model was trained with.
const (
	// ExerciseMinutesMax caps the exercise contribution in composite
	// health scores. 300 min/week is treated as the full score.
	ExerciseMinutesMax = 300.0

	// SocialHoursMax caps the social contribution in composite health
	// scores.
	SocialHoursMax = 20.0

	// HighScreenHours is the daily screen time above which usage is
	// flagged as high.
	HighScreenHours = 8.0

	// ExtremeScreenHours flags pathological daily screen time.
	ExtremeScreenHours = 12.0

	// OptimalSleepHours anchors the sleep-deficit features.
	OptimalSleepHours = 8.0

	// LowExerciseMinutes is the WHO weekly activity recommendation.
	LowExerciseMinutes = 150.0

	// LowSocialHours flags social isolation.
	LowSocialHours = 5.0
)

// Constants returns the engineering constants as a map for embedding in a
// preprocessing bundle.
func Constants() map[string]float64 {
	return map[string]float64{
		"exercise_minutes_max": ExerciseMinutesMax,
		"social_hours_max":     SocialHoursMax,
		"high_screen_hours":    HighScreenHours,
		"extreme_screen_hours": ExtremeScreenHours,
		"optimal_sleep_hours":  OptimalSleepHours,
		"low_exercise_minutes": LowExerciseMinutes,
		"low_social_hours":     LowSocialHours,
		"epsilon":              epsilon,
	}
}

// frameReader collects numeric and categorical columns from a frame,
// capturing the first error so call sites can fetch everything up front
// and check once.
type frameReader struct {
	frame *dataset.Frame
	err   error
}

func (r *frameReader) numeric(name string) []float64 {
	if r.err != nil {
		return nil
	}
	vals, err := r.frame.Numeric(name)
	if err != nil {
		r.err = err
		return nil
	}
	return vals
}

func (r *frameReader) categorical(name string) []string {
	if r.err != nil {
		return nil
	}
	vals, err := r.frame.Categorical(name)
	if err != nil {
		r.err = err
		return nil
	}
	return vals
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// lifestyleAgeGroup buckets adult ages at 25/35/45, upper-inclusive.
func lifestyleAgeGroup(age float64) float64 {
	switch {
	case age <= 25:
		return 0
	case age <= 35:
		return 1
	case age <= 45:
		return 2
	default:
		return 3
	}
}
