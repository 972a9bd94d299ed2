package pipeline

import (
	"fmt"

	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/features"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// Task names double as artifact directory names.
const (
	TaskMentalWellness = "mental_wellness"
	TaskAcademicImpact = "academic_impact"
	TaskStress         = "stress"
)

// Config describes how one prediction task preprocesses its data: which
// column is the target, which columns are categorical, which get outlier
// capping, and which engineering transform enlarges the feature set.
//
// The engineering function is referenced by task name rather than stored
// in the bundle, so a loaded bundle is rebound to its transform through
// ConfigForTask.
type Config struct {
	Task   string
	Target string

	// IDColumn is dropped before any other step; it carries no signal.
	IDColumn string

	// NumericOrder and CategoricalOrder fix the column layout when a
	// single record is converted to a frame.
	NumericOrder     []string
	CategoricalOrder []string

	CategoricalCols []string
	OutlierCols     []string

	Engineer func(*dataset.Frame) error

	// Stratify bins the target for the stratified train/test split.
	Stratify StratifyFunc

	TestSize float64
	Seed     int64
}

// WellnessConfig returns the preprocessing configuration for the
// mental-wellness index task.
func WellnessConfig() Config {
	return Config{
		Task:     TaskMentalWellness,
		Target:   "mental_wellness_index_0_100",
		IDColumn: "user_id",
		NumericOrder: []string{
			"age", "screen_time_hours", "work_screen_hours",
			"leisure_screen_hours", "sleep_hours", "sleep_quality_1_5",
			"stress_level_0_10", "productivity_0_100",
			"exercise_minutes_per_week", "social_hours_per_week",
		},
		CategoricalOrder: []string{"gender", "occupation", "work_mode"},
		CategoricalCols:  []string{"gender", "occupation", "work_mode"},
		OutlierCols: []string{
			"screen_time_hours", "work_screen_hours", "leisure_screen_hours",
			"exercise_minutes_per_week", "social_hours_per_week",
		},
		Engineer: features.EngineerWellness,
		Stratify: QuantileBins(5),
		TestSize: 0.2,
		Seed:     42,
	}
}

// AcademicConfig returns the preprocessing configuration for the
// social-media addiction task.
func AcademicConfig() Config {
	return Config{
		Task:     TaskAcademicImpact,
		Target:   "addicted_score",
		IDColumn: "student_id",
		NumericOrder: []string{
			"age", "avg_daily_usage_hours", "sleep_hours_per_night",
			"mental_health_score", "conflicts_over_social_media",
		},
		CategoricalOrder: []string{
			"gender", "academic_level", "country", "most_used_platform",
			"affects_academic_performance", "relationship_status",
		},
		CategoricalCols: []string{
			"gender", "academic_level", "country", "most_used_platform",
			"affects_academic_performance", "relationship_status",
		},
		OutlierCols: []string{
			"avg_daily_usage_hours", "sleep_hours_per_night", "usage_sleep_ratio",
		},
		Engineer: features.EngineerAcademic,
		Stratify: QuantileBins(4),
		TestSize: 0.2,
		Seed:     42,
	}
}

// StressConfig returns the preprocessing configuration for the stress
// level task. Stratification uses fixed stress bands rather than target
// quantiles.
func StressConfig() Config {
	return Config{
		Task:     TaskStress,
		Target:   "stress_level_0_10",
		IDColumn: "user_id",
		NumericOrder: []string{
			"age", "screen_time_hours", "work_screen_hours",
			"leisure_screen_hours", "sleep_hours", "sleep_quality_1_5",
			"productivity_0_100", "exercise_minutes_per_week",
			"social_hours_per_week", "mental_wellness_index_0_100",
		},
		CategoricalOrder: []string{"gender", "occupation", "work_mode"},
		CategoricalCols:  []string{"gender", "occupation", "work_mode"},
		OutlierCols: []string{
			"screen_time_hours", "work_screen_hours", "leisure_screen_hours",
			"exercise_minutes_per_week", "social_hours_per_week",
		},
		Engineer: features.EngineerStress,
		Stratify: FixedBins([]float64{0, 3, 6, 8, 11}),
		TestSize: 0.2,
		Seed:     42,
	}
}

// ConfigForTask resolves a task name to its configuration.
func ConfigForTask(task string) (Config, error) {
	switch task {
	case TaskMentalWellness:
		return WellnessConfig(), nil
	case TaskAcademicImpact:
		return AcademicConfig(), nil
	case TaskStress:
		return StressConfig(), nil
	default:
		return Config{}, wsErrors.NewValueError("ConfigForTask",
			fmt.Sprintf("unknown task %q", task))
	}
}
