// Package serving loads persisted training artifacts and answers
// single-record prediction requests. All state is loaded once at startup
// and read-only afterwards; requests never mutate it.
package serving

import (
	"fmt"

	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/pipeline"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// fieldBound is a closed numeric range for one raw input field.
type fieldBound struct {
	Field string
	Min   float64
	Max   float64
}

func bound(field string, min, max float64) fieldBound {
	return fieldBound{Field: field, Min: min, Max: max}
}

// lifestyleBounds covers the survey fields shared by the wellness and
// stress tasks.
func lifestyleBounds() []fieldBound {
	return []fieldBound{
		bound("age", 18, 100),
		bound("screen_time_hours", 0, 24),
		bound("work_screen_hours", 0, 24),
		bound("leisure_screen_hours", 0, 24),
		bound("sleep_hours", 0, 24),
		bound("sleep_quality_1_5", 1, 5),
		bound("productivity_0_100", 0, 100),
		bound("exercise_minutes_per_week", 0, 10080),
		bound("social_hours_per_week", 0, 168),
	}
}

func schemaBounds(task string) []fieldBound {
	switch task {
	case pipeline.TaskMentalWellness:
		return append(lifestyleBounds(), bound("stress_level_0_10", 0, 10))
	case pipeline.TaskStress:
		return append(lifestyleBounds(), bound("mental_wellness_index_0_100", 0, 100))
	case pipeline.TaskAcademicImpact:
		return []fieldBound{
			bound("age", 17, 30),
			bound("avg_daily_usage_hours", 0, 24),
			bound("sleep_hours_per_night", 0, 24),
			bound("mental_health_score", 0, 10),
			bound("conflicts_over_social_media", 0, 5),
		}
	default:
		return nil
	}
}

// validateRecord checks every supplied numeric field against the task's
// declared bounds. Absent fields pass; the transform fills them from
// training defaults and flags a warning instead.
func validateRecord(task string, rec *dataset.Record) error {
	for _, b := range schemaBounds(task) {
		v, ok := rec.Numeric[b.Field]
		if !ok {
			continue
		}
		if v != v {
			return wsErrors.NewSchemaValidationError(task, b.Field, "value is NaN")
		}
		if v < b.Min || v > b.Max {
			return wsErrors.NewSchemaValidationError(task, b.Field,
				fmt.Sprintf("value %g outside allowed range [%g, %g]", v, b.Min, b.Max))
		}
	}

	// Screen-time components cannot exceed the reported total.
	if task == pipeline.TaskMentalWellness || task == pipeline.TaskStress {
		total, hasTotal := rec.Numeric["screen_time_hours"]
		work, hasWork := rec.Numeric["work_screen_hours"]
		leisure, hasLeisure := rec.Numeric["leisure_screen_hours"]
		if hasTotal && hasWork && hasLeisure && work+leisure > total+1e-9 {
			return wsErrors.NewSchemaValidationError(task, "work_screen_hours",
				fmt.Sprintf("work (%g) plus leisure (%g) screen hours exceed the total (%g)", work, leisure, total))
		}
	}
	return nil
}
