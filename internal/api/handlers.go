package api

import (
	"fmt"
	"time"

	crdberrors "github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/internal/metrics"
	"github.com/wellsync/wellsync-ai/pipeline"
	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// predictHandler serves one task's prediction endpoint.
func (s *server) predictHandler(task string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		predictor, err := s.registry.Predictor(task)
		if err != nil {
			metrics.ObservePrediction(task, "unavailable", time.Since(start))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "model for task " + task + " is not available",
			})
		}

		rec, err := recordFromBody(c)
		if err != nil {
			metrics.ObservePrediction(task, "bad_request", time.Since(start))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		result, err := predictor.Predict(rec)
		if err != nil {
			var sve *wsErrors.SchemaValidationError
			if crdberrors.As(err, &sve) {
				metrics.ObservePrediction(task, "invalid", time.Since(start))
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error": sve.Reason,
					"field": sve.Field,
				})
			}
			s.logger.Error().Err(err).Str("task", task).Msg("prediction failed")
			metrics.ObservePrediction(task, "error", time.Since(start))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "prediction failed",
			})
		}

		metrics.ObservePrediction(task, "ok", time.Since(start))
		return c.JSON(result)
	}
}

// recordFromBody converts a flat JSON object into a raw record. Numbers
// become numeric fields, strings categorical; nulls are dropped so the
// transform falls back to training defaults.
func recordFromBody(c *fiber.Ctx) (*dataset.Record, error) {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return nil, fmt.Errorf("request body is not a JSON object: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}

	rec := dataset.NewRecord()
	for field, v := range payload {
		switch value := v.(type) {
		case float64:
			rec.Numeric[field] = value
		case bool:
			if value {
				rec.Numeric[field] = 1
			} else {
				rec.Numeric[field] = 0
			}
		case string:
			rec.Categorical[field] = value
		case nil:
			// Dropped; defaults fill it downstream.
		default:
			return nil, fmt.Errorf("field %q has unsupported type", field)
		}
	}
	return rec, nil
}

func (s *server) handleExample(c *fiber.Ctx) error {
	task, ok := routeTasks[c.Params("task")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown task " + c.Params("task"),
		})
	}
	return c.JSON(exampleRecords[task])
}

// exampleRecords are ready-to-post payloads for each endpoint.
var exampleRecords = map[string]map[string]interface{}{
	pipeline.TaskMentalWellness: {
		"age":                       29,
		"gender":                    "Female",
		"occupation":                "Engineer",
		"work_mode":                 "Remote",
		"screen_time_hours":         7.5,
		"work_screen_hours":         5.0,
		"leisure_screen_hours":      2.5,
		"sleep_hours":               7.0,
		"sleep_quality_1_5":         4,
		"stress_level_0_10":         5.0,
		"productivity_0_100":        75.0,
		"exercise_minutes_per_week": 180,
		"social_hours_per_week":     6.0,
	},
	pipeline.TaskAcademicImpact: {
		"age":                          21,
		"gender":                       "Male",
		"academic_level":               "Undergraduate",
		"country":                      "USA",
		"avg_daily_usage_hours":        4.5,
		"most_used_platform":           "Instagram",
		"affects_academic_performance": "Yes",
		"sleep_hours_per_night":        6.5,
		"mental_health_score":          6,
		"relationship_status":          "Single",
		"conflicts_over_social_media":  2,
	},
	pipeline.TaskStress: {
		"age":                         34,
		"gender":                      "Male",
		"occupation":                  "Analyst",
		"work_mode":                   "Hybrid",
		"screen_time_hours":           9.0,
		"work_screen_hours":           6.5,
		"leisure_screen_hours":        2.5,
		"sleep_hours":                 6.5,
		"sleep_quality_1_5":           3,
		"productivity_0_100":          68.0,
		"exercise_minutes_per_week":   90,
		"social_hours_per_week":       4.0,
		"mental_wellness_index_0_100": 62.0,
	},
}
