// Package api exposes the prediction service over HTTP.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/wellsync/wellsync-ai/internal/metrics"
	"github.com/wellsync/wellsync-ai/pipeline"
	"github.com/wellsync/wellsync-ai/pkg/config"
	"github.com/wellsync/wellsync-ai/pkg/log"
	"github.com/wellsync/wellsync-ai/serving"
)

// Version is reported on the root endpoint and in health checks.
const Version = "1.0.0"

// routeTasks maps URL path segments to task names.
var routeTasks = map[string]string{
	"mental-wellness": pipeline.TaskMentalWellness,
	"academic-impact": pipeline.TaskAcademicImpact,
	"stress":          pipeline.TaskStress,
}

type server struct {
	registry *serving.Registry
	logger   zerolog.Logger
}

// New builds the fiber application around a loaded registry.
func New(registry *serving.Registry, cfg config.ServerConfig) *fiber.App {
	s := &server{
		registry: registry,
		logger:   log.GetLoggerWithName("api"),
	}

	app := fiber.New(fiber.Config{
		AppName:      "wellsync-ai",
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(s.requestLogger)

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)
	app.Get("/metrics", metrics.Handler())
	app.Get("/models/info", s.handleModelsInfo)
	app.Get("/models/available", s.handleModelsAvailable)
	app.Get("/examples/:task", s.handleExample)

	for segment, task := range routeTasks {
		app.Post("/predict/"+segment, s.predictHandler(task))
	}

	return app
}

func (s *server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return err
}

func (s *server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "WellSync AI",
		"version": Version,
		"endpoints": []string{
			"POST /predict/mental-wellness",
			"POST /predict/academic-impact",
			"POST /predict/stress",
			"GET /health",
			"GET /metrics",
			"GET /models/info",
			"GET /models/available",
			"GET /examples/{task}",
		},
	})
}

func (s *server) handleHealth(c *fiber.Ctx) error {
	available := s.registry.Available()
	status := "ok"
	if len(available) < len(serving.Tasks) {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":    status,
		"version":   Version,
		"available": available,
		"timestamp": time.Now().UTC(),
	})
}

func (s *server) handleModelsInfo(c *fiber.Ctx) error {
	return c.JSON(s.registry.Info())
}

func (s *server) handleModelsAvailable(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"available": s.registry.Available()})
}
