// Command train runs the full training pipeline for one or all tasks.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wellsync/wellsync-ai/pipeline"
	"github.com/wellsync/wellsync-ai/pkg/config"
	"github.com/wellsync/wellsync-ai/pkg/log"
	"github.com/wellsync/wellsync-ai/training"
)

// dataFiles maps each task to its CSV file under the training data dir.
var dataFiles = map[string]string{
	pipeline.TaskMentalWellness: "mental_wellness.csv",
	pipeline.TaskAcademicImpact: "academic_impact.csv",
	pipeline.TaskStress:         "stress.csv",
}

func main() {
	task := flag.String("task", "all", "task to train: mental_wellness, academic_impact, stress, or all")
	data := flag.String("data", "", "override the task's CSV path (single task only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	logger := log.GetLoggerWithName("train")

	tasks := []string{*task}
	if *task == "all" {
		if *data != "" {
			logger.Fatal().Msg("-data requires a single -task")
		}
		tasks = []string{pipeline.TaskMentalWellness, pipeline.TaskAcademicImpact, pipeline.TaskStress}
	}

	for _, name := range tasks {
		taskCfg, err := pipeline.ConfigForTask(name)
		if err != nil {
			logger.Fatal().Err(err).Msg("unknown task")
		}

		csvPath := *data
		if csvPath == "" {
			csvPath = filepath.Join(cfg.Training.DataDir, dataFiles[name])
		}

		o := training.NewOrchestrator(taskCfg, cfg.Training, cfg.Models.Dir)
		res, err := o.Run(csvPath)
		if err != nil {
			logger.Fatal().Err(err).Str(log.TaskKey, name).Msg("training failed")
		}
		logger.Info().
			Str(log.TaskKey, name).
			Str("best_model", res.BestName).
			Float64("test_r2", res.Best.TestR2).
			Float64("cv_r2", res.CV.R2Mean).
			Str("dir", res.ModelDir).
			Msg("training complete")
	}
}
