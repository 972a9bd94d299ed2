// Package log provides named structured loggers built on zerolog.
//
// Components obtain a logger once at construction time:
//
//	logger := log.GetLoggerWithName("pipeline").With().
//		Str(log.TaskKey, "mental_wellness").Logger()
//	logger.Info().Int("rows", n).Msg("dataset loaded")
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Common structured field keys.
const (
	ComponentKey = "component"
	ModelNameKey = "model"
	TaskKey      = "task"
	StageKey     = "stage"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init configures the root logger. level is one of debug, info, warn, error;
// format is "json" or "console". Unknown values fall back to info/json.
func Init(level, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}

	mu.Lock()
	root = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
}

// GetLogger returns the root logger.
func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// GetLoggerWithName returns a logger tagged with the given component name.
func GetLoggerWithName(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str(ComponentKey, name).Logger()
}
